// Command transphrase is the CLI for the phrase translation helper.
// It expands key terms, lists phrases and their parts, and records
// translations in a SQLite database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/transphrase/core/errors"
	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/phrase"
	"github.com/FocuswithJustin/transphrase/core/ref"
	"github.com/FocuswithJustin/transphrase/internal/loader"
	"github.com/FocuswithJustin/transphrase/internal/logging"
	"github.com/FocuswithJustin/transphrase/internal/store"
)

const version = "0.1.0"

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for transphrase.
var CLI struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"TRANSPHRASE_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json" env:"TRANSPHRASE_LOG_FORMAT"`

	Expand    ExpandCmd    `cmd:"" help:"Show the surface forms generated for a key term definition"`
	Phrases   PhrasesCmd   `cmd:"" help:"List phrases with their translations"`
	Parts     PartsCmd     `cmd:"" help:"List the parts phrases were split into"`
	Translate TranslateCmd `cmd:"" help:"Set or clear the translation of a phrase"`
	Rendering RenderingCmd `cmd:"" help:"Add, select or delete a key term rendering"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// ProjectFlags locate the project inputs.
type ProjectFlags struct {
	Phrases        string `name:"phrases" help:"Phrases XML file (.xml or .xml.xz)" required:"" type:"existingfile"`
	KeyTerms       string `name:"key-terms" help:"Key terms XML file" type:"existingfile"`
	Rules          string `name:"rules" help:"Key term rules XML file" type:"existingfile"`
	Substitutions  string `name:"substitutions" help:"Phrase substitutions XML file" type:"existingfile"`
	RenderingRules string `name:"rendering-rules" help:"Rendering selection rules XML file" type:"existingfile"`
	DB             string `name:"db" help:"Translation database" type:"path" env:"TRANSPHRASE_DB"`
}

// project is a loaded phrase helper and, when a database was given, its
// store.
type project struct {
	helper *phrase.Helper
	store  *store.Store
}

func (p *project) Close() {
	if p.store != nil {
		p.store.Close()
	}
}

// terms returns the distinct key terms in use.
func (p *project) terms() []*keyterm.Term {
	seen := make(map[*keyterm.Term]bool)
	var out []*keyterm.Term
	for _, m := range p.helper.Matches() {
		if t := m.Term(); !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func (p *project) term(id string) (*keyterm.Term, error) {
	for _, t := range p.terms() {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errors.NewNotFound("key term", id)
}

func (f ProjectFlags) open(ctx context.Context) (*project, error) {
	src := loader.Sources{
		KeyTerms:       f.KeyTerms,
		KeyTermRules:   f.Rules,
		Phrases:        f.Phrases,
		Substitutions:  f.Substitutions,
		RenderingRules: f.RenderingRules,
	}
	h, err := src.Helper()
	if err != nil {
		return nil, err
	}
	p := &project{helper: h}
	if f.DB == "" {
		return p, nil
	}

	p.store, err = store.Open(ctx, f.DB)
	if err != nil {
		return nil, err
	}
	if _, err := p.store.LoadRenderings(ctx, p.terms()); err != nil {
		p.Close()
		return nil, err
	}
	if _, err := p.store.Restore(ctx, h); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// ExpandCmd prints the matches generated for a key term definition.
type ExpandCmd struct {
	Term  string `arg:"" help:"Key term definition, e.g. \"(the) son of man\""`
	Rules string `name:"rules" help:"Key term rules XML file" type:"existingfile"`
}

func (c *ExpandCmd) Run(ctx context.Context) error {
	var rules keyterm.RuleTable
	if c.Rules != "" {
		var err error
		if rules, err = loader.KeyTermRules(c.Rules); err != nil {
			return err
		}
	}
	b := keyterm.NewBuilder(keyterm.NewTerm("", c.Term, nil), rules)
	if r := b.Rule(); r != nil {
		fmt.Fprintf(stdout, "rule: %s\n", r.Kind)
	}
	for _, m := range b.Matches() {
		if m.Anywhere() {
			fmt.Fprintln(stdout, m.Text())
		} else {
			fmt.Fprintf(stdout, "%s (own verses only)\n", m.Text())
		}
	}
	return nil
}

// PhrasesCmd lists the filtered and sorted phrase view.
type PhrasesCmd struct {
	ProjectFlags

	Sort            string `name:"sort" help:"Sort order" default:"default" enum:"default,reference,phrase,translation"`
	Desc            bool   `name:"desc" help:"Sort in descending order"`
	Filter          string `name:"filter" help:"Only phrases containing this text"`
	WholeWord       bool   `name:"whole-word" help:"Match the filter text as whole words"`
	KeyTermFilter   string `name:"key-term-filter" help:"Filter by key term renderings" default:"all" enum:"all,with,without"`
	Range           string `name:"range" help:"Only phrases overlapping this reference range, e.g. Matt.5.1-12"`
	IncludeExcluded bool   `name:"include-excluded" help:"Include excluded phrases"`
}

func (c *PhrasesCmd) filter() (phrase.Filter, error) {
	f := phrase.Filter{Text: c.Filter, WholeWord: c.WholeWord, IncludeExcluded: c.IncludeExcluded}
	switch c.KeyTermFilter {
	case "with":
		f.KeyTerms = phrase.KeyTermsWithRenderings
	case "without":
		f.KeyTerms = phrase.KeyTermsWithoutRenderings
	}
	if c.Range != "" {
		want, err := ref.Parse(c.Range)
		if err != nil {
			return f, err
		}
		f.InRange = func(start, end ref.BCV) bool {
			return want.Overlaps(ref.Range{Start: start, End: end})
		}
	}
	return f, nil
}

func (c *PhrasesCmd) Run(ctx context.Context) error {
	f, err := c.filter()
	if err != nil {
		return err
	}
	by, ok := phrase.ParseSortBy(c.Sort)
	if !ok {
		return errors.NewValidation("sort", "unknown sort "+c.Sort)
	}

	p, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	h := p.helper
	h.ApplyFilter(f)
	h.Sort(by, !c.Desc)
	for _, ph := range h.View() {
		fmt.Fprintf(stdout, "%4d  %-14s %-3s %s\n", ph.Index(), ph.Reference(), stateMark(ph.State()), ph.PhraseInUse())
		if tr := ph.Translation(); tr != "" {
			fmt.Fprintf(stdout, "%24s %s\n", "", tr)
		}
	}
	fmt.Fprintf(stdout, "%d of %d phrases\n", h.Count(), h.UnfilteredCount())
	return nil
}

func stateMark(s phrase.TranslationState) string {
	switch s {
	case phrase.UserTranslated:
		return "*"
	case phrase.PartiallyInferred:
		return "~"
	}
	return ""
}

// PartsCmd lists filler and key-term parts with their owner counts.
type PartsCmd struct {
	ProjectFlags

	Terms bool `name:"terms" help:"List key-term parts instead of filler parts"`
}

func (c *PartsCmd) Run(ctx context.Context) error {
	p, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	parts := p.helper.Parts()
	if c.Terms {
		parts = p.helper.KeyTermParts()
	}
	for _, part := range parts {
		detail := part.Translation()
		if part.IsKeyTerm() {
			detail = strings.Join(part.Renderings(), " | ")
		}
		fmt.Fprintf(stdout, "%5d  %-30s %s\n", part.OwnerCount(), part.Text(), detail)
	}
	return nil
}

// TranslateCmd sets the user translation of one phrase and saves it.
type TranslateCmd struct {
	ProjectFlags

	Index int    `arg:"" help:"Phrase index as shown by the phrases command"`
	Text  string `arg:"" optional:"" help:"Translation; omit to clear"`
}

func (c *TranslateCmd) Run(ctx context.Context) error {
	if c.DB == "" {
		return errors.NewValidation("db", "a database is required to save translations")
	}
	p, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	phrases := p.helper.Phrases()
	if c.Index < 0 || c.Index >= len(phrases) {
		return errors.NewNotFound("phrase", fmt.Sprint(c.Index))
	}
	ph := phrases[c.Index]
	ph.SetTranslation(c.Text)
	if err := p.store.SaveTranslation(ctx, ph); err != nil {
		return err
	}
	logging.InfoContext(ctx, "translation set", "ref", ph.Reference(), "cleared", c.Text == "")

	for _, other := range p.helper.Phrases() {
		if other != ph && other.Translation() != "" && !other.HasUserTranslation() && sharesPart(ph, other) {
			fmt.Fprintf(stdout, "%4d  %s\n      %s\n", other.Index(), other.PhraseInUse(), other.Translation())
		}
	}
	return nil
}

func sharesPart(a, b *phrase.Phrase) bool {
	for _, p := range a.TranslatableParts() {
		for _, q := range b.TranslatableParts() {
			if p == q {
				return true
			}
		}
	}
	return false
}

// RenderingCmd edits the renderings of one key term.
type RenderingCmd struct {
	ProjectFlags

	Term      string `arg:"" help:"Key term ID"`
	Rendering string `arg:"" help:"Rendering text"`
	Best      bool   `name:"best" help:"Make the rendering the preferred one"`
	Delete    bool   `name:"delete" help:"Delete the rendering"`
}

func (c *RenderingCmd) Run(ctx context.Context) error {
	if c.DB == "" {
		return errors.NewValidation("db", "a database is required to save renderings")
	}
	if c.KeyTerms == "" {
		return errors.NewValidation("key-terms", "a key terms file is required")
	}
	p, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	t, err := p.term(c.Term)
	if err != nil {
		return err
	}
	switch {
	case c.Delete:
		if !t.CanRenderingBeDeleted(c.Rendering) {
			return errors.NewValidation("rendering", "cannot delete "+c.Rendering)
		}
		t.DeleteRendering(c.Rendering)
	case !t.HasRendering(c.Rendering):
		if err := t.AddRendering(c.Rendering); err != nil {
			return err
		}
	}
	if c.Best && !c.Delete {
		if err := t.SetBestRendering(c.Rendering); err != nil {
			return err
		}
	}
	if err := p.store.SaveRenderings(ctx, t); err != nil {
		return err
	}
	p.helper.RefreshTranslations()
	fmt.Fprintf(stdout, "%s: %s\n", t.Text, strings.Join(t.Renderings(), " | "))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := store.GetInfo()
	fmt.Fprintf(stdout, "transphrase version %s (sqlite: %s)\n", version, info.DriverType)
	return nil
}

func initLogging() error {
	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("transphrase"),
		kong.Description("Phrase translation helper with key term rendering inference"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(initLogging())

	runCtx := logging.WithSessionID(context.Background(), uuid.NewString())
	ctx.BindTo(runCtx, (*context.Context)(nil))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
