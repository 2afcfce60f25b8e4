// Package loader reads the XML inputs of a phrase project: key terms, key
// term rules, phrases, substitutions and rendering selection rules. Files
// ending in .xz are decompressed transparently.
package loader

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/transphrase/core/errors"
	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/phrase"
	"github.com/FocuswithJustin/transphrase/core/ref"
	"github.com/FocuswithJustin/transphrase/internal/logging"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/ulikunitz/xz"
)

// Function variables for testing
var (
	osOpen      = os.Open
	xzNewReader = xz.NewReader
)

// Compiled selectors for the element lists of each document kind.
var (
	termsExpr          = xpath.MustCompile("/KeyTerms/Term")
	rulesExpr          = xpath.MustCompile("/KeyTermRules/Rule")
	phrasesExpr        = xpath.MustCompile("/Phrases/Phrase")
	substitutionsExpr  = xpath.MustCompile("/Substitutions/Substitution")
	renderingRulesExpr = xpath.MustCompile("/RenderingRules/Rule")
)

// Sources names the input files of a project. Only Phrases is required.
type Sources struct {
	KeyTerms       string
	KeyTermRules   string
	Phrases        string
	Substitutions  string
	RenderingRules string
}

// Helper reads every configured source and builds a phrase helper.
func (s Sources) Helper() (*phrase.Helper, error) {
	if s.Phrases == "" {
		return nil, errors.NewValidation("phrases", "no phrase file given")
	}
	records, err := Phrases(s.Phrases)
	if err != nil {
		return nil, err
	}

	var terms []*keyterm.Term
	if s.KeyTerms != "" {
		if terms, err = KeyTerms(s.KeyTerms); err != nil {
			return nil, err
		}
	}
	var rules keyterm.RuleTable
	if s.KeyTermRules != "" {
		if rules, err = KeyTermRules(s.KeyTermRules); err != nil {
			return nil, err
		}
	}
	var subs []phrase.Substitution
	if s.Substitutions != "" {
		if subs, err = Substitutions(s.Substitutions); err != nil {
			return nil, err
		}
	}

	h := phrase.NewHelper(records, terms, rules, subs)
	if s.RenderingRules != "" {
		selection, err := RenderingRules(s.RenderingRules)
		if err != nil {
			return nil, err
		}
		h.SetRenderingSelectionRules(selection)
	}
	return h, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// open returns a reader for path, decompressing .xz files. Only XML
// files, plain or xz-compressed, are accepted.
func open(path string) (io.ReadCloser, error) {
	lower := strings.ToLower(path)
	compressed := strings.HasSuffix(lower, ".xz")
	if !compressed && !strings.HasSuffix(lower, ".xml") {
		return nil, errors.NewUnsupported("input format", path)
	}
	f, err := osOpen(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if !compressed {
		return f, nil
	}
	xr, err := xzNewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, errors.NewIO("decompress", path, err)
	}
	return readCloser{Reader: xr, Closer: f}, nil
}

// parse reads path into an XML document tree.
func parse(path string) (*xmlquery.Node, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "XML", Path: path, Message: err.Error(), Err: err}
	}
	return doc, nil
}

func elements(path string, expr *xpath.Expr) ([]*xmlquery.Node, error) {
	doc, err := parse(path)
	if err != nil {
		return nil, err
	}
	return xmlquery.QuerySelectorAll(doc, expr), nil
}

func text(n *xmlquery.Node) string {
	return strings.TrimSpace(n.InnerText())
}

func boolAttr(n *xmlquery.Node, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(n.SelectAttr(name)))
	return err == nil && v
}

func intAttr(n *xmlquery.Node, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(n.SelectAttr(name)))
	if err != nil {
		return 0
	}
	return v
}

// KeyTerms reads a <KeyTerms> document. Occurrences that fail to parse are
// skipped with a warning; an unknown best rendering leaves the first one in
// place.
func KeyTerms(path string) ([]*keyterm.Term, error) {
	nodes, err := elements(path, termsExpr)
	if err != nil {
		return nil, err
	}
	terms := make([]*keyterm.Term, 0, len(nodes))
	for _, n := range nodes {
		id := n.SelectAttr("id")
		var textNode string
		if t := n.SelectElement("Text"); t != nil {
			textNode = text(t)
		}
		if textNode == "" {
			logging.SourceError("key_terms", "term "+strconv.Quote(id)+" has no text", nil, "path", path)
			continue
		}

		var occurrences []ref.BCV
		for _, o := range n.SelectElements("Occurrence") {
			r, err := ref.Parse(o.SelectAttr("ref"))
			if err != nil {
				logging.SourceError("key_terms", "bad occurrence for "+strconv.Quote(id), err, "path", path)
				continue
			}
			occurrences = append(occurrences, r.Start)
		}
		var renderings []string
		for _, r := range n.SelectElements("Rendering") {
			renderings = append(renderings, text(r))
		}

		term := keyterm.NewTerm(id, textNode, occurrences, renderings...)
		if best := strings.TrimSpace(n.SelectAttr("best")); best != "" {
			if err := term.SetBestRendering(best); err != nil {
				logging.SourceError("key_terms", "best rendering for "+strconv.Quote(id), err, "path", path)
			}
		}
		terms = append(terms, term)
	}
	logging.SourceRead("key_terms", path, len(terms))
	return terms, nil
}

// KeyTermRules reads a <KeyTermRules> document.
func KeyTermRules(path string) (keyterm.RuleTable, error) {
	nodes, err := elements(path, rulesExpr)
	if err != nil {
		return nil, err
	}
	table := keyterm.NewRuleTable()
	for _, n := range nodes {
		kind, ok := keyterm.ParseRuleKind(n.SelectAttr("kind"))
		if !ok {
			return nil, errors.NewParse("key term rules", path, "unknown rule kind "+strconv.Quote(n.SelectAttr("kind")))
		}
		rule := &keyterm.Rule{ID: n.SelectAttr("term"), Kind: kind}
		for _, a := range n.SelectElements("Alternate") {
			if alt := text(a); alt != "" {
				rule.Alternates = append(rule.Alternates, alt)
			}
		}
		table.Add(rule)
	}
	logging.SourceRead("key_term_rules", path, len(table))
	return table, nil
}

// Phrases reads a <Phrases> document.
func Phrases(path string) ([]phrase.Record, error) {
	nodes, err := elements(path, phrasesExpr)
	if err != nil {
		return nil, err
	}
	records := make([]phrase.Record, 0, len(nodes))
	for _, n := range nodes {
		raw := n.SelectAttr("ref")
		rng, err := ref.Parse(raw)
		if err != nil {
			return nil, &errors.ParseError{Format: "phrases", Path: path, Message: "bad reference " + strconv.Quote(raw), Err: err}
		}
		records = append(records, phrase.Record{
			Text:      text(n),
			Reference: n.SelectAttr("display"),
			Range:     rng,
			Category:  intAttr(n, "category"),
			Sequence:  intAttr(n, "seq"),
			Excluded:  boolAttr(n, "excluded"),
		})
	}
	logging.SourceRead("phrases", path, len(records))
	return records, nil
}

// Substitutions reads a <Substitutions> document. Patterns are kept in
// document order.
func Substitutions(path string) ([]phrase.Substitution, error) {
	nodes, err := elements(path, substitutionsExpr)
	if err != nil {
		return nil, err
	}
	subs := make([]phrase.Substitution, 0, len(nodes))
	for _, n := range nodes {
		pattern := n.SelectAttr("pattern")
		if pattern == "" {
			continue
		}
		subs = append(subs, phrase.Substitution{
			Pattern:       pattern,
			Replacement:   n.SelectAttr("replacement"),
			IsRegex:       boolAttr(n, "regex"),
			CaseSensitive: boolAttr(n, "caseSensitive"),
		})
	}
	logging.SourceRead("substitutions", path, len(subs))
	return subs, nil
}

// RenderingRules reads a <RenderingRules> document. A rule without an id
// attribute gets a fresh one.
func RenderingRules(path string) ([]*keyterm.RenderingSelectionRule, error) {
	nodes, err := elements(path, renderingRulesExpr)
	if err != nil {
		return nil, err
	}
	rules := make([]*keyterm.RenderingSelectionRule, 0, len(nodes))
	for _, n := range nodes {
		r := keyterm.NewRenderingSelectionRule(n.SelectAttr("name"))
		if id := n.SelectAttr("id"); id != "" {
			r.ID = id
		}
		r.Disabled = boolAttr(n, "disabled")
		r.SetQuestionMatchingPattern(n.SelectAttr("question"))
		r.SetRenderingMatchingPattern(n.SelectAttr("rendering"))
		if !r.Valid() {
			logging.SourceError("rendering_rules", "rule "+strconv.Quote(r.Name)+" has an invalid pattern", nil, "path", path)
		}
		rules = append(rules, r)
	}
	logging.SourceRead("rendering_rules", path, len(rules))
	return rules, nil
}
