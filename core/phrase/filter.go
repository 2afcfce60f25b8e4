package phrase

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/ref"
)

// KeyTermFilter selects phrases by the state of their key-term renderings.
type KeyTermFilter int

const (
	// KeyTermsAll ignores key terms.
	KeyTermsAll KeyTermFilter = iota
	// KeyTermsWithRenderings keeps phrases with at least one key term, all
	// of whose key terms have renderings.
	KeyTermsWithRenderings
	// KeyTermsWithoutRenderings keeps phrases with a key term that has no
	// rendering.
	KeyTermsWithoutRenderings
)

// Filter restricts the phrase view. Every condition must hold.
type Filter struct {
	// Text is matched literally against the normalized wording of the
	// phrase's parts. It is normalized the same way first, so case and
	// edge punctuation never matter; text with no words is no condition.
	Text      string
	WholeWord bool

	KeyTerms KeyTermFilter

	// InRange, when set, decides which references are shown.
	InRange func(start, end ref.BCV) bool

	IncludeExcluded bool
}

// compile turns the text condition into an expression; nil means every
// phrase matches.
func (f Filter) compile() (*regexp.Regexp, bool) {
	text := keyterm.Key(keyterm.Tokenize(f.Text))
	if text == "" {
		return nil, true
	}
	expr := regexp.QuoteMeta(text)
	if f.WholeWord {
		expr = `\b` + expr + `\b`
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, false
	}
	return re, true
}

func (f Filter) keep(ph *Phrase, re *regexp.Regexp) bool {
	if ph.excluded && !f.IncludeExcluded {
		return false
	}
	if re != nil && !re.MatchString(partsKey(ph)) {
		return false
	}
	if f.InRange != nil && !f.InRange(ph.rng.Start, ph.rng.End) {
		return false
	}
	switch f.KeyTerms {
	case KeyTermsWithRenderings:
		keyTerms := ph.KeyTermParts()
		if len(keyTerms) == 0 {
			return false
		}
		for _, p := range keyTerms {
			if !p.HasRenderings() {
				return false
			}
		}
	case KeyTermsWithoutRenderings:
		for _, p := range ph.KeyTermParts() {
			if !p.HasRenderings() {
				return true
			}
		}
		return false
	}
	return true
}

func partsKey(ph *Phrase) string {
	keys := make([]string, len(ph.parts))
	for i, p := range ph.parts {
		keys[i] = p.Key()
	}
	return strings.Join(keys, " ")
}

// ApplyFilter replaces the view's filter and rebuilds the view in the
// current sort order.
func (h *Helper) ApplyFilter(f Filter) {
	h.filter = f
	h.refreshView()
}

// CurrentFilter returns the view's filter.
func (h *Helper) CurrentFilter() Filter { return h.filter }

// refreshView re-evaluates the filter and sort. Call it after changing
// renderings or exclusion flags.
func (h *Helper) refreshView() {
	re, ok := h.filter.compile()
	h.view = h.view[:0]
	if ok {
		for _, ph := range h.phrases {
			if h.filter.keep(ph, re) {
				h.view = append(h.view, ph)
			}
		}
	}
	h.sortView()
}

// RefreshView re-evaluates the current filter and sort order.
func (h *Helper) RefreshView() { h.refreshView() }
