package phrase

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/transphrase/internal/logging"
)

// Substitution rewrites source text before it is split into parts, e.g. to
// normalize "do you think" and "do you suppose" to one wording.
type Substitution struct {
	Pattern     string
	Replacement string

	// IsRegex treats Pattern as a regular expression and Replacement as a
	// template that may refer to groups ($1, ${name}).
	IsRegex       bool
	CaseSensitive bool
}

// compile returns the matcher for the substitution, or nil if Pattern is
// empty or not a valid expression.
func (s Substitution) compile() *regexp.Regexp {
	if s.Pattern == "" {
		return nil
	}
	expr := s.Pattern
	if !s.IsRegex {
		expr = regexp.QuoteMeta(expr)
	}
	if !s.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		logging.SourceError("substitution", s.Pattern, err)
		return nil
	}
	return re
}

// Apply returns text with the substitution applied. A malformed pattern
// leaves text unchanged.
func (s Substitution) Apply(text string) string {
	re := s.compile()
	if re == nil {
		return text
	}
	if s.IsRegex {
		return re.ReplaceAllString(text, s.Replacement)
	}
	return re.ReplaceAllLiteralString(text, s.Replacement)
}

// ApplySubstitutions applies each substitution in order and collapses the
// resulting whitespace.
func ApplySubstitutions(text string, subs []Substitution) string {
	for _, s := range subs {
		text = s.Apply(text)
	}
	return strings.Join(strings.Fields(text), " ")
}
