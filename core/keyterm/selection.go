package keyterm

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// TermPlaceholder marks where the key term goes in a question pattern.
const TermPlaceholder = "{0}"

// QuestionMatchCriteria classifies a rule's question pattern.
type QuestionMatchCriteria int

const (
	QuestionUndefined QuestionMatchCriteria = iota
	QuestionPrefix
	QuestionSuffix
	QuestionPrecedingWord
	QuestionFollowingWord
	QuestionCustom
)

// RenderingMatchCriteria classifies a rule's rendering pattern.
type RenderingMatchCriteria int

const (
	RenderingUndefined RenderingMatchCriteria = iota
	RenderingPrefix
	RenderingSuffix
	RenderingCustom
)

// Pattern templates; %s is the regex-escaped argument.
var (
	questionTemplates = []struct {
		kind   QuestionMatchCriteria
		before string
		after  string
	}{
		{QuestionPrecedingWord, `\b`, `\s+{0}\b`},
		{QuestionFollowingWord, `\b{0}\s+`, `\b`},
		{QuestionPrefix, `\b`, `{0}\b`},
		{QuestionSuffix, `\b{0}`, `\b`},
	}
	renderingTemplates = []struct {
		kind   RenderingMatchCriteria
		before string
		after  string
	}{
		{RenderingPrefix, `^`, ``},
		{RenderingSuffix, ``, `$`},
	}
)

// RenderingSelectionRule picks among a key term's renderings based on the
// wording around the term in the source question. For example, a rule whose
// question pattern is `{0}s\b` and whose rendering pattern is `-nak$` chooses
// a plural rendering when the English term is followed by "s".
type RenderingSelectionRule struct {
	ID       string
	Name     string
	Disabled bool

	questionPattern  string
	renderingPattern string
}

// NewRenderingSelectionRule creates an empty rule with a fresh identifier.
func NewRenderingSelectionRule(name string) *RenderingSelectionRule {
	return &RenderingSelectionRule{ID: uuid.NewString(), Name: name}
}

// QuestionMatchingPattern returns the question pattern.
func (r *RenderingSelectionRule) QuestionMatchingPattern() string { return r.questionPattern }

// SetQuestionMatchingPattern sets a question pattern verbatim.
func (r *RenderingSelectionRule) SetQuestionMatchingPattern(p string) { r.questionPattern = p }

// RenderingMatchingPattern returns the rendering pattern.
func (r *RenderingSelectionRule) RenderingMatchingPattern() string { return r.renderingPattern }

// SetRenderingMatchingPattern sets a rendering pattern verbatim.
func (r *RenderingSelectionRule) SetRenderingMatchingPattern(p string) { r.renderingPattern = p }

// SetQuestionMatchPrefix matches questions where the term carries a prefix.
func (r *RenderingSelectionRule) SetQuestionMatchPrefix(prefix string) {
	r.setQuestion(QuestionPrefix, prefix)
}

// SetQuestionMatchSuffix matches questions where the term carries a suffix.
func (r *RenderingSelectionRule) SetQuestionMatchSuffix(suffix string) {
	r.setQuestion(QuestionSuffix, suffix)
}

// SetQuestionMatchPrecedingWord matches questions where word comes right
// before the term.
func (r *RenderingSelectionRule) SetQuestionMatchPrecedingWord(word string) {
	r.setQuestion(QuestionPrecedingWord, word)
}

// SetQuestionMatchFollowingWord matches questions where word comes right
// after the term.
func (r *RenderingSelectionRule) SetQuestionMatchFollowingWord(word string) {
	r.setQuestion(QuestionFollowingWord, word)
}

// SetRenderingMatchPrefix selects renderings starting with prefix.
func (r *RenderingSelectionRule) SetRenderingMatchPrefix(prefix string) {
	r.setRendering(RenderingPrefix, prefix)
}

// SetRenderingMatchSuffix selects renderings ending with suffix.
func (r *RenderingSelectionRule) SetRenderingMatchSuffix(suffix string) {
	r.setRendering(RenderingSuffix, suffix)
}

func (r *RenderingSelectionRule) setQuestion(kind QuestionMatchCriteria, arg string) {
	if arg == "" {
		r.questionPattern = ""
		return
	}
	for _, t := range questionTemplates {
		if t.kind == kind {
			r.questionPattern = t.before + regexp.QuoteMeta(arg) + t.after
			return
		}
	}
}

func (r *RenderingSelectionRule) setRendering(kind RenderingMatchCriteria, arg string) {
	if arg == "" {
		r.renderingPattern = ""
		return
	}
	for _, t := range renderingTemplates {
		if t.kind == kind {
			r.renderingPattern = t.before + regexp.QuoteMeta(arg) + t.after
			return
		}
	}
}

// QuestionMatchCriteriaType classifies the current question pattern.
func (r *RenderingSelectionRule) QuestionMatchCriteriaType() QuestionMatchCriteria {
	kind, _ := r.questionCriteria()
	return kind
}

// RenderingMatchCriteriaType classifies the current rendering pattern.
func (r *RenderingSelectionRule) RenderingMatchCriteriaType() RenderingMatchCriteria {
	kind, _ := r.renderingCriteria()
	return kind
}

// QuestionMatchArgument returns the prefix, suffix or word the question
// pattern was built from, or "" for custom and undefined patterns.
func (r *RenderingSelectionRule) QuestionMatchArgument() string {
	_, arg := r.questionCriteria()
	return arg
}

// RenderingMatchArgument returns the prefix or suffix the rendering pattern
// was built from, or "" for custom and undefined patterns.
func (r *RenderingSelectionRule) RenderingMatchArgument() string {
	_, arg := r.renderingCriteria()
	return arg
}

func (r *RenderingSelectionRule) questionCriteria() (QuestionMatchCriteria, string) {
	p := r.questionPattern
	if p == "" {
		return QuestionUndefined, ""
	}
	for _, t := range questionTemplates {
		if arg, ok := templateArgument(p, t.before, t.after); ok {
			return t.kind, arg
		}
	}
	return QuestionCustom, ""
}

func (r *RenderingSelectionRule) renderingCriteria() (RenderingMatchCriteria, string) {
	p := r.renderingPattern
	if p == "" {
		return RenderingUndefined, ""
	}
	for _, t := range renderingTemplates {
		if arg, ok := templateArgument(p, t.before, t.after); ok {
			return t.kind, arg
		}
	}
	return RenderingCustom, ""
}

// templateArgument reports whether p is exactly before+QuoteMeta(arg)+after
// for some non-empty arg, and returns arg.
func templateArgument(p, before, after string) (string, bool) {
	if !strings.HasPrefix(p, before) || !strings.HasSuffix(p, after) || len(p) <= len(before)+len(after) {
		return "", false
	}
	quoted := p[len(before) : len(p)-len(after)]
	arg := unquoteMeta(quoted)
	if arg == "" || strings.Contains(arg, TermPlaceholder) || regexp.QuoteMeta(arg) != quoted {
		return "", false
	}
	return arg, true
}

// unquoteMeta reverses regexp.QuoteMeta for well-formed input.
func unquoteMeta(s string) string {
	var sb strings.Builder
	escaped := false
	for _, c := range s {
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(c)
	}
	return sb.String()
}

// termExpression builds the regular expression fragment for the term's words,
// allowing any run of non-word characters between them.
func termExpression(term []Word) string {
	parts := make([]string, len(term))
	for i, w := range term {
		parts[i] = regexp.QuoteMeta(w.Text())
	}
	return "(?:" + strings.Join(parts, `\W+`) + ")"
}

// QuestionMatches reports whether the rule's question pattern, with the term
// substituted for the placeholder, matches the source text. Disabled rules and
// malformed patterns never match.
func (r *RenderingSelectionRule) QuestionMatches(source string, term []Word) bool {
	if r.Disabled || len(term) == 0 || !strings.Contains(r.questionPattern, TermPlaceholder) {
		return false
	}
	expr := strings.ReplaceAll(r.questionPattern, TermPlaceholder, termExpression(term))
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return false
	}
	return re.MatchString(source)
}

// renderingMatcher compiles the rendering pattern case-insensitively, or
// returns nil if it is empty or malformed.
func (r *RenderingSelectionRule) renderingMatcher() *regexp.Regexp {
	if r.renderingPattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + r.renderingPattern)
	if err != nil {
		return nil
	}
	return re
}

// MatchingRenderings returns the candidates accepted by the rule, in order,
// when its question pattern applies to the source text.
func (r *RenderingSelectionRule) MatchingRenderings(source string, term []Word, candidates []string) []string {
	if !r.QuestionMatches(source, term) {
		return nil
	}
	re := r.renderingMatcher()
	if re == nil {
		return nil
	}
	var out []string
	for _, c := range candidates {
		if re.MatchString(c) {
			out = append(out, c)
		}
	}
	return out
}

// ChooseRendering returns the first candidate selected by the rule. It
// reports false when the rule is disabled, either pattern is missing or
// malformed, the question pattern has no term placeholder or does not match,
// or no candidate satisfies the rendering pattern.
func (r *RenderingSelectionRule) ChooseRendering(source string, term []Word, candidates []string) (string, bool) {
	matches := r.MatchingRenderings(source, term, candidates)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// Valid reports whether both patterns are present and compile.
func (r *RenderingSelectionRule) Valid() bool {
	if !strings.Contains(r.questionPattern, TermPlaceholder) {
		return false
	}
	if _, err := regexp.Compile(strings.ReplaceAll(r.questionPattern, TermPlaceholder, "x")); err != nil {
		return false
	}
	return r.renderingMatcher() != nil
}
