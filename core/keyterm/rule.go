package keyterm

import (
	"fmt"
	"strings"
)

// RuleKind controls how a key term's definition is turned into matches.
type RuleKind int

const (
	// RuleDefault expands the definition and matches it anywhere.
	RuleDefault RuleKind = iota
	// RuleExclude ignores the definition; only alternates are matched.
	RuleExclude
	// RuleMatchForRefOnly matches only in verses where the term occurs.
	RuleMatchForRefOnly
)

var ruleKindNames = map[RuleKind]string{
	RuleDefault:         "Default",
	RuleExclude:         "Exclude",
	RuleMatchForRefOnly: "MatchForRefOnly",
}

func (k RuleKind) String() string {
	if s, ok := ruleKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// ParseRuleKind converts a rule kind name (case-insensitive) to a RuleKind.
// An empty name means RuleDefault.
func ParseRuleKind(s string) (RuleKind, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RuleDefault, true
	}
	for k, name := range ruleKindNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return RuleDefault, false
}

// Rule customizes the matching of one key term.
type Rule struct {
	// ID is the definition text of the term this rule applies to.
	ID string

	Kind RuleKind

	// Alternates are literal surface forms matched in addition to (or, for
	// RuleExclude, instead of) the definition.
	Alternates []string
}

// RuleTable holds key-term rules keyed by the normalized definition text.
type RuleTable map[string]*Rule

// NewRuleTable builds a table from a list of rules.
func NewRuleTable(rules ...*Rule) RuleTable {
	t := make(RuleTable, len(rules))
	for _, r := range rules {
		t.Add(r)
	}
	return t
}

// Add registers a rule under its ID.
func (t RuleTable) Add(r *Rule) {
	t[ruleKey(r.ID)] = r
}

// Lookup returns the rule for a term definition, or nil.
func (t RuleTable) Lookup(termText string) *Rule {
	if t == nil {
		return nil
	}
	return t[ruleKey(termText)]
}

func ruleKey(s string) string {
	return Key(Tokenize(s))
}
