package keyterm

// Builder turns one key term (and the rule that customizes it, if any) into
// the list of matches that can occur in source phrases.
type Builder struct {
	term    *Term
	rule    *Rule
	matches []*Match
}

// NewBuilder expands a term using the rule registered for its definition in
// rules (which may be nil).
func NewBuilder(term *Term, rules RuleTable) *Builder {
	b := &Builder{term: term, rule: rules.Lookup(term.Text)}
	b.build()
	return b
}

// Matches returns the generated matches in generation order.
func (b *Builder) Matches() []*Match {
	return b.matches
}

// Rule returns the rule applied to the term, or nil.
func (b *Builder) Rule() *Rule {
	return b.rule
}

func (b *Builder) build() {
	anywhere := true
	if b.rule != nil {
		anywhere = b.rule.Kind != RuleMatchForRefOnly
		for _, alt := range b.rule.Alternates {
			b.add(alt, anywhere)
		}
		if b.rule.Kind == RuleExclude {
			return
		}
	}
	for _, v := range Variants(b.term.Text) {
		b.add(v, anywhere)
	}
}

func (b *Builder) add(text string, anywhere bool) {
	words := Tokenize(text)
	if len(words) == 0 {
		return
	}
	b.matches = append(b.matches, newMatch(words, b.term, anywhere))
}

// BuildMatches expands every term and returns all matches in term order.
func BuildMatches(terms []*Term, rules RuleTable) []*Match {
	var all []*Match
	for _, t := range terms {
		all = append(all, NewBuilder(t, rules).Matches()...)
	}
	return all
}
