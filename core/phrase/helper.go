// Package phrase splits source phrases into shared parts around key-term
// occurrences and infers translations for untranslated phrases from the
// ones a translator has already done.
//
// All state lives in memory and is mutated synchronously. A Helper and its
// phrases and parts must not be used from more than one goroutine at a time.
package phrase

import (
	"cmp"
	"slices"
	"time"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/internal/logging"
)

// Helper owns a phrase corpus, its key-term matches and the shared parts
// the phrases are built from. It keeps a filtered and sorted view of the
// phrases for display.
type Helper struct {
	phrases []*Phrase
	arena   *arena

	matches  []*keyterm.Match
	byFirst  map[string][]*keyterm.Match
	byKey    map[string][]*keyterm.Match
	byPhrase map[string][]*Phrase

	rules []*keyterm.RenderingSelectionRule

	view      []*Phrase
	filter    Filter
	sortBy    SortBy
	ascending bool

	setCounter int
}

// NewHelper builds the key-term match table from terms and rules, applies
// the substitutions to every record and splits the resulting phrases into
// parts. The view starts unfiltered in default order.
func NewHelper(records []Record, terms []*keyterm.Term, rules keyterm.RuleTable, subs []Substitution) *Helper {
	h := &Helper{
		arena:     newArena(),
		byFirst:   make(map[string][]*keyterm.Match),
		byKey:     make(map[string][]*keyterm.Match),
		byPhrase:  make(map[string][]*Phrase),
		ascending: true,
	}
	h.buildMatchTable(keyterm.BuildMatches(terms, rules))

	for i, rec := range records {
		ph := &Phrase{
			helper:    h,
			index:     i,
			original:  rec.Text,
			inUse:     ApplySubstitutions(rec.Text, subs),
			reference: rec.Reference,
			rng:       rec.Range,
			category:  rec.Category,
			sequence:  rec.Sequence,
			excluded:  rec.Excluded,
		}
		if ph.reference == "" {
			ph.reference = rec.Range.String()
		}
		ph.words = keyterm.Tokenize(ph.inUse)
		h.decompose(ph)
		h.phrases = append(h.phrases, ph)
		h.byPhrase[ph.Key()] = append(h.byPhrase[ph.Key()], ph)
	}
	for _, ph := range h.phrases {
		ph.sig = ph.signature()
	}

	h.propagate("load")
	h.refreshView()
	logging.PhraseLoad(len(h.phrases), len(h.arena.fillers), len(h.matches))
	return h
}

func (h *Helper) buildMatchTable(matches []*keyterm.Match) {
	h.matches = matches
	for _, m := range matches {
		first := m.Words()[0].Key()
		h.byFirst[first] = append(h.byFirst[first], m)
		h.byKey[m.Key()] = append(h.byKey[m.Key()], m)
	}
	for k, list := range h.byFirst {
		slices.SortStableFunc(list, func(a, b *keyterm.Match) int {
			return cmp.Compare(len(b.Words()), len(a.Words()))
		})
		h.byFirst[k] = list
	}
}

// longestMatch returns the longest match that starts at words[0] and may
// be used for the phrase.
func (h *Helper) longestMatch(ph *Phrase, words []keyterm.Word) *keyterm.Match {
	for _, m := range h.byFirst[words[0].Key()] {
		if len(m.Words()) <= len(words) && keyterm.HasPrefix(words, m.Words()) &&
			m.AppliesTo(ph.rng.Start, ph.rng.End) {
			return m
		}
	}
	return nil
}

// decompose scans the phrase left to right, taking the longest applicable
// key-term match at each word and interning the filler runs in between.
func (h *Helper) decompose(ph *Phrase) {
	var parts []*Part
	start := 0
	flush := func(end int) {
		parts = append(parts, h.arena.intern(ph.words[start:end])...)
	}
	for i := 0; i < len(ph.words); {
		m := h.longestMatch(ph, ph.words[i:])
		if m == nil {
			i++
			continue
		}
		flush(i)
		words := ph.words[i : i+len(m.Words())]
		parts = append(parts, h.arena.keyTerm(words, h.byKey[m.Key()]))
		i += len(words)
		start = i
	}
	flush(len(ph.words))

	ph.parts = h.arena.expand(parts)
	for _, p := range ph.parts {
		p.addOwner(ph)
	}
}

// Phrases returns every phrase in input order.
func (h *Helper) Phrases() []*Phrase { return h.phrases }

// Phrase returns the phrase at position i of the filtered, sorted view.
func (h *Helper) Phrase(i int) *Phrase { return h.view[i] }

// Count returns the number of phrases in the view.
func (h *Helper) Count() int { return len(h.view) }

// View returns a copy of the filtered, sorted view.
func (h *Helper) View() []*Phrase { return slices.Clone(h.view) }

// UnfilteredCount returns the number of phrases in the corpus.
func (h *Helper) UnfilteredCount() int { return len(h.phrases) }

// PhrasesByKey returns the phrases with the given Phrase.Key.
func (h *Helper) PhrasesByKey(key string) []*Phrase { return h.byPhrase[key] }

// Parts returns the filler parts in creation order.
func (h *Helper) Parts() []*Part { return h.arena.liveFillers() }

// KeyTermParts returns the key-term parts in creation order.
func (h *Helper) KeyTermParts() []*Part { return h.arena.keyTermParts() }

// Matches returns the full key-term match table.
func (h *Helper) Matches() []*keyterm.Match { return h.matches }

// MatchesForWord returns the matches used in at least one phrase whose
// wording contains w.
func (h *Helper) MatchesForWord(w keyterm.Word) []*keyterm.Match {
	var out []*keyterm.Match
	for _, p := range h.arena.keyTermParts() {
		if len(p.owners) == 0 || keyterm.Index(p.words, []keyterm.Word{w}) < 0 {
			continue
		}
		for _, m := range p.matches {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// RenderingSelectionRules returns the rules consulted when choosing among a
// term's renderings.
func (h *Helper) RenderingSelectionRules() []*keyterm.RenderingSelectionRule {
	return h.rules
}

// SetRenderingSelectionRules replaces the rules and re-derives every
// derived translation.
func (h *Helper) SetRenderingSelectionRules(rules []*keyterm.RenderingSelectionRule) {
	h.rules = slices.Clone(rules)
	h.propagate("rendering_rules")
}

// RefreshTranslations re-derives every derived translation. Call it after
// editing key-term renderings.
func (h *Helper) RefreshTranslations() {
	h.propagate("refresh")
}

// Entry is a saved user translation for the phrase with the given key.
type Entry struct {
	Key         string
	Translation string
}

// Load records saved user translations without running inference and
// returns the number of entries that matched no phrase. Call
// FinalizeAndPropagate once all entries are loaded.
func (h *Helper) Load(entries []Entry) int {
	missing := 0
	for _, e := range entries {
		phrases := h.byPhrase[e.Key]
		if len(phrases) == 0 || e.Translation == "" {
			missing++
			continue
		}
		for _, ph := range phrases {
			ph.translation = e.Translation
			ph.user = true
			h.setCounter++
			ph.setOrder = h.setCounter
		}
	}
	return missing
}

// FinalizeAndPropagate infers part translations from every user
// translation, in the order they were set, and then derives the
// translations of all other phrases.
func (h *Helper) FinalizeAndPropagate() {
	start := time.Now()
	users := h.userPhrases()
	for _, ph := range users {
		h.attribute(ph, nil)
	}
	for _, ph := range users {
		if open := untranslatedParts(ph); len(open) > 0 {
			h.attribute(ph, open)
		}
	}
	h.derive()
	logging.InferenceRun("finalize", len(users), len(h.phrases)-len(users), time.Since(start))
}

// userPhrases returns the user-translated phrases in the order their
// translations were set.
func (h *Helper) userPhrases() []*Phrase {
	var out []*Phrase
	for _, ph := range h.phrases {
		if ph.user {
			out = append(out, ph)
		}
	}
	slices.SortStableFunc(out, func(a, b *Phrase) int { return cmp.Compare(a.setOrder, b.setOrder) })
	return out
}
