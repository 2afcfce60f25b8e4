package phrase

import (
	"slices"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
)

// Part is a run of words shared by every phrase containing that exact
// wording. A part is either a key-term occurrence, whose translation comes
// from the term's renderings, or filler text, whose translation is inferred
// from user-translated phrases.
type Part struct {
	words   []keyterm.Word
	key     string
	matches []*keyterm.Match
	seq     int

	translation string
	owners      []*Phrase

	// Set when the part was split after creation. A dead part is never
	// visible from a phrase; it only forwards to its replacement.
	dead       bool
	replacedBy []*Part
}

// Text returns the words of the part as first written.
func (p *Part) Text() string { return keyterm.Join(p.words) }

// Key returns the normalized wording of the part.
func (p *Part) Key() string { return p.key }

// Words returns the words of the part.
func (p *Part) Words() []keyterm.Word { return p.words }

// IsKeyTerm reports whether the part is a key-term occurrence.
func (p *Part) IsKeyTerm() bool { return p.matches != nil }

// Matches returns the key-term matches for this wording. It is empty for
// filler parts.
func (p *Part) Matches() []*keyterm.Match { return p.matches }

// Translation returns the inferred translation of a filler part.
func (p *Part) Translation() string { return p.translation }

// Owners returns the phrases containing the part, in phrase order.
func (p *Part) Owners() []*Phrase { return p.owners }

// OwnerCount returns the number of phrases containing the part.
func (p *Part) OwnerCount() int { return len(p.owners) }

// Renderings returns the renderings of every term matching a key-term part,
// without duplicates.
func (p *Part) Renderings() []string {
	var out []string
	for _, t := range p.terms() {
		for _, r := range t.Renderings() {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// HasRenderings reports whether any term of a key-term part has renderings.
func (p *Part) HasRenderings() bool {
	for _, t := range p.terms() {
		if len(t.Renderings()) > 0 {
			return true
		}
	}
	return false
}

// BestRendering returns the best rendering of the first term that has one.
func (p *Part) BestRendering() string {
	for _, t := range p.terms() {
		if b := t.BestRendering(); b != "" {
			return b
		}
	}
	return ""
}

func (p *Part) terms() []*keyterm.Term {
	var out []*keyterm.Term
	for _, m := range p.matches {
		if !slices.Contains(out, m.Term()) {
			out = append(out, m.Term())
		}
	}
	return out
}

func (p *Part) String() string { return p.Text() }

func (p *Part) addOwner(ph *Phrase) {
	i, found := slices.BinarySearchFunc(p.owners, ph.index, func(o *Phrase, idx int) int {
		return o.index - idx
	})
	if !found {
		p.owners = slices.Insert(p.owners, i, ph)
	}
}

// arena interns parts so that identical wording yields the same *Part. No
// live filler part ever contains another live filler part: a new part is
// cut out of any longer part that contains it, and a new run containing
// existing parts is built from them.
type arena struct {
	fillers  map[string]*Part
	byWord   map[string][]*Part
	keyTerms map[string]*Part
	seq      int
}

func newArena() *arena {
	return &arena{
		fillers:  make(map[string]*Part),
		byWord:   make(map[string][]*Part),
		keyTerms: make(map[string]*Part),
	}
}

// keyTerm returns the part for a key-term occurrence.
func (a *arena) keyTerm(words []keyterm.Word, matches []*keyterm.Match) *Part {
	key := keyterm.Key(words)
	if p, ok := a.keyTerms[key]; ok {
		return p
	}
	p := &Part{words: words, key: key, matches: matches, seq: a.next()}
	a.keyTerms[key] = p
	return p
}

func (a *arena) next() int {
	a.seq++
	return a.seq
}

// intern returns live filler parts that together spell words.
func (a *arena) intern(words []keyterm.Word) []*Part {
	if len(words) == 0 {
		return nil
	}
	if p, ok := a.fillers[keyterm.Key(words)]; ok {
		return []*Part{p}
	}
	if q, at := a.longestContained(words); q != nil {
		out := a.intern(words[:at])
		out = append(out, q)
		out = append(out, a.intern(words[at+len(q.words):])...)
		return a.expand(out)
	}

	p := a.create(words)
	for _, q := range a.containing(p) {
		if !q.dead {
			a.split(q, p)
		}
	}
	return a.expand([]*Part{p})
}

func (a *arena) create(words []keyterm.Word) *Part {
	p := &Part{words: words, key: keyterm.Key(words), seq: a.next()}
	a.fillers[p.key] = p
	for _, k := range distinctKeys(words) {
		a.byWord[k] = append(a.byWord[k], p)
	}
	return p
}

func (a *arena) remove(p *Part) {
	p.dead = true
	delete(a.fillers, p.key)
	for _, k := range distinctKeys(p.words) {
		a.byWord[k] = slices.DeleteFunc(a.byWord[k], func(o *Part) bool { return o == p })
	}
}

// longestContained finds the longest live part occurring inside words and
// its position. Ties go to the leftmost occurrence.
func (a *arena) longestContained(words []keyterm.Word) (*Part, int) {
	var best *Part
	at := -1
	for i, w := range words {
		for _, q := range a.byWord[w.Key()] {
			if len(q.words) > len(words)-i || !keyterm.HasPrefix(words[i:], q.words) {
				continue
			}
			if best == nil || len(q.words) > len(best.words) {
				best, at = q, i
			}
		}
	}
	return best, at
}

// containing lists the live parts, other than p, that contain p's words.
func (a *arena) containing(p *Part) []*Part {
	var out []*Part
	for _, q := range a.byWord[p.words[0].Key()] {
		if q != p && len(q.words) > len(p.words) && keyterm.Index(q.words, p.words) >= 0 {
			out = append(out, q)
		}
	}
	return out
}

// split retires q, which contains p, and replaces it in every owning phrase
// by the parts spelling its left remainder, p, and its right remainder.
func (a *arena) split(q, p *Part) {
	a.remove(q)
	idx := keyterm.Index(q.words, p.words)
	repl := a.intern(q.words[:idx])
	repl = append(repl, p)
	repl = append(repl, a.intern(q.words[idx+len(p.words):])...)
	q.replacedBy = repl

	live := a.expand(repl)
	for _, ph := range q.owners {
		var parts []*Part
		for _, part := range ph.parts {
			if part == q {
				parts = append(parts, live...)
			} else {
				parts = append(parts, part)
			}
		}
		ph.parts = parts
		for _, r := range live {
			r.addOwner(ph)
		}
	}
	q.owners = nil
}

// expand replaces dead parts by their live replacements.
func (a *arena) expand(parts []*Part) []*Part {
	var out []*Part
	for _, p := range parts {
		if p.dead {
			out = append(out, a.expand(p.replacedBy)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// liveFillers returns the live filler parts in creation order.
func (a *arena) liveFillers() []*Part {
	out := make([]*Part, 0, len(a.fillers))
	for _, p := range a.fillers {
		out = append(out, p)
	}
	slices.SortFunc(out, func(x, y *Part) int { return x.seq - y.seq })
	return out
}

// keyTermParts returns the key-term parts in creation order.
func (a *arena) keyTermParts() []*Part {
	out := make([]*Part, 0, len(a.keyTerms))
	for _, p := range a.keyTerms {
		out = append(out, p)
	}
	slices.SortFunc(out, func(x, y *Part) int { return x.seq - y.seq })
	return out
}

func distinctKeys(words []keyterm.Word) []string {
	var keys []string
	for _, w := range words {
		if !slices.Contains(keys, w.Key()) {
			keys = append(keys, w.Key())
		}
	}
	return keys
}
