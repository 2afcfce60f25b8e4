package phrase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/transphrase/core/ref"
)

// SortBy selects the order of the phrase view.
type SortBy int

const (
	// SortDefault puts the phrases whose translation is most useful for
	// inference first: those built from widely shared parts.
	SortDefault SortBy = iota
	// SortReference orders by reference, then category and sequence.
	SortReference
	// SortEnglishPhrase orders by source wording, ignoring case.
	SortEnglishPhrase
	// SortTranslation orders by translation, ignoring case.
	SortTranslation
)

var sortNames = map[SortBy]string{
	SortDefault:       "default",
	SortReference:     "reference",
	SortEnglishPhrase: "phrase",
	SortTranslation:   "translation",
}

func (s SortBy) String() string {
	if n, ok := sortNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SortBy(%d)", int(s))
}

// ParseSortBy converts a sort name to a SortBy.
func ParseSortBy(s string) (SortBy, bool) {
	for k, n := range sortNames {
		if strings.EqualFold(n, s) {
			return k, true
		}
	}
	return SortDefault, false
}

// Sort orders the view. Descending order reverses only the primary key;
// ties are still broken in ascending order.
func (h *Helper) Sort(by SortBy, ascending bool) {
	h.sortBy, h.ascending = by, ascending
	h.sortView()
}

func (h *Helper) sortView() {
	primary := h.primaryOrder()
	sign := 1
	if !h.ascending {
		sign = -1
	}
	slices.SortStableFunc(h.view, func(a, b *Phrase) int {
		if c := primary(a, b); c != 0 {
			return sign * c
		}
		if h.sortBy == SortReference {
			if c := cmp.Compare(a.category, b.category); c != 0 {
				return c
			}
			if c := cmp.Compare(a.sequence, b.sequence); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.index, b.index)
	})
}

func (h *Helper) primaryOrder() func(a, b *Phrase) int {
	switch h.sortBy {
	case SortReference:
		return func(a, b *Phrase) int {
			if c := ref.Compare(a.rng.Start, b.rng.Start); c != 0 {
				return c
			}
			return ref.Compare(a.rng.End, b.rng.End)
		}
	case SortEnglishPhrase:
		return func(a, b *Phrase) int {
			return cmp.Compare(strings.ToLower(a.inUse), strings.ToLower(b.inUse))
		}
	case SortTranslation:
		return func(a, b *Phrase) int {
			return cmp.Compare(strings.ToLower(a.translation), strings.ToLower(b.translation))
		}
	}
	return compareUsefulness
}

// usefulness summarizes how widely a phrase's filler parts are shared.
type usefulness struct {
	minOwners int
	maxOwners int
	parts     int
}

func usefulnessOf(ph *Phrase) usefulness {
	var u usefulness
	for _, p := range ph.parts {
		if p.IsKeyTerm() {
			continue
		}
		n := p.OwnerCount()
		if u.parts == 0 || n < u.minOwners {
			u.minOwners = n
		}
		u.maxOwners = max(u.maxOwners, n)
		u.parts++
	}
	return u
}

// compareUsefulness puts phrases without filler parts first, then phrases
// whose least shared part is shared most, then phrases with fewer filler
// parts, then phrases whose most shared part is shared most.
func compareUsefulness(a, b *Phrase) int {
	ua, ub := usefulnessOf(a), usefulnessOf(b)
	if (ua.parts == 0) != (ub.parts == 0) {
		if ua.parts == 0 {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(ub.minOwners, ua.minOwners); c != 0 {
		return c
	}
	if c := cmp.Compare(ua.parts, ub.parts); c != 0 {
		return c
	}
	return cmp.Compare(ub.maxOwners, ua.maxOwners)
}
