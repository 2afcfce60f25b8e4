package keyterm

import "github.com/FocuswithJustin/transphrase/core/ref"

// Match is one literal surface form of a key term. All matches built from
// the same Term share its renderings.
type Match struct {
	words    []Word
	term     *Term
	anywhere bool
}

func newMatch(words []Word, term *Term, anywhere bool) *Match {
	return &Match{words: words, term: term, anywhere: anywhere}
}

// Words returns the word sequence this match covers.
func (m *Match) Words() []Word { return m.words }

// Key returns the normalized text of the match.
func (m *Match) Key() string { return Key(m.words) }

// Text returns the match's words joined by spaces.
func (m *Match) Text() string { return Join(m.words) }

// Term returns the key term the match was built from.
func (m *Match) Term() *Term { return m.term }

// Anywhere reports whether the match may be used in any verse. When false
// the match only applies where the term actually occurs.
func (m *Match) Anywhere() bool { return m.anywhere }

// AppliesTo reports whether the match may be used for a phrase covering
// [start, end].
func (m *Match) AppliesTo(start, end ref.BCV) bool {
	return m.anywhere || m.term.OccursIn(start, end)
}

// Renderings returns the renderings of the underlying term.
func (m *Match) Renderings() []string { return m.term.Renderings() }

// BestRendering returns the preferred rendering of the underlying term.
func (m *Match) BestRendering() string { return m.term.BestRendering() }

// SetBestRendering selects the preferred rendering of the underlying term.
func (m *Match) SetBestRendering(text string) error { return m.term.SetBestRendering(text) }

// AddRendering adds a rendering to the underlying term.
func (m *Match) AddRendering(text string) error { return m.term.AddRendering(text) }

// CanRenderingBeDeleted reports whether text may be removed.
func (m *Match) CanRenderingBeDeleted(text string) bool { return m.term.CanRenderingBeDeleted(text) }

// DeleteRendering removes a rendering that is not the best one.
func (m *Match) DeleteRendering(text string) bool { return m.term.DeleteRendering(text) }

// ClearRenderings removes every rendering of the underlying term.
func (m *Match) ClearRenderings() { m.term.ClearRenderings() }

func (m *Match) String() string { return m.Text() }
