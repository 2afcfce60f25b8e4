package keyterm

import (
	"slices"
	"strings"

	"github.com/FocuswithJustin/transphrase/core/errors"
	"github.com/FocuswithJustin/transphrase/core/ref"
)

// Term is one key-term record: its canonical definition text, the verses in
// which it occurs and the renderings translators have supplied for it.
type Term struct {
	// ID is the external identifier of the term (e.g., a Biblical Terms GUID or lemma).
	ID string

	// Text is the English definition the matches are generated from.
	Text string

	// Occurrences lists the verses where the term occurs.
	Occurrences []ref.BCV

	renderings []string
	best       string
}

// NewTerm creates a term with the given renderings. The first rendering
// becomes the best rendering. Duplicate and empty renderings are skipped.
func NewTerm(id, text string, occurrences []ref.BCV, renderings ...string) *Term {
	t := &Term{ID: id, Text: text, Occurrences: occurrences}
	for _, r := range renderings {
		_ = t.AddRendering(r)
	}
	return t
}

// Renderings returns the term's renderings in the order they were added.
func (t *Term) Renderings() []string {
	return slices.Clone(t.renderings)
}

// HasRendering reports whether text is one of the renderings.
func (t *Term) HasRendering(text string) bool {
	return slices.Contains(t.renderings, text)
}

// BestRendering returns the preferred rendering, or "" if there are none.
func (t *Term) BestRendering() string {
	return t.best
}

// SetBestRendering selects the preferred rendering, which must already exist.
func (t *Term) SetBestRendering(text string) error {
	if !t.HasRendering(text) {
		return &errors.NotFoundError{Resource: "rendering", ID: text}
	}
	t.best = text
	return nil
}

// AddRendering appends a rendering. Adding a rendering that is already
// present fails with a DuplicateError and leaves the term unchanged.
func (t *Term) AddRendering(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.NewValidation("rendering", "must not be empty")
	}
	if t.HasRendering(text) {
		return errors.NewDuplicate("rendering", text, t.Text)
	}
	t.renderings = append(t.renderings, text)
	if t.best == "" {
		t.best = text
	}
	return nil
}

// CanRenderingBeDeleted reports whether text is a rendering other than the
// best one.
func (t *Term) CanRenderingBeDeleted(text string) bool {
	return text != t.best && t.HasRendering(text)
}

// DeleteRendering removes a rendering if CanRenderingBeDeleted allows it and
// reports whether anything was removed.
func (t *Term) DeleteRendering(text string) bool {
	if !t.CanRenderingBeDeleted(text) {
		return false
	}
	t.renderings = slices.DeleteFunc(t.renderings, func(r string) bool { return r == text })
	return true
}

// ClearRenderings removes every rendering, including the best one.
func (t *Term) ClearRenderings() {
	t.renderings = nil
	t.best = ""
}

// OccursIn reports whether any occurrence of the term lies in [start, end].
func (t *Term) OccursIn(start, end ref.BCV) bool {
	for _, o := range t.Occurrences {
		if o >= start && o <= end {
			return true
		}
	}
	return false
}
