package phrase

import (
	"strings"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/ref"
)

// TranslationState describes where a phrase's translation came from.
type TranslationState int

const (
	// NoTranslation means nothing is known about the phrase's translation.
	NoTranslation TranslationState = iota
	// PartiallyInferred means the translation was assembled from parts.
	PartiallyInferred
	// UserTranslated means a person entered or approved the translation.
	UserTranslated
)

func (s TranslationState) String() string {
	switch s {
	case NoTranslation:
		return "NoTranslation"
	case PartiallyInferred:
		return "PartiallyInferred"
	case UserTranslated:
		return "UserTranslated"
	}
	return "TranslationState(?)"
}

// Record is one source phrase as supplied by a loader.
type Record struct {
	Text string

	// Reference is the display form of the reference. When empty the
	// OSIS form of Range is used.
	Reference string
	Range     ref.Range

	Category int
	Sequence int
	Excluded bool
}

// keySeparator joins the reference and the wording in Phrase.Key.
const keySeparator = "\x1f"

// Phrase is one translatable source phrase split into shared parts.
type Phrase struct {
	helper *Helper
	index  int

	original  string
	inUse     string
	words     []keyterm.Word
	reference string
	rng       ref.Range
	category  int
	sequence  int
	excluded  bool

	parts []*Part
	sig   string

	translation string
	user        bool
	setOrder    int
}

// Index returns the position of the phrase in the original input.
func (ph *Phrase) Index() int { return ph.index }

// OriginalPhrase returns the phrase text as loaded.
func (ph *Phrase) OriginalPhrase() string { return ph.original }

// PhraseInUse returns the text after substitutions were applied.
func (ph *Phrase) PhraseInUse() string { return ph.inUse }

// Reference returns the display reference.
func (ph *Phrase) Reference() string { return ph.reference }

// StartRef returns the first verse the phrase refers to.
func (ph *Phrase) StartRef() ref.BCV { return ph.rng.Start }

// EndRef returns the last verse the phrase refers to.
func (ph *Phrase) EndRef() ref.BCV { return ph.rng.End }

// Category returns the phrase's category (e.g. overview or detail question).
func (ph *Phrase) Category() int { return ph.category }

// SequenceNumber returns the phrase's position within its reference.
func (ph *Phrase) SequenceNumber() int { return ph.sequence }

// IsExcluded reports whether the phrase is hidden from normal use.
func (ph *Phrase) IsExcluded() bool { return ph.excluded }

// SetExcluded changes the exclusion flag.
func (ph *Phrase) SetExcluded(excluded bool) { ph.excluded = excluded }

// Parts returns the phrase's parts in order.
func (ph *Phrase) Parts() []*Part { return ph.parts }

// TranslatableParts returns the filler parts in order.
func (ph *Phrase) TranslatableParts() []*Part {
	var out []*Part
	for _, p := range ph.parts {
		if !p.IsKeyTerm() {
			out = append(out, p)
		}
	}
	return out
}

// KeyTermParts returns the key-term parts in order.
func (ph *Phrase) KeyTermParts() []*Part {
	var out []*Part
	for _, p := range ph.parts {
		if p.IsKeyTerm() {
			out = append(out, p)
		}
	}
	return out
}

// PartPattern describes the phrase's shape: one letter per part, K for a
// key term and F for filler.
func (ph *Phrase) PartPattern() string {
	var sb strings.Builder
	for _, p := range ph.parts {
		if p.IsKeyTerm() {
			sb.WriteByte('K')
		} else {
			sb.WriteByte('F')
		}
	}
	return sb.String()
}

// Key identifies the phrase by reference and normalized wording.
func (ph *Phrase) Key() string {
	return ph.rng.String() + keySeparator + keyterm.Key(ph.words)
}

// Translation returns the current translation, user-entered or derived.
func (ph *Phrase) Translation() string { return ph.translation }

// HasUserTranslation reports whether the translation was entered or
// approved by a person.
func (ph *Phrase) HasUserTranslation() bool { return ph.user }

// State returns the translation state.
func (ph *Phrase) State() TranslationState {
	switch {
	case ph.user:
		return UserTranslated
	case ph.translation != "":
		return PartiallyInferred
	}
	return NoTranslation
}

// SetTranslation records a user translation and infers part translations
// from it. An empty translation clears the user translation; the phrase
// then gets a derived translation like any other.
func (ph *Phrase) SetTranslation(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		if ph.user {
			ph.helper.clearUserTranslation(ph)
		} else {
			ph.translation = ""
			ph.helper.propagate("set_translation")
		}
		return
	}
	ph.translation = text
	ph.helper.setUserTranslation(ph)
}

// SetHasUserTranslation approves the current translation (true) or turns a
// user translation back into a derived one (false).
func (ph *Phrase) SetHasUserTranslation(user bool) {
	switch {
	case user == ph.user:
	case user:
		if ph.translation != "" {
			ph.helper.setUserTranslation(ph)
		}
	default:
		ph.helper.clearUserTranslation(ph)
	}
}

func (ph *Phrase) String() string { return ph.original }

// signature identifies the exact sequence of parts.
func (ph *Phrase) signature() string {
	var sb strings.Builder
	for i, p := range ph.parts {
		if i > 0 {
			sb.WriteString(keySeparator)
		}
		if p.IsKeyTerm() {
			sb.WriteByte('k')
		}
		sb.WriteString(p.key)
	}
	return sb.String()
}
