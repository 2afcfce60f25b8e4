// Package keyterm models biblical key terms and the literal surface forms
// ("matches") each term can take in a source-language phrase.
//
// A key term's definition is free text written by people, e.g.
// "to lift up (one's) eyes", "kind(ness)" or "courtyard or sheepfold".
// Builder expands such a definition into every word sequence it can match.
// Renderings (vernacular translations of the term) are attached to the Term
// and shared by all of its matches.
package keyterm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Word is an immutable source-language token. Two words are equal when their
// normalized forms are equal; the original text is kept for display.
type Word struct {
	text string
	key  string
}

// NewWord creates a Word from a single token of text.
func NewWord(text string) Word {
	return Word{text: text, key: Normalize(text)}
}

// Text returns the word as it was written.
func (w Word) Text() string { return w.text }

// Key returns the normalized form used for comparison.
func (w Word) Key() string { return w.key }

// Equal reports whether two words have the same normalized form.
func (w Word) Equal(other Word) bool { return w.key == other.key }

// IsZero reports whether the word normalizes to nothing (punctuation only).
func (w Word) IsZero() bool { return w.key == "" }

func (w Word) String() string { return w.text }

// Normalize returns the comparison form of a token: NFC, case-folded, with
// leading and trailing punctuation removed. Inner apostrophes and hyphens
// (e.g. "one's", "cross-examine") are kept.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimFunc(s, isEdgePunct)
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// isSeparator reports runes that split tokens in addition to whitespace.
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '—', '–', '…', '/':
		return true
	}
	return false
}

// Tokenize splits text into words. Tokens consisting only of punctuation are
// dropped.
func Tokenize(text string) []Word {
	fields := strings.FieldsFunc(text, isSeparator)
	words := make([]Word, 0, len(fields))
	for _, f := range fields {
		w := NewWord(f)
		if w.IsZero() {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Key returns the normalized key of a word sequence (keys joined by a
// single space).
func Key(words []Word) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0].key
	}
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.key)
	}
	return sb.String()
}

// Join returns the original text of a word sequence separated by spaces.
func Join(words []Word) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.text
	}
	return strings.Join(texts, " ")
}

// HasPrefix reports whether words begins with prefix (by normalized form).
func HasPrefix(words, prefix []Word) bool {
	if len(prefix) > len(words) {
		return false
	}
	for i, w := range prefix {
		if !w.Equal(words[i]) {
			return false
		}
	}
	return true
}

// Index returns the first position at which sub occurs in words, or -1.
func Index(words, sub []Word) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(words); i++ {
		if HasPrefix(words[i:], sub) {
			return i
		}
	}
	return -1
}
