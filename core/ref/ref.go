// Package ref provides the ordered scripture reference type used to place
// phrases and key-term occurrences in the canon.
//
// A BCV packs book, chapter and verse into one integer
// (book*1000000 + chapter*1000 + verse) so that references compare in
// canonical order with the ordinary integer operators.
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/transphrase/core/errors"
)

const (
	bookFactor    = 1000000
	chapterFactor = 1000
	maxVerse      = 999
)

// BCV is a packed book/chapter/verse reference.
type BCV int

// New packs a book, chapter and verse into a BCV.
func New(book, chapter, verse int) BCV {
	return BCV(book*bookFactor + chapter*chapterFactor + verse)
}

// Book returns the canonical book number.
func (b BCV) Book() int { return int(b) / bookFactor }

// Chapter returns the chapter number.
func (b BCV) Chapter() int { return int(b) % bookFactor / chapterFactor }

// Verse returns the verse number.
func (b BCV) Verse() int { return int(b) % chapterFactor }

// String returns the OSIS form of the reference (e.g., "Matt.5.3").
// References outside the canon are printed as the raw integer.
func (b BCV) String() string {
	id := BookID(b.Book())
	if id == "" {
		return strconv.Itoa(int(b))
	}
	var sb strings.Builder
	sb.WriteString(id)
	if b.Chapter() > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(b.Chapter()))
		if b.Verse() > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(b.Verse()))
		}
	}
	return sb.String()
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, with or
// after b.
func Compare(a, b BCV) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Range is an inclusive span of references.
type Range struct {
	Start BCV `json:"start"`
	End   BCV `json:"end"`
}

// Single returns a range covering exactly one reference.
func Single(b BCV) Range {
	return Range{Start: b, End: b}
}

// Contains returns true if b falls within the range.
func (r Range) Contains(b BCV) bool {
	return b >= r.Start && b <= r.End
}

// Overlaps returns true if the two ranges share at least one reference.
func (r Range) Overlaps(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// String returns the OSIS form of the range ("Matt.5.3-12" or "Matt.5.3-6.2").
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	if r.Start.Book() != r.End.Book() {
		return r.Start.String() + "-" + r.End.String()
	}
	if r.Start.Chapter() == r.End.Chapter() && r.Start.Verse() > 0 {
		return r.Start.String() + "-" + strconv.Itoa(r.End.Verse())
	}
	return fmt.Sprintf("%s-%d.%d", r.Start.String(), r.End.Chapter(), r.End.Verse())
}

// refGrammar is the participle grammar for references.
// Examples: "Matt.5.3", "Matt 5:3", "1John.3.16", "Matt.5.3-12", "Matt.5.3-6.2", "Ps.23"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `@Int?`
	BookName   string       `@Ident`
	ChapterRef *chapterPart `( "."? @@ )?`
	End        *rangeEnd    `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int  `@Int`
	Verse   *int `( ( "." | ":" ) @Int )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type rangeEnd struct {
	First  int  `@Int`
	Second *int `( ( "." | ":" ) @Int )?`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[.:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference or reference range.
// Supported formats:
//   - "Matt.5.3" or "MAT 5:3" (single verse)
//   - "Matt.5.3-12" (verse range)
//   - "Matt.5.3-6.2" (range across chapters)
//   - "Matt.5" (whole chapter)
func Parse(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, errors.NewParse("reference", "", "empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Range{}, &errors.ParseError{Format: "reference", Message: strconv.Quote(s), Err: err}
	}

	bookNum, ok := BookNumber(parsed.BookPrefix + parsed.BookName)
	if !ok {
		return Range{}, errors.NewParse("reference", "", "unknown book "+strconv.Quote(parsed.BookPrefix+parsed.BookName))
	}

	if parsed.ChapterRef == nil {
		return Range{Start: New(bookNum, 1, 1), End: New(bookNum, maxVerse, maxVerse)}, nil
	}
	chapter := parsed.ChapterRef.Chapter

	if parsed.ChapterRef.Verse == nil {
		r := Range{Start: New(bookNum, chapter, 1), End: New(bookNum, chapter, maxVerse)}
		if parsed.End != nil {
			r.End = New(bookNum, parsed.End.First, maxVerse)
		}
		return r, nil
	}

	start := New(bookNum, chapter, *parsed.ChapterRef.Verse)
	r := Range{Start: start, End: start}
	if parsed.End != nil {
		if parsed.End.Second != nil {
			r.End = New(bookNum, parsed.End.First, *parsed.End.Second)
		} else {
			r.End = New(bookNum, chapter, parsed.End.First)
		}
	}
	if r.End < r.Start {
		return Range{}, errors.NewParse("reference", "", "range ends before it starts: "+strconv.Quote(s))
	}
	return r, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// static tables.
func MustParse(s string) Range {
	r, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("ref: %v", err))
	}
	return r
}
