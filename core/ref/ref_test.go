package ref

import (
	"errors"
	"testing"

	"github.com/alecthomas/participle/v2"

	perrors "github.com/FocuswithJustin/transphrase/core/errors"
)

func TestBCVParts(t *testing.T) {
	b := New(40, 5, 3)
	if b.Book() != 40 || b.Chapter() != 5 || b.Verse() != 3 {
		t.Errorf("New(40, 5, 3) parts = %d.%d.%d", b.Book(), b.Chapter(), b.Verse())
	}
	if got := b.String(); got != "Matt.5.3" {
		t.Errorf("String() = %q, want %q", got, "Matt.5.3")
	}
	if got := BCV(7).String(); got != "7" {
		t.Errorf("String() of out-of-canon ref = %q, want %q", got, "7")
	}
}

func TestCompare(t *testing.T) {
	a := New(40, 5, 3)
	b := New(40, 5, 12)
	c := New(41, 1, 1)
	if Compare(a, b) != -1 || Compare(b, a) != 1 || Compare(a, a) != 0 {
		t.Error("Compare() does not order verses within a chapter")
	}
	if Compare(b, c) != -1 {
		t.Error("Compare() does not order books canonically")
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("Gen.abc")
	if !errors.Is(err, perrors.ErrInvalidInput) {
		t.Errorf("Parse() error = %v, want ErrInvalidInput", err)
	}
	var perr *perrors.ParseError
	if !errors.As(err, &perr) || perr.Format != "reference" {
		t.Errorf("Parse() error = %v, want a reference ParseError", err)
	}
	var syntax participle.Error
	if !errors.As(err, &syntax) {
		t.Errorf("Parse() error = %v, want the grammar error kept", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Range
		wantErr bool
	}{
		{input: "Matt.5.3", want: Single(New(40, 5, 3))},
		{input: "MAT 5:3", want: Single(New(40, 5, 3))},
		{input: "Matt.5.3-12", want: Range{Start: New(40, 5, 3), End: New(40, 5, 12)}},
		{input: "Matt.5.3-6.2", want: Range{Start: New(40, 5, 3), End: New(40, 6, 2)}},
		{input: "1John.3.16", want: Single(New(62, 3, 16))},
		{input: "2Cor.5.21", want: Single(New(47, 5, 21))},
		{input: "Ps.23", want: Range{Start: New(19, 23, 1), End: New(19, 23, 999)}},
		{input: "Jude", want: Range{Start: New(65, 1, 1), End: New(65, 999, 999)}},
		{input: "", wantErr: true},
		{input: "123", wantErr: true},
		{input: "Gen.abc", wantErr: true},
		{input: "Foo.1.1", wantErr: true},
		{input: "Matt.5.12-3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error", tt.input)
			} else if !errors.Is(err, perrors.ErrInvalidInput) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestRangeString(t *testing.T) {
	tests := []struct {
		r    Range
		want string
	}{
		{Single(New(40, 5, 3)), "Matt.5.3"},
		{Range{Start: New(40, 5, 3), End: New(40, 5, 12)}, "Matt.5.3-12"},
		{Range{Start: New(40, 5, 3), End: New(40, 6, 2)}, "Matt.5.3-6.2"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		back, err := Parse(tt.want)
		if err != nil || back != tt.r {
			t.Errorf("Parse(%q) = %+v, %v; want %+v", tt.want, back, err, tt.r)
		}
	}
}

func TestRangeOverlapsContains(t *testing.T) {
	r := MustParse("Matt.5.3-12")
	if !r.Contains(New(40, 5, 3)) || !r.Contains(New(40, 5, 12)) {
		t.Error("Contains() should be inclusive at both ends")
	}
	if r.Contains(New(40, 5, 13)) {
		t.Error("Contains() matched a verse past the end")
	}
	if !r.Overlaps(MustParse("Matt.5.12-20")) {
		t.Error("Overlaps() missed a shared end verse")
	}
	if r.Overlaps(MustParse("Matt.6.1")) {
		t.Error("Overlaps() matched a disjoint range")
	}
}

func TestBookNumber(t *testing.T) {
	for _, name := range []string{"Matt", "MAT", "matthew", "Matthew"} {
		if n, ok := BookNumber(name); !ok || n != 40 {
			t.Errorf("BookNumber(%q) = %d, %v; want 40, true", name, n, ok)
		}
	}
	if n, ok := BookNumber("1 John"); !ok || n != 62 {
		t.Errorf("BookNumber(%q) = %d, %v; want 62, true", "1 John", n, ok)
	}
	if _, ok := BookNumber("Tobit"); ok {
		t.Error("BookNumber(Tobit) should not resolve")
	}
	if BookCount() != 66 {
		t.Errorf("BookCount() = %d, want 66", BookCount())
	}
	if BookID(0) != "" || BookID(67) != "" {
		t.Error("BookID() out of range should be empty")
	}
}
