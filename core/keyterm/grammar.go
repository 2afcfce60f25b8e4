package keyterm

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Key-term definitions are parsed with a small grammar:
//
//	term    = segment? ( sep segment? )*        sep: "," ";" "=" or a standalone "or"
//	segment = element+
//	element = text | space | "(" inner* ")"
//	inner   = text | space | sep | "(" inner* ")"
//
// A parenthesized group is optional. Groups glued to letters ("kind(ness)")
// splice characters into a word; groups separated by spaces ("(the) city")
// add or drop whole words. Both fall out of plain string concatenation.

//nolint:govet // participle grammar tags are not standard struct tags
type termNode struct {
	Segments []*segmentNode `@@? ( ( Sep | Or ) @@? )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type segmentNode struct {
	Elements []*elementNode `@@+`
}

//nolint:govet // participle grammar tags are not standard struct tags
type elementNode struct {
	Text  *string    `  @Text`
	Space *string    `| @Space`
	Group *groupNode `| "(" @@ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type groupNode struct {
	Items []*innerNode `@@+`
}

//nolint:govet // participle grammar tags are not standard struct tags
type innerNode struct {
	Text  *string    `  @( Text | Or | Sep )`
	Space *string    `| @Space`
	Group *groupNode `| "(" @@ ")"`
}

var termLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Open", Pattern: `\(`},
	{Name: "Close", Pattern: `\)`},
	{Name: "Sep", Pattern: `[,;=]`},
	{Name: "Or", Pattern: `[oO][rR]\b`},
	{Name: "Space", Pattern: `\s+`},
	{Name: "Text", Pattern: `[^\s(),;=]+`},
})

var termParser = participle.MustBuild[termNode](
	participle.Lexer(termLexer),
)

var emptyGroup = regexp.MustCompile(`\(\s*\)`)

// piece is one element of a segment after parsing: literal text, or an
// optional group whose variants are already expanded.
type piece struct {
	literal  string
	optional []string // nil for literals; never contains the omitted ""
}

// Variants expands a key-term definition into the literal text of every
// surface form it describes, segment by segment. Within a segment the
// all-omitted variant comes first and the rightmost optional group varies
// fastest. Empty variants are dropped. Malformed parentheses never cause an
// error; unmatched ones are ignored.
func Variants(definition string) []string {
	var out []string
	for _, seg := range parseSegments(definition) {
		for _, v := range expand(seg) {
			v = strings.Join(strings.Fields(v), " ")
			if v == "" || len(Tokenize(v)) == 0 {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

// parseSegments parses a definition into top-level segments, falling back to
// progressively cruder readings when the parentheses do not balance.
func parseSegments(definition string) [][]piece {
	text := emptyGroup.ReplaceAllString(definition, " ")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if ast, err := termParser.ParseString("", text); err == nil {
		return segmentsFromAST(ast)
	}
	if ast, err := termParser.ParseString("", dropUnmatchedParens(text)); err == nil {
		return segmentsFromAST(ast)
	}
	flat := strings.NewReplacer("(", " ", ")", " ").Replace(text)
	if ast, err := termParser.ParseString("", flat); err == nil {
		return segmentsFromAST(ast)
	}
	return [][]piece{{{literal: flat}}}
}

// dropUnmatchedParens removes every parenthesis that has no partner.
func dropUnmatchedParens(s string) string {
	drop := make(map[int]bool)
	var open []int
	for i, r := range s {
		switch r {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				drop[i] = true
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	for _, i := range open {
		drop[i] = true
	}
	if len(drop) == 0 {
		return s
	}
	var sb strings.Builder
	for i, r := range s {
		if drop[i] {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func segmentsFromAST(ast *termNode) [][]piece {
	segs := make([][]piece, 0, len(ast.Segments))
	for _, seg := range ast.Segments {
		var pieces []piece
		for _, el := range seg.Elements {
			switch {
			case el.Text != nil:
				pieces = append(pieces, piece{literal: *el.Text})
			case el.Space != nil:
				pieces = append(pieces, piece{literal: " "})
			case el.Group != nil:
				pieces = append(pieces, piece{optional: expandGroup(el.Group)})
			}
		}
		segs = append(segs, optionalLeadingTo(pieces))
	}
	return segs
}

func expandGroup(g *groupNode) []string {
	var pieces []piece
	for _, item := range g.Items {
		switch {
		case item.Text != nil:
			pieces = append(pieces, piece{literal: *item.Text})
		case item.Space != nil:
			pieces = append(pieces, piece{literal: " "})
		case item.Group != nil:
			pieces = append(pieces, piece{optional: expandGroup(item.Group)})
		}
	}
	return expand(pieces)
}

// optionalLeadingTo turns a bare leading infinitive marker ("to cry") into an
// optional group so both "cry" and "to cry" are generated.
func optionalLeadingTo(pieces []piece) []piece {
	i := 0
	for i < len(pieces) && pieces[i].optional == nil && strings.TrimSpace(pieces[i].literal) == "" {
		i++
	}
	if i+2 >= len(pieces) {
		return pieces
	}
	first := pieces[i]
	if first.optional != nil || !strings.EqualFold(first.literal, "to") {
		return pieces
	}
	if pieces[i+1].optional != nil || strings.TrimSpace(pieces[i+1].literal) != "" {
		return pieces
	}
	out := make([]piece, 0, len(pieces))
	out = append(out, pieces[:i]...)
	out = append(out, piece{optional: []string{first.literal}})
	return append(out, pieces[i+1:]...)
}

// expand produces the cartesian product of a piece sequence. Each optional
// group contributes "omitted" first, then its own variants; the loop nests
// so that later groups vary fastest.
func expand(pieces []piece) []string {
	out := []string{""}
	for _, p := range pieces {
		if p.optional == nil {
			for i := range out {
				out[i] += p.literal
			}
			continue
		}
		next := make([]string, 0, len(out)*(len(p.optional)+1))
		for _, prefix := range out {
			next = append(next, prefix)
			for _, opt := range p.optional {
				next = append(next, prefix+opt)
			}
		}
		out = next
	}
	return out
}
