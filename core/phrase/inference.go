package phrase

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/transphrase/internal/logging"
)

// span is a byte interval [start, end) of a translation.
type span struct{ start, end int }

func (s span) empty() bool { return s.start >= s.end }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

func overlapsAny(s span, list []span) bool {
	for _, o := range list {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isEdge(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func trimText(s string) string { return strings.TrimFunc(s, isEdge) }

// trimSpan shrinks sp past leading and trailing spaces and punctuation.
func trimSpan(text string, sp span) span {
	for sp.start < sp.end {
		r, n := utf8.DecodeRuneInString(text[sp.start:sp.end])
		if !isEdge(r) {
			break
		}
		sp.start += n
	}
	for sp.end > sp.start {
		r, n := utf8.DecodeLastRuneInString(text[sp.start:sp.end])
		if !isEdge(r) {
			break
		}
		sp.end -= n
	}
	return sp
}

// wordSpans returns the whitespace-separated tokens of text.
func wordSpans(text string) []span {
	var out []span
	start := -1
	for i, r := range text {
		switch {
		case unicode.IsSpace(r) && start >= 0:
			out = append(out, span{start, i})
			start = -1
		case !unicode.IsSpace(r) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(text)})
	}
	return out
}

func literal(s string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
}

// aligned reports whether text[sp] starts and ends on word boundaries.
func aligned(text string, sp span) bool {
	if sp.empty() {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text[sp.start:])
	last, _ := utf8.DecodeLastRuneInString(text[:sp.end])
	if sp.start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:sp.start])
		if isWordRune(prev) && isWordRune(first) {
			return false
		}
	}
	if sp.end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[sp.end:])
		if isWordRune(next) && isWordRune(last) {
			return false
		}
	}
	return true
}

// findAligned returns the first word-aligned, case-insensitive occurrence
// of re in text that overlaps none of the reserved spans.
func findAligned(text string, re *regexp.Regexp, reserved []span) (span, bool) {
	for _, m := range re.FindAllStringIndex(text, -1) {
		sp := span{m[0], m[1]}
		if aligned(text, sp) && !overlapsAny(sp, reserved) {
			return sp, true
		}
	}
	return span{}, false
}

// renderingUse is where a key-term part's rendering was found in a
// translation.
type renderingUse struct {
	part      *Part
	rendering string
	at        span
	found     bool
}

// RenderingUse reports the rendering found for one key-term part of a
// phrase's translation.
type RenderingUse struct {
	Part      *Part
	Rendering string
	Start     int
	End       int
}

// RenderingsInUse locates, for each key-term part of the phrase in order,
// the rendering used in the current translation. Parts whose rendering
// cannot be found are left out.
func (ph *Phrase) RenderingsInUse() []RenderingUse {
	var out []RenderingUse
	for _, u := range ph.helper.locateRenderings(ph, ph.translation) {
		if u.found {
			out = append(out, RenderingUse{Part: u.part, Rendering: u.rendering, Start: u.at.start, End: u.at.end})
		}
	}
	return out
}

func (h *Helper) locateRenderings(ph *Phrase, text string) []renderingUse {
	var (
		uses     []renderingUse
		consumed []span
		prevEnd  = make(map[*Part]int)
	)
	for _, p := range ph.parts {
		if !p.IsKeyTerm() {
			continue
		}
		u := renderingUse{part: p}
		if r, sp, ok := h.findTermRenderingInUse(ph, p, text, prevEnd[p], consumed); ok {
			u.rendering, u.at, u.found = r, sp, true
			consumed = append(consumed, sp)
			prevEnd[p] = sp.end
		}
		uses = append(uses, u)
	}
	return uses
}

// findTermRenderingInUse finds the earliest occurrence of one of the part's
// renderings at or after from that is not already consumed. Renderings
// picked by the selection rules for this phrase are tried first.
func (h *Helper) findTermRenderingInUse(ph *Phrase, p *Part, text string, from int, consumed []span) (string, span, bool) {
	candidates := p.Renderings()
	if len(candidates) == 0 {
		return "", span{}, false
	}
	best := p.BestRendering()
	if preferred := h.preferredRenderings(ph, p, candidates); len(preferred) > 0 {
		if r, sp, ok := earliestRendering(text, preferred, best, from, consumed); ok {
			return r, sp, true
		}
	}
	return earliestRendering(text, candidates, best, from, consumed)
}

func earliestRendering(text string, candidates []string, best string, from int, consumed []span) (string, span, bool) {
	var (
		chosen string
		at     span
		found  bool
	)
	for _, c := range candidates {
		sp, ok := firstOccurrence(text, c, from, consumed)
		if !ok {
			continue
		}
		better := !found || sp.start < at.start ||
			(sp.start == at.start && chosen != best && (c == best || len(c) > len(chosen)))
		if !better {
			continue
		}
		chosen, at, found = c, sp, true
	}
	return chosen, at, found
}

func firstOccurrence(text, rendering string, from int, consumed []span) (span, bool) {
	for _, m := range literal(rendering).FindAllStringIndex(text, -1) {
		sp := span{m[0], m[1]}
		if sp.start >= from && !overlapsAny(sp, consumed) {
			return sp, true
		}
	}
	return span{}, false
}

func (h *Helper) preferredRenderings(ph *Phrase, p *Part, candidates []string) []string {
	var out []string
	for _, rule := range h.rules {
		for _, r := range rule.MatchingRenderings(ph.inUse, p.words, candidates) {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// chooseRendering picks the rendering shown for a key-term part of a
// derived translation.
func (h *Helper) chooseRendering(ph *Phrase, p *Part) string {
	candidates := p.Renderings()
	for _, rule := range h.rules {
		if r, ok := rule.ChooseRendering(ph.inUse, p.words, candidates); ok {
			return r
		}
	}
	if best := p.BestRendering(); best != "" {
		return best
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// runSegment pairs a run of consecutive filler parts with the piece of a
// translation believed to translate them.
type runSegment struct {
	parts []*Part
	text  string
}

func (s runSegment) contains(p *Part) bool { return slices.Contains(s.parts, p) }

// fillerRuns splits the parts at key-term parts. There is always one more
// run than key-term parts; runs may be empty.
func fillerRuns(ph *Phrase) [][]*Part {
	runs := [][]*Part{nil}
	for _, p := range ph.parts {
		if p.IsKeyTerm() {
			runs = append(runs, nil)
			continue
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], p)
	}
	return runs
}

// segments cuts a translation into pieces matching the phrase's filler
// runs. When every key-term rendering is found in source order the cuts
// fall at the renderings. When a key-term part with renderings has none of
// them in the text, nothing can be attributed. Otherwise the renderings
// that were found are removed and the rest is one segment for all filler
// parts.
func (h *Helper) segments(ph *Phrase, text string) []runSegment {
	text = trimText(text)
	if text == "" {
		return nil
	}
	uses := h.locateRenderings(ph, text)
	inOrder := true
	last := 0
	for _, u := range uses {
		if !u.found || u.at.start < last {
			inOrder = false
			break
		}
		last = u.at.end
	}

	if inOrder {
		var out []runSegment
		from := 0
		for i, run := range fillerRuns(ph) {
			to := len(text)
			if i < len(uses) {
				to = uses[i].at.start
			}
			if len(run) > 0 {
				out = append(out, runSegment{parts: run, text: trimText(text[from:to])})
			}
			if i < len(uses) {
				from = uses[i].at.end
			}
		}
		return out
	}

	for _, u := range uses {
		if !u.found && len(u.part.Renderings()) > 0 {
			return nil
		}
	}
	all := ph.TranslatableParts()
	if len(all) == 0 {
		return nil
	}
	var found []span
	for _, u := range uses {
		if u.found {
			found = append(found, u.at)
		}
	}
	slices.SortFunc(found, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	var sb strings.Builder
	pos := 0
	for _, sp := range found {
		sb.WriteString(text[pos:sp.start])
		sb.WriteByte(' ')
		pos = sp.end
	}
	sb.WriteString(text[pos:])
	rest := strings.Join(strings.FieldsFunc(sb.String(), unicode.IsSpace), " ")
	return []runSegment{{parts: all, text: trimText(rest)}}
}

func allowed(restrict map[*Part]bool, p *Part) bool {
	return restrict == nil || restrict[p]
}

// attribute infers part translations from a user-translated phrase. Only
// parts in restrict are changed unless restrict is nil.
func (h *Helper) attribute(ph *Phrase, restrict map[*Part]bool) {
	for _, seg := range h.segments(ph, ph.translation) {
		h.attributeRun(ph, seg, restrict)
	}
}

func (h *Helper) attributeRun(ph *Phrase, seg runSegment, restrict map[*Part]bool) {
	if seg.text == "" {
		return
	}
	if len(seg.parts) == 1 {
		if p := seg.parts[0]; allowed(restrict, p) {
			p.translation = seg.text
		}
		return
	}

	var (
		reserved []span
		open     []*Part
	)
	for _, p := range seg.parts {
		if p.translation != "" {
			if sp, ok := findAligned(seg.text, literal(p.translation), reserved); ok {
				reserved = append(reserved, sp)
				continue
			}
		}
		if allowed(restrict, p) && !slices.Contains(open, p) {
			open = append(open, p)
		}
	}

	var unresolved []*Part
	for _, p := range open {
		if sp, ok := h.triangulate(ph, p, seg.text, reserved); ok {
			p.translation = seg.text[sp.start:sp.end]
			reserved = append(reserved, sp)
			continue
		}
		unresolved = append(unresolved, p)
	}
	if len(unresolved) == 1 {
		if sp, ok := remainder(seg.text, reserved); ok {
			unresolved[0].translation = seg.text[sp.start:sp.end]
		}
	}
}

// triangulate picks the word-aligned piece of text, clear of the reserved
// spans, that most other user-translated owners of p also use in their
// translation of p. Longer pieces win ties, then earlier ones.
func (h *Helper) triangulate(ph *Phrase, p *Part, text string, reserved []span) (span, bool) {
	others := h.supportingSegments(ph, p)
	if len(others) == 0 {
		return span{}, false
	}
	var (
		best        span
		bestSupport int
	)
	words := wordSpans(text)
	for i := range words {
		for j := i; j < len(words); j++ {
			sp := trimSpan(text, span{words[i].start, words[j].end})
			if sp.empty() {
				continue
			}
			if overlapsAny(sp, reserved) {
				break
			}
			re := literal(text[sp.start:sp.end])
			support := 0
			for _, o := range others {
				if _, ok := findAligned(o, re, nil); ok {
					support++
				}
			}
			if support == 0 {
				break
			}
			if support > bestSupport || (support == bestSupport && sp.end-sp.start > best.end-best.start) {
				best, bestSupport = sp, support
			}
		}
	}
	return best, bestSupport > 0
}

// supportingSegments returns, for every other user-translated owner of p,
// the piece of its translation that covers p.
func (h *Helper) supportingSegments(ph *Phrase, p *Part) []string {
	var out []string
	for _, o := range p.owners {
		if o == ph || !o.user {
			continue
		}
		for _, seg := range h.segments(o, o.translation) {
			if seg.contains(p) && seg.text != "" {
				out = append(out, seg.text)
				break
			}
		}
	}
	return out
}

// remainder returns the single unreserved piece of text, if there is
// exactly one.
func remainder(text string, reserved []span) (span, bool) {
	sorted := slices.Clone(reserved)
	slices.SortFunc(sorted, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	var gaps []span
	pos := 0
	for _, r := range append(sorted, span{len(text), len(text)}) {
		if g := trimSpan(text, span{pos, r.start}); !g.empty() {
			gaps = append(gaps, g)
		}
		pos = max(pos, r.end)
	}
	if len(gaps) != 1 {
		return span{}, false
	}
	return gaps[0], true
}

func untranslatedParts(ph *Phrase) map[*Part]bool {
	var open map[*Part]bool
	for _, p := range ph.parts {
		if !p.IsKeyTerm() && p.translation == "" {
			if open == nil {
				open = make(map[*Part]bool)
			}
			open[p] = true
		}
	}
	return open
}

func sharesPart(a, b *Phrase) bool {
	for _, p := range a.parts {
		if !p.IsKeyTerm() && slices.Contains(b.parts, p) {
			return true
		}
	}
	return false
}

// setUserTranslation marks ph as user-translated and runs inference.
func (h *Helper) setUserTranslation(ph *Phrase) {
	start := time.Now()
	ph.user = true
	h.setCounter++
	ph.setOrder = h.setCounter

	h.attribute(ph, nil)
	users := h.userPhrases()
	for _, o := range users {
		if o == ph || !sharesPart(o, ph) {
			continue
		}
		if open := untranslatedParts(o); open != nil {
			h.attribute(o, open)
		}
	}
	derived := h.derive()
	logging.InferenceRun("set_translation", len(users), derived, time.Since(start), "phrase", ph.index)
}

// clearUserTranslation turns ph back into a derived phrase. Its filler
// parts are reset and re-inferred from the remaining user translations,
// latest first, so that the earliest user translation prevails.
func (h *Helper) clearUserTranslation(ph *Phrase) {
	start := time.Now()
	ph.user = false
	ph.setOrder = 0

	affected := make(map[*Part]bool)
	for _, p := range ph.TranslatableParts() {
		affected[p] = true
		p.translation = ""
	}
	users := h.userPhrases()
	for i := len(users) - 1; i >= 0; i-- {
		o := users[i]
		for _, p := range o.parts {
			if affected[p] {
				h.attribute(o, affected)
				break
			}
		}
	}
	derived := h.derive()
	logging.InferenceRun("clear_translation", len(users), derived, time.Since(start), "phrase", ph.index)
}

func (h *Helper) propagate(trigger string) {
	start := time.Now()
	derived := h.derive()
	logging.InferenceRun(trigger, len(h.userPhrases()), derived, time.Since(start))
}

// derive recomputes the translation of every phrase without a user
// translation and returns how many ended up non-empty. A phrase made of
// exactly the same parts as a user-translated phrase takes the most
// recently set of those translations. Phrases without parts never share.
func (h *Helper) derive() int {
	latest := make(map[string]*Phrase)
	for _, ph := range h.phrases {
		if !ph.user || len(ph.parts) == 0 {
			continue
		}
		if cur, ok := latest[ph.sig]; !ok || ph.setOrder > cur.setOrder {
			latest[ph.sig] = ph
		}
	}
	n := 0
	for _, ph := range h.phrases {
		if ph.user {
			continue
		}
		if src, ok := latest[ph.sig]; ok && len(ph.parts) > 0 {
			ph.translation = src.translation
		} else {
			ph.translation = h.derivedTranslation(ph)
		}
		if ph.translation != "" {
			n++
		}
	}
	return n
}

func (h *Helper) derivedTranslation(ph *Phrase) string {
	var pieces []string
	for _, p := range ph.parts {
		t := p.translation
		if p.IsKeyTerm() {
			t = h.chooseRendering(ph, p)
		}
		if t != "" {
			pieces = append(pieces, t)
		}
	}
	return strings.Join(pieces, " ")
}
