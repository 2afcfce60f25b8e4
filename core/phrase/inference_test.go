package phrase

import (
	"testing"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
)

func partByKey(t *testing.T, h *Helper, key string) *Part {
	t.Helper()
	for _, p := range h.Parts() {
		if p.Key() == key {
			return p
		}
	}
	t.Fatalf("no part %q in %q", key, partKeys(h.Parts()))
	return nil
}

func godTerm(renderings ...string) []*keyterm.Term {
	return []*keyterm.Term{keyterm.NewTerm("god", "God", nil, renderings...)}
}

func TestInitialState(t *testing.T) {
	h := NewHelper(records("God loves me.", "Jesus loves me."), godTerm("Dios"), nil, nil)
	first, second := h.Phrases()[0], h.Phrases()[1]

	if first.State() != PartiallyInferred || first.Translation() != "Dios" {
		t.Errorf("first = %v %q, want the key-term rendering", first.State(), first.Translation())
	}
	if second.State() != NoTranslation || second.Translation() != "" {
		t.Errorf("second = %v %q, want no translation", second.State(), second.Translation())
	}
}

func TestSetTranslationInfersFillerParts(t *testing.T) {
	h := NewHelper(records("God loves me.", "Jesus loves me."), godTerm("Dios"), nil, nil)
	first, second := h.Phrases()[0], h.Phrases()[1]

	first.SetTranslation("¡Dios me ama!")
	if first.State() != UserTranslated || first.Translation() != "¡Dios me ama!" {
		t.Errorf("first = %v %q", first.State(), first.Translation())
	}
	if got := partByKey(t, h, "loves me").Translation(); got != "me ama" {
		t.Errorf(`"loves me" translation = %q, want "me ama"`, got)
	}
	if second.State() != PartiallyInferred || second.Translation() != "me ama" {
		t.Errorf("second = %v %q, want derived from shared part", second.State(), second.Translation())
	}
}

func TestIdenticalPhrasesShareTranslation(t *testing.T) {
	recs := records("What is that dog?", "what is that dog", "that dog")
	h := NewHelper(recs, nil, nil, nil)
	a, b := h.Phrases()[0], h.Phrases()[1]

	for i := range a.Parts() {
		if a.Parts()[i] != b.Parts()[i] {
			t.Fatalf("part %d differs between identical phrases", i)
		}
	}
	a.SetTranslation("¿Qué es ese perro?")
	if b.Translation() != a.Translation() {
		t.Errorf("identical phrase translation = %q, want %q", b.Translation(), a.Translation())
	}
	if b.HasUserTranslation() {
		t.Error("identical phrase should not become user-translated")
	}
}

func TestTriangulation(t *testing.T) {
	h := NewHelper(records("the dog", "the cat", "the"), nil, nil, nil)
	dog, cat, the := h.Phrases()[0], h.Phrases()[1], h.Phrases()[2]

	dog.SetTranslation("el perro")
	if got := partByKey(t, h, "the").Translation(); got != "" {
		t.Errorf("one phrase is not enough to triangulate, got %q", got)
	}

	cat.SetTranslation("el gato")
	tests := []struct {
		part string
		want string
	}{
		{"the", "el"},
		{"cat", "gato"},
		{"dog", "perro"},
	}
	for _, tt := range tests {
		if got := partByKey(t, h, tt.part).Translation(); got != tt.want {
			t.Errorf("%q translation = %q, want %q", tt.part, got, tt.want)
		}
	}
	if the.Translation() != "el" {
		t.Errorf("derived translation = %q, want el", the.Translation())
	}
}

func TestNoIntervalAssignedTwice(t *testing.T) {
	h := NewHelper(records("the", "dog", "the dog", "the fish", "dog food"), nil, nil, nil)
	phrases := h.Phrases()

	phrases[3].SetTranslation("el pez")
	phrases[4].SetTranslation("el can")
	phrases[2].SetTranslation("el perro")

	the := partByKey(t, h, "the").Translation()
	dog := partByKey(t, h, "dog").Translation()
	if the != "el" {
		t.Errorf(`"the" translation = %q, want el`, the)
	}
	if dog == the {
		t.Errorf(`"dog" and "the" both took %q`, dog)
	}
	if dog != "perro" {
		t.Errorf(`"dog" translation = %q, want perro`, dog)
	}
	if got := partByKey(t, h, "fish").Translation(); got != "pez" {
		t.Errorf(`"fish" translation = %q, want pez`, got)
	}
}

func TestClearingRestoresEarliestTranslation(t *testing.T) {
	h := NewHelper(records("is good", "God is good", "Is good?", "Paul is good"), godTerm("Dios"), nil, nil)
	phrases := h.Phrases()
	good := phrases[0].Parts()[0]

	phrases[0].SetTranslation("es bueno")
	phrases[1].SetTranslation("Dios está bien")
	phrases[2].SetTranslation("es buenísimo")
	if good.Translation() != "es buenísimo" {
		t.Fatalf("latest translation should win, got %q", good.Translation())
	}

	phrases[2].SetHasUserTranslation(false)
	if good.Translation() != "es bueno" {
		t.Errorf("after clearing, part = %q, want earliest user translation", good.Translation())
	}
	if phrases[2].State() != PartiallyInferred || phrases[2].Translation() != "es bueno" {
		t.Errorf("cleared phrase = %v %q", phrases[2].State(), phrases[2].Translation())
	}
	if phrases[3].Translation() != "es bueno" {
		t.Errorf("derived phrase = %q, want es bueno", phrases[3].Translation())
	}

	phrases[0].SetHasUserTranslation(false)
	if good.Translation() != "está bien" {
		t.Errorf("after clearing the earliest, part = %q, want está bien", good.Translation())
	}
	if phrases[0].Translation() != "está bien" {
		t.Errorf("cleared phrase translation = %q, want está bien", phrases[0].Translation())
	}
}

func TestSetEmptyTranslation(t *testing.T) {
	h := NewHelper(records("God is good", "is good"), godTerm("Dios"), nil, nil)
	ph := h.Phrases()[0]

	ph.SetTranslation("Dios es bueno")
	ph.SetTranslation("  ")
	if ph.HasUserTranslation() {
		t.Error("empty translation should clear the user flag")
	}
	if ph.Translation() != "Dios" {
		t.Errorf("Translation() = %q, want only the rendering", ph.Translation())
	}
	if got := h.Phrases()[1].Translation(); got != "" {
		t.Errorf("shared part should be cleared, phrase shows %q", got)
	}
}

func TestApproveDerivedTranslation(t *testing.T) {
	h := NewHelper(records("is good", "God is good"), godTerm("Dios"), nil, nil)
	h.Phrases()[0].SetTranslation("es bueno")
	derived := h.Phrases()[1]
	if derived.Translation() != "Dios es bueno" {
		t.Fatalf("Translation() = %q", derived.Translation())
	}
	derived.SetHasUserTranslation(true)
	if derived.State() != UserTranslated || derived.Translation() != "Dios es bueno" {
		t.Errorf("approved = %v %q", derived.State(), derived.Translation())
	}
}

func TestRenderingsInUse(t *testing.T) {
	h := NewHelper(records("God and God"), godTerm("Dios", "Señor"), nil, nil)
	ph := h.Phrases()[0]
	ph.SetTranslation("Señor y Dios")

	uses := ph.RenderingsInUse()
	if len(uses) != 2 {
		t.Fatalf("len(RenderingsInUse()) = %d, want 2", len(uses))
	}
	if uses[0].Rendering != "Señor" || uses[0].Start != 0 {
		t.Errorf("first use = %+v", uses[0])
	}
	if uses[1].Rendering != "Dios" || uses[1].Start <= uses[0].End {
		t.Errorf("second use = %+v", uses[1])
	}
	if got := partByKey(t, h, "and").Translation(); got != "y" {
		t.Errorf(`"and" translation = %q, want y`, got)
	}
}

func TestRepeatedRendering(t *testing.T) {
	h := NewHelper(records("God and God"), godTerm("Dios"), nil, nil)
	ph := h.Phrases()[0]
	ph.SetTranslation("Dios y Dios")
	uses := ph.RenderingsInUse()
	if len(uses) != 2 || uses[0].Start != 0 || uses[1].Start != 7 {
		t.Errorf("RenderingsInUse() = %+v", uses)
	}
}

func TestRenderingsOutOfOrder(t *testing.T) {
	terms := []*keyterm.Term{
		keyterm.NewTerm("god", "God", nil, "Dios"),
		keyterm.NewTerm("paul", "Paul", nil, "Pablo"),
	}
	h := NewHelper(records("God sends Paul?"), terms, nil, nil)
	h.Phrases()[0].SetTranslation("¿Pablo es enviado por Dios?")
	if got := partByKey(t, h, "sends").Translation(); got != "es enviado por" {
		t.Errorf(`"sends" translation = %q`, got)
	}
}

func TestMissingRenderingSkipsInference(t *testing.T) {
	h := NewHelper(records("God loves me.", "Jesus loves me."), godTerm("Dios"), nil, nil)
	h.Phrases()[0].SetTranslation("El Señor me ama")

	if got := partByKey(t, h, "loves me").Translation(); got != "" {
		t.Errorf(`"loves me" translation = %q, want ""`, got)
	}
	if got := h.Phrases()[1].Translation(); got == "El Señor me ama" {
		t.Errorf("Translation() = %q, want the whole translation kept off other phrases", got)
	}
}

func TestPunctuationPhrasesDoNotShare(t *testing.T) {
	h := NewHelper(records("?", "!!"), nil, nil, nil)
	h.Phrases()[0].SetTranslation("¿?")

	other := h.Phrases()[1]
	if other.State() != NoTranslation || other.Translation() != "" {
		t.Errorf("other = %v %q, want no translation", other.State(), other.Translation())
	}
}

func TestRenderingSelectionRules(t *testing.T) {
	h := NewHelper(records("the false God", "the true God"), godTerm("Dios", "dioses"), nil, nil)
	falseGod, trueGod := h.Phrases()[0], h.Phrases()[1]

	if falseGod.Translation() != "Dios" {
		t.Fatalf("Translation() = %q", falseGod.Translation())
	}

	rule := keyterm.NewRenderingSelectionRule("false gods")
	rule.SetQuestionMatchPrecedingWord("false")
	rule.SetRenderingMatchSuffix("es")
	h.SetRenderingSelectionRules([]*keyterm.RenderingSelectionRule{rule})

	if falseGod.Translation() != "dioses" {
		t.Errorf("with rule, Translation() = %q, want dioses", falseGod.Translation())
	}
	if trueGod.Translation() != "Dios" {
		t.Errorf("rule should not apply, Translation() = %q", trueGod.Translation())
	}

	falseGod.SetTranslation("los falsos dioses")
	uses := falseGod.RenderingsInUse()
	if len(uses) != 1 || uses[0].Rendering != "dioses" {
		t.Errorf("RenderingsInUse() = %+v, want dioses", uses)
	}
	if got := partByKey(t, h, "the false").Translation(); got != "los falsos" {
		t.Errorf(`"the false" translation = %q`, got)
	}

	rule.Disabled = true
	falseGod.SetTranslation("")
	if falseGod.Translation() != "Dios" {
		t.Errorf("disabled rule, Translation() = %q", falseGod.Translation())
	}
}

func TestRefreshAfterRenderingChange(t *testing.T) {
	terms := godTerm()
	h := NewHelper(records("God"), terms, nil, nil)
	ph := h.Phrases()[0]
	if ph.State() != NoTranslation {
		t.Fatalf("State() = %v", ph.State())
	}
	if err := terms[0].AddRendering("Dios"); err != nil {
		t.Fatal(err)
	}
	h.RefreshTranslations()
	if ph.Translation() != "Dios" {
		t.Errorf("Translation() = %q after refresh", ph.Translation())
	}
}

func TestLoadAndFinalize(t *testing.T) {
	h := NewHelper(records("the dog", "the cat", "the", "God"), godTerm("Dios"), nil, nil)
	phrases := h.Phrases()

	missing := h.Load([]Entry{
		{Key: phrases[0].Key(), Translation: "el perro"},
		{Key: phrases[1].Key(), Translation: "el gato"},
		{Key: "nowhere", Translation: "x"},
	})
	if missing != 1 {
		t.Errorf("Load() missing = %d, want 1", missing)
	}
	if partByKey(t, h, "the").Translation() != "" {
		t.Error("Load() should not run inference")
	}

	h.FinalizeAndPropagate()
	for key, want := range map[string]string{"the": "el", "dog": "perro", "cat": "gato"} {
		if got := partByKey(t, h, key).Translation(); got != want {
			t.Errorf("%q translation = %q, want %q", key, got, want)
		}
	}
	if phrases[2].Translation() != "el" || phrases[3].Translation() != "Dios" {
		t.Errorf("derived = %q, %q", phrases[2].Translation(), phrases[3].Translation())
	}
	if !phrases[0].HasUserTranslation() || phrases[0].State() != UserTranslated {
		t.Error("loaded translation should be a user translation")
	}
}

func TestRemainder(t *testing.T) {
	tests := []struct {
		text     string
		reserved []span
		want     string
		ok       bool
	}{
		{"el perro", []span{{0, 2}}, "perro", true},
		{"el perro grande", []span{{3, 8}}, "", false},
		{"el perro", nil, "el perro", true},
		{"el, perro", []span{{4, 9}}, "el", true},
	}
	for _, tt := range tests {
		sp, ok := remainder(tt.text, tt.reserved)
		got := ""
		if ok {
			got = tt.text[sp.start:sp.end]
		}
		if ok != tt.ok || got != tt.want {
			t.Errorf("remainder(%q, %v) = %q, %v, want %q, %v", tt.text, tt.reserved, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAligned(t *testing.T) {
	tests := []struct {
		text       string
		start, end int
		want       bool
	}{
		{"el perro", 0, 2, true},
		{"el perro", 3, 8, true},
		{"el perro", 3, 6, false},
		{"elperro", 0, 2, false},
		{"(el) perro", 1, 3, true},
	}
	for _, tt := range tests {
		if got := aligned(tt.text, span{tt.start, tt.end}); got != tt.want {
			t.Errorf("aligned(%q, %d, %d) = %v, want %v", tt.text, tt.start, tt.end, got, tt.want)
		}
	}
}
