package store

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/FocuswithJustin/transphrase/core/keyterm"
	"github.com/FocuswithJustin/transphrase/core/phrase"
	"github.com/FocuswithJustin/transphrase/core/ref"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "transphrase.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testHelper(terms ...*keyterm.Term) *phrase.Helper {
	texts := []string{"What is that dog?", "that dog", "Who is God?"}
	records := make([]phrase.Record, len(texts))
	for i, text := range texts {
		records[i] = phrase.Record{Text: text, Range: ref.Single(ref.New(40, 1, i+1))}
	}
	return phrase.NewHelper(records, terms, nil, nil)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.DriverName != driverName || info.DriverType == "" || info.Package == "" {
		t.Errorf("GetInfo() = %+v", info)
	}
}

func TestPhraseID(t *testing.T) {
	a := PhraseID("Matt.1.1\x1fthat dog")
	if len(a) != 64 {
		t.Errorf("len(PhraseID()) = %d, want 64", len(a))
	}
	if a != PhraseID("Matt.1.1\x1fthat dog") {
		t.Error("PhraseID() is not stable")
	}
	if a == PhraseID("Matt.1.2\x1fthat dog") {
		t.Error("PhraseID() ignores the reference")
	}
}

func TestSaveAndLoadTranslations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHelper()
	dog, what := h.Phrases()[1], h.Phrases()[0]

	dog.SetTranslation("ese perro")
	if err := s.SaveTranslation(ctx, dog); err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}
	what.SetTranslation("¿Qué es ese perro?")
	if err := s.SaveTranslation(ctx, what); err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}
	dog.SetTranslation("aquel perro")
	if err := s.SaveTranslation(ctx, dog); err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}

	entries, err := s.LoadTranslations(ctx)
	if err != nil {
		t.Fatalf("LoadTranslations() error = %v", err)
	}
	want := []phrase.Entry{
		{Key: what.Key(), Translation: "¿Qué es ese perro?"},
		{Key: dog.Key(), Translation: "aquel perro"},
	}
	if !slices.Equal(entries, want) {
		t.Errorf("LoadTranslations() = %v, want %v", entries, want)
	}
}

func TestSaveClearedTranslationDeletes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	h := testHelper()
	dog := h.Phrases()[1]

	dog.SetTranslation("ese perro")
	if err := s.SaveTranslation(ctx, dog); err != nil {
		t.Fatal(err)
	}
	dog.SetTranslation("")
	if err := s.SaveTranslation(ctx, dog); err != nil {
		t.Fatal(err)
	}
	entries, err := s.LoadTranslations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("LoadTranslations() = %v, want none", entries)
	}

	ok, err := s.DeleteTranslation(ctx, dog.Key())
	if err != nil || ok {
		t.Errorf("DeleteTranslation() = %v, %v, want false, nil", ok, err)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transphrase.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	h := testHelper()
	h.Phrases()[0].SetTranslation("¿Qué es ese perro?")
	h.Phrases()[1].SetTranslation("ese perro")
	for _, ph := range h.Phrases()[:2] {
		if err := s.SaveTranslation(ctx, ph); err != nil {
			t.Fatal(err)
		}
	}
	stale := h.Phrases()[2]
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (id, phrase_key, ref, phrase, translation, seq) VALUES (?, ?, ?, ?, ?, ?)`,
		PhraseID("gone"), "gone", stale.Reference(), "gone", "ido", 99); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	fresh := testHelper()
	missing, err := s.Restore(ctx, fresh)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if missing != 1 {
		t.Errorf("Restore() missing = %d, want 1", missing)
	}
	for i, want := range []string{"¿Qué es ese perro?", "ese perro"} {
		ph := fresh.Phrases()[i]
		if ph.Translation() != want || !ph.HasUserTranslation() {
			t.Errorf("phrase %d = %q (user %v), want %q", i, ph.Translation(), ph.HasUserTranslation(), want)
		}
	}
}

func TestRenderings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	god := keyterm.NewTerm("god", "God", nil, "Dios", "Señor")
	if err := god.SetBestRendering("Señor"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRenderings(ctx, god); err != nil {
		t.Fatalf("SaveRenderings() error = %v", err)
	}

	loaded := keyterm.NewTerm("god", "God", nil, "Deus")
	other := keyterm.NewTerm("paul", "Paul", nil, "Pablo")
	n, err := s.LoadRenderings(ctx, []*keyterm.Term{loaded, other})
	if err != nil {
		t.Fatalf("LoadRenderings() error = %v", err)
	}
	if n != 1 {
		t.Errorf("LoadRenderings() = %d, want 1", n)
	}
	if !slices.Equal(loaded.Renderings(), []string{"Dios", "Señor"}) || loaded.BestRendering() != "Señor" {
		t.Errorf("loaded = %v best %q", loaded.Renderings(), loaded.BestRendering())
	}
	if !slices.Equal(other.Renderings(), []string{"Pablo"}) {
		t.Errorf("other = %v", other.Renderings())
	}

	god.ClearRenderings()
	if err := s.SaveRenderings(ctx, god); err != nil {
		t.Fatal(err)
	}
	fresh := keyterm.NewTerm("god", "God", nil, "Deus")
	if n, _ := s.LoadRenderings(ctx, []*keyterm.Term{fresh}); n != 0 || fresh.BestRendering() != "Deus" {
		t.Errorf("after clearing LoadRenderings() = %d, best %q", n, fresh.BestRendering())
	}
}
