package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/transphrase/core/errors"
)

const testPhrases = `<Phrases>
  <Phrase ref="Matt.1.1">What is that dog?</Phrase>
  <Phrase ref="Matt.1.2">that dog</Phrase>
  <Phrase ref="Matt.1.3">Who is God?</Phrase>
  <Phrase ref="Matt.2.1">Where is God?</Phrase>
</Phrases>`

const testKeyTerms = `<KeyTerms>
  <Term id="god"><Text>God</Text><Rendering>Dios</Rendering></Term>
</KeyTerms>`

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func testProject(t *testing.T) ProjectFlags {
	t.Helper()
	dir := t.TempDir()
	return ProjectFlags{
		Phrases:  createTestFile(t, dir, "phrases.xml", testPhrases),
		KeyTerms: createTestFile(t, dir, "terms.xml", testKeyTerms),
		DB:       filepath.Join(dir, "transphrase.db"),
	}
}

func captureOutput(t *testing.T, fn func() error) string {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()
	if err := fn(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return buf.String()
}

func TestExpandCmd(t *testing.T) {
	cmd := &ExpandCmd{Term: "(the) son of man"}
	out := captureOutput(t, func() error { return cmd.Run(context.Background()) })
	for _, want := range []string{"the son of man\n", "son of man\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExpandCmdWithRules(t *testing.T) {
	rules := createTestFile(t, t.TempDir(), "rules.xml",
		`<KeyTermRules><Rule term="lamb" kind="MatchForRefOnly"/></KeyTermRules>`)
	cmd := &ExpandCmd{Term: "lamb", Rules: rules}
	out := captureOutput(t, func() error { return cmd.Run(context.Background()) })
	if !strings.Contains(out, "rule: MatchForRefOnly") || !strings.Contains(out, "lamb (own verses only)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTranslateAndList(t *testing.T) {
	ctx := context.Background()
	proj := testProject(t)

	tr := &TranslateCmd{ProjectFlags: proj, Index: 1, Text: "ese perro"}
	captureOutput(t, func() error { return tr.Run(ctx) })

	list := &PhrasesCmd{ProjectFlags: proj, Sort: "reference", KeyTermFilter: "all"}
	out := captureOutput(t, func() error { return list.Run(ctx) })
	if !strings.Contains(out, "ese perro") {
		t.Errorf("saved translation not listed:\n%s", out)
	}
	if !strings.Contains(out, "4 of 4 phrases") {
		t.Errorf("unexpected count:\n%s", out)
	}

	list = &PhrasesCmd{ProjectFlags: proj, Sort: "reference", KeyTermFilter: "with", Range: "Matt.1"}
	out = captureOutput(t, func() error { return list.Run(ctx) })
	if !strings.Contains(out, "1 of 4 phrases") || !strings.Contains(out, "Who is God?") {
		t.Errorf("unexpected filtered output:\n%s", out)
	}

	clear := &TranslateCmd{ProjectFlags: proj, Index: 1}
	captureOutput(t, func() error { return clear.Run(ctx) })
	list = &PhrasesCmd{ProjectFlags: proj, Sort: "default", KeyTermFilter: "all"}
	out = captureOutput(t, func() error { return list.Run(ctx) })
	if strings.Contains(out, "ese perro") {
		t.Errorf("cleared translation still listed:\n%s", out)
	}
}

func TestTranslateRequiresDB(t *testing.T) {
	proj := testProject(t)
	proj.DB = ""
	err := (&TranslateCmd{ProjectFlags: proj, Index: 0, Text: "x"}).Run(context.Background())
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Run() error = %v, want ErrInvalidInput", err)
	}
}

func TestTranslateBadIndex(t *testing.T) {
	err := (&TranslateCmd{ProjectFlags: testProject(t), Index: 10, Text: "x"}).Run(context.Background())
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}

func TestRenderingCmd(t *testing.T) {
	ctx := context.Background()
	proj := testProject(t)

	add := &RenderingCmd{ProjectFlags: proj, Term: "god", Rendering: "Señor", Best: true}
	out := captureOutput(t, func() error { return add.Run(ctx) })
	if !strings.Contains(out, "God: Dios | Señor") {
		t.Errorf("unexpected output:\n%s", out)
	}

	parts := &PartsCmd{ProjectFlags: proj, Terms: true}
	out = captureOutput(t, func() error { return parts.Run(ctx) })
	if !strings.Contains(out, "Dios | Señor") {
		t.Errorf("stored renderings not loaded:\n%s", out)
	}

	err := (&RenderingCmd{ProjectFlags: proj, Term: "moses", Rendering: "Moisés"}).Run(ctx)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}

func TestPartsCmd(t *testing.T) {
	proj := testProject(t)
	proj.DB = ""
	out := captureOutput(t, func() error { return (&PartsCmd{ProjectFlags: proj}).Run(context.Background()) })
	out = strings.ToLower(out)
	if !strings.Contains(out, "that dog") || !strings.Contains(out, "what is") {
		t.Errorf("unexpected parts:\n%s", out)
	}
}

func TestVersionCmd(t *testing.T) {
	out := captureOutput(t, (&VersionCmd{}).Run)
	if !strings.HasPrefix(out, "transphrase version "+version) {
		t.Errorf("Run() output = %q", out)
	}
}
