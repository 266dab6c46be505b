package progression

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/frnsys/dust/pkg/theory"
)

func TestParseTemplate(t *testing.T) {
	template, err := ParseTemplate([]byte(`
resolution: sixteenth
major:
  - "I IV V"
minor:
  - "i VI III v"
  - "i iv v"
`))
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}

	if template.Resolution != theory.Sixteenth {
		t.Errorf("Resolution = %v, want sixteenth", template.Resolution)
	}
	if got := len(template.Major.Patterns); got != 1 {
		t.Errorf("major patterns = %d, want 1", got)
	}
	if got := len(template.Minor.Patterns); got != 2 {
		t.Errorf("minor patterns = %d, want 2", got)
	}
	if got := len(template.Minor.Patterns[0]); got != 4 {
		t.Errorf("first minor pattern has %d chords, want 4", got)
	}

	// Transitions are built as part of parsing.
	if got := template.Next(mustChord(t, "IV"), theory.Major); len(got) == 0 {
		t.Error("transitions not built")
	}
}

func TestParseTemplateDefaultResolution(t *testing.T) {
	template, err := ParseTemplate([]byte(`
major:
  - "I IV"
minor:
  - "i iv"
`))
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if template.Resolution != theory.Eighth {
		t.Errorf("Resolution = %v, want eighth default", template.Resolution)
	}
}

func TestParseTemplateErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad yaml", ":\n-"},
		{"bad resolution", "resolution: whole\nmajor:\n  - \"I\""},
		{"bad chord", "major:\n  - \"I H V\""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTemplate([]byte(tt.data)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// A mode without patterns has no pool to draw random chords from, so
// the loader rejects it instead of letting generation panic later.
func TestParseTemplateEmptyMode(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing minor", "major:\n  - \"I IV V\""},
		{"missing major", "minor:\n  - \"i iv v\""},
		{"empty", "resolution: eighth"},
		{"blank pattern lines", "major:\n  - \"I IV\"\nminor:\n  - \"\""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(tt.data))
			if !errors.Is(err, ErrEmptyTemplate) {
				t.Errorf("err = %v, want ErrEmptyTemplate", err)
			}
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	data := "resolution: quarter\nmajor:\n  - \"I V vi IV\"\nminor:\n  - \"i VI III VII\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	template, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if template.Resolution != theory.Quarter {
		t.Errorf("Resolution = %v, want quarter", template.Resolution)
	}

	if _, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultTemplate(t *testing.T) {
	template := DefaultTemplate()
	if len(template.Major.Patterns) == 0 || len(template.Minor.Patterns) == 0 {
		t.Fatal("default template has empty pattern lists")
	}
	if got := template.Next(mustChord(t, "I"), theory.Major); len(got) == 0 {
		t.Error("default template transitions not built")
	}
}
