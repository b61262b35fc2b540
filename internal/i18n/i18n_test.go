package i18n

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTextDomain(t *testing.T) {
	dir := t.TempDir()
	content := "Hello World!: Hallo Welt!\n\"Requires version %s\": \"Benötigt Version %s\"\n"
	if err := os.WriteFile(filepath.Join(dir, "plugin-de_DE.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tr, err := LoadTextDomain("plugin", dir, "de_DE")
	if err != nil {
		t.Fatalf("LoadTextDomain: %v", err)
	}

	tests := []struct {
		key      string
		args     []any
		expected string
	}{
		{"Hello World!", nil, "Hallo Welt!"},
		{"Requires version %s", []any{"6.0"}, "Benötigt Version 6.0"},
		{"Untranslated %d", []any{3}, "Untranslated 3"},
	}
	for _, tt := range tests {
		if got := tr.T(tt.key, tt.args...); got != tt.expected {
			t.Errorf("T(%q) = %q, expected %q", tt.key, got, tt.expected)
		}
	}

	if tr.Domain() != "plugin" || tr.Locale().String() != "de-DE" {
		t.Errorf("unexpected domain/locale %s %s", tr.Domain(), tr.Locale())
	}
	if !tr.Has("Hello World!") || tr.Has("Untranslated %d") {
		t.Error("unexpected Has results")
	}
	if keys := tr.Keys(); len(keys) != 2 || keys[0] != "Hello World!" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestLoadTextDomain_Missing(t *testing.T) {
	tr, err := LoadTextDomain("plugin", t.TempDir(), "fr_FR")
	if err != nil {
		t.Fatalf("LoadTextDomain: %v", err)
	}
	if got := tr.T("Hello %s", "there"); got != "Hello there" {
		t.Errorf("T = %q", got)
	}
}

func TestLoadTextDomain_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "plugin-de.yaml"), []byte("- not\n- a map\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTextDomain("plugin", dir, "de"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadTextDomain("plugin", dir, "not a locale!"); !errors.Is(err, ErrBadLocale) {
		t.Errorf("expected ErrBadLocale, got %v", err)
	}
}

func TestNew(t *testing.T) {
	tr, err := New("demo", "pt-BR", map[string]string{"Save": "Salvar"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.T("Save") != "Salvar" {
		t.Errorf("T(Save) = %q", tr.T("Save"))
	}
}

func TestNop(t *testing.T) {
	if got := Nop().T("Value %d", 5); got != "Value 5" {
		t.Errorf("T = %q", got)
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "und"},
		{"en", "en"},
		{"de_DE", "de-DE"},
		{"pt-BR", "pt-BR"},
	}
	for _, tt := range tests {
		tag, err := ParseLocale(tt.input)
		if err != nil {
			t.Errorf("ParseLocale(%q): %v", tt.input, err)
			continue
		}
		if tag.String() != tt.expected {
			t.Errorf("ParseLocale(%q) = %s, expected %s", tt.input, tag, tt.expected)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("plugin", "de_DE"); got != "plugin-de_DE.yaml" {
		t.Errorf("FileName = %q", got)
	}
}
