package binding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/hookline/internal/hook"
)

const yamlDoc = `
actions:
  - tag: admin_menu
    handler: build_menu
    priority: 5
filters:
  - tag: the_title
    handler: shout
    accepted_args: 1
`

const hclDoc = `
action "admin_menu" {
  handler  = "build_menu"
  priority = 5
}

filter "the_title" {
  handler       = "shout"
  accepted_args = 1
}
`

func testTable(calls *int) *Table {
	tbl := NewTable()
	tbl.MustAddAction("build_menu", hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		*calls++
		return nil
	}))
	tbl.MustAddFilter("shout", hook.NewFilterFunc(func(ctx context.Context, v any, args ...any) (any, error) {
		if len(args) != 0 {
			return nil, errors.New("extra args were not truncated")
		}
		return strings.ToUpper(v.(string)), nil
	}))
	return tbl
}

func checkManifest(t *testing.T, m *Manifest) {
	t.Helper()
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries))
	}

	a := m.Entries[0]
	if a.Kind != hook.KindAction || a.Tag != "admin_menu" || a.Handler != "build_menu" {
		t.Errorf("unexpected action entry %+v", a)
	}
	if a.Priority == nil || *a.Priority != 5 {
		t.Errorf("expected priority 5, got %v", a.Priority)
	}
	if a.AcceptedArgs != nil {
		t.Errorf("expected no accepted_args, got %v", *a.AcceptedArgs)
	}

	f := m.Entries[1]
	if f.Kind != hook.KindFilter || f.Tag != "the_title" || f.Handler != "shout" {
		t.Errorf("unexpected filter entry %+v", f)
	}
	if f.Priority != nil {
		t.Errorf("expected no priority, got %v", *f.Priority)
	}
	if f.AcceptedArgs == nil || *f.AcceptedArgs != 1 {
		t.Errorf("expected accepted_args 1, got %v", f.AcceptedArgs)
	}
}

func TestParseYAML(t *testing.T) {
	m, err := ParseYAML("hooks.yaml", []byte(yamlDoc))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	checkManifest(t, m)
}

func TestParseHCL(t *testing.T) {
	m, err := ParseHCL("hooks.hcl", []byte(hclDoc))
	if err != nil {
		t.Fatalf("ParseHCL: %v", err)
	}
	checkManifest(t, m)
}

func TestParse_Empty(t *testing.T) {
	m, err := ParseYAML("empty.yaml", nil)
	if err != nil || len(m.Entries) != 0 {
		t.Errorf("ParseYAML(empty) = %v, %v", m, err)
	}
	m, err = ParseHCL("empty.hcl", nil)
	if err != nil || len(m.Entries) != 0 {
		t.Errorf("ParseHCL(empty) = %v, %v", m, err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		parse func() (*Manifest, error)
	}{
		{"yaml unknown field", func() (*Manifest, error) {
			return ParseYAML("x.yaml", []byte("actions:\n  - tag: a\n    handler: b\n    when: now\n"))
		}},
		{"yaml missing handler", func() (*Manifest, error) {
			return ParseYAML("x.yaml", []byte("filters:\n  - tag: a\n"))
		}},
		{"hcl syntax", func() (*Manifest, error) {
			return ParseHCL("x.hcl", []byte("action \"a\" {"))
		}},
		{"hcl missing handler", func() (*Manifest, error) {
			return ParseHCL("x.hcl", []byte("action \"a\" {}\n"))
		}},
		{"hcl unknown block", func() (*Manifest, error) {
			return ParseHCL("x.hcl", []byte("widget \"a\" {}\n"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parse(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestManifest_ResolveAndBind(t *testing.T) {
	calls := 0
	m, err := ParseHCL("hooks.hcl", []byte(hclDoc))
	if err != nil {
		t.Fatalf("ParseHCL: %v", err)
	}
	set, err := m.Resolve(testTable(&calls))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	reg := hook.NewRegistry()
	if _, err := NewBinder(reg).Bind(set); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := context.Background()
	if err := reg.DoAction(ctx, "admin_menu"); err != nil {
		t.Fatalf("DoAction: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}

	v, err := reg.ApplyFilters(ctx, "the_title", "hello", "extra")
	if err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if v != "HELLO" {
		t.Errorf("ApplyFilters = %v, expected HELLO", v)
	}

	if p := reg.Registrations(hook.KindAction, "admin_menu")[0].Priority; p != 5 {
		t.Errorf("priority = %d, expected 5", p)
	}
}

func TestManifest_ResolveUnknown(t *testing.T) {
	m := &Manifest{Source: "x.yaml", Entries: []Entry{
		{Kind: hook.KindAction, Tag: "a", Handler: "nope"},
		{Kind: hook.KindFilter, Tag: "b", Handler: "gone"},
	}}
	_, err := m.Resolve(NewTable())
	if !errors.Is(err, ErrUnknownHandler) {
		t.Fatalf("expected ErrUnknownHandler, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope, gone") {
		t.Errorf("expected both names in %q", err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"hooks.yml": yamlDoc,
		"hooks.hcl": hclDoc,
		"hooks.txt": "",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, name := range []string{"hooks.yml", "hooks.hcl"} {
		m, err := LoadManifest(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("LoadManifest(%s): %v", name, err)
		}
		checkManifest(t, m)
	}

	if _, err := LoadManifest(filepath.Join(dir, "hooks.txt")); err == nil {
		t.Error("expected unsupported extension error")
	}
	if _, err := LoadManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}
