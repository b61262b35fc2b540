package binding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hookline/internal/hook"
)

// Entry is one manifest line: hook a named handler onto a tag.
type Entry struct {
	Kind         hook.Kind
	Tag          string
	Handler      string
	Priority     *int
	AcceptedArgs *int
}

// Manifest is a list of entries read from a file.
type Manifest struct {
	Source  string
	Entries []Entry
}

// yamlManifest is the YAML layout:
//
//	actions:
//	  - tag: admin_menu
//	    handler: build_menu
//	    priority: 5
//	filters:
//	  - tag: the_title
//	    handler: upper
//	    accepted_args: 1
type yamlManifest struct {
	Actions []yamlEntry `yaml:"actions"`
	Filters []yamlEntry `yaml:"filters"`
}

type yamlEntry struct {
	Tag          string `yaml:"tag"`
	Handler      string `yaml:"handler"`
	Priority     *int   `yaml:"priority"`
	AcceptedArgs *int   `yaml:"accepted_args"`
}

// hclManifest is the HCL layout:
//
//	action "admin_menu" {
//	  handler  = "build_menu"
//	  priority = 5
//	}
//	filter "the_title" {
//	  handler       = "upper"
//	  accepted_args = 1
//	}
type hclManifest struct {
	Actions []*hclEntry `hcl:"action,block"`
	Filters []*hclEntry `hcl:"filter,block"`
}

type hclEntry struct {
	Tag          string `hcl:"tag,label"`
	Handler      string `hcl:"handler"`
	Priority     *int   `hcl:"priority,optional"`
	AcceptedArgs *int   `hcl:"accepted_args,optional"`
}

// ParseYAML parses a YAML manifest. source names it in errors.
func ParseYAML(source string, data []byte) (*Manifest, error) {
	var raw yamlManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML manifest %s: %w", source, err)
	}

	m := &Manifest{Source: source}
	for _, e := range raw.Actions {
		m.Entries = append(m.Entries, Entry{Kind: hook.KindAction, Tag: e.Tag, Handler: e.Handler, Priority: e.Priority, AcceptedArgs: e.AcceptedArgs})
	}
	for _, e := range raw.Filters {
		m.Entries = append(m.Entries, Entry{Kind: hook.KindFilter, Tag: e.Tag, Handler: e.Handler, Priority: e.Priority, AcceptedArgs: e.AcceptedArgs})
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseHCL parses an HCL manifest. filename names it in diagnostics.
func ParseHCL(filename string, data []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL manifest %s: %w", filename, diags)
	}

	var raw hclManifest
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL manifest %s: %w", filename, diags)
	}

	m := &Manifest{Source: filename}
	for _, e := range raw.Actions {
		m.Entries = append(m.Entries, Entry{Kind: hook.KindAction, Tag: e.Tag, Handler: e.Handler, Priority: e.Priority, AcceptedArgs: e.AcceptedArgs})
	}
	for _, e := range raw.Filters {
		m.Entries = append(m.Entries, Entry{Kind: hook.KindFilter, Tag: e.Tag, Handler: e.Handler, Priority: e.Priority, AcceptedArgs: e.AcceptedArgs})
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifest reads a manifest, choosing the format by extension:
// .hcl for HCL, .yaml or .yml for YAML.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return ParseHCL(path, data)
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	default:
		return nil, fmt.Errorf("manifest %s: unsupported extension %q", path, filepath.Ext(path))
	}
}

func (m *Manifest) validate() error {
	for i, e := range m.Entries {
		if e.Tag == "" {
			return fmt.Errorf("manifest %s: entry %d: missing tag", m.Source, i)
		}
		if e.Handler == "" {
			return fmt.Errorf("manifest %s: %s %q: missing handler", m.Source, e.Kind, e.Tag)
		}
	}
	return nil
}

// Resolve looks up every entry's handler in t. All unknown names are
// reported together.
func (m *Manifest) Resolve(t *Table) (*Set, error) {
	set := &Set{}
	var missing []string
	for _, e := range m.Entries {
		h, ok := t.Lookup(e.Handler)
		if !ok {
			missing = append(missing, e.Handler)
			continue
		}
		var opts []hook.RegisterOption
		if e.Priority != nil {
			opts = append(opts, hook.WithPriority(*e.Priority))
		}
		if e.AcceptedArgs != nil {
			opts = append(opts, hook.WithAcceptedArgs(*e.AcceptedArgs))
		}
		set.list = append(set.list, Binding{Kind: e.Kind, Tag: e.Tag, Handler: h, Options: opts})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifest %s: %w: %s", m.Source, ErrUnknownHandler, strings.Join(missing, ", "))
	}
	return set, nil
}

// Set is a resolved list of bindings. A *Set is Hookable.
type Set struct {
	list []Binding
}

// NewSet creates a set from bindings.
func NewSet(bindings ...Binding) *Set {
	return &Set{list: bindings}
}

// Bindings returns the set's bindings.
func (s *Set) Bindings() []Binding {
	return s.list
}
