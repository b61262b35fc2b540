package binding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/hookline/internal/hook"
)

// Table maps handler names to handlers for manifests.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]any
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{handlers: make(map[string]any)}
}

// MustAddAction names an action handler. It panics if name is taken.
func (t *Table) MustAddAction(name string, h hook.ActionHandler) {
	t.add(name, h)
}

// MustAddFilter names a filter handler. It panics if name is taken.
func (t *Table) MustAddFilter(name string, h hook.FilterHandler) {
	t.add(name, h)
}

func (t *Table) add(name string, h any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.handlers[name]; exists {
		panic(fmt.Sprintf("handler with name %q already registered", name))
	}
	t.handlers[name] = h
}

// Lookup returns the handler registered under name.
func (t *Table) Lookup(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[name]
	return h, ok
}

// Names returns the registered names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
