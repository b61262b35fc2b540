package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func nopAction() *ActionFunc {
	return NewActionFunc(func(ctx context.Context, args ...any) error { return nil })
}

func nopFilter() *FilterFunc {
	return NewFilterFunc(func(ctx context.Context, v any, args ...any) (any, error) { return v, nil })
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if r.Len() != 0 {
		t.Errorf("expected len 0, got %d", r.Len())
	}
}

func TestRegistry_AddDefaults(t *testing.T) {
	r := NewRegistry()

	reg := r.AddAction("init", nopAction())

	if reg.ID == "" {
		t.Error("expected registration ID")
	}
	if reg.Priority != DefaultPriority {
		t.Errorf("expected priority %d, got %d", DefaultPriority, reg.Priority)
	}
	if reg.AcceptedArgs != AllArgs {
		t.Errorf("expected AllArgs, got %d", reg.AcceptedArgs)
	}
	if reg.Kind != KindAction {
		t.Errorf("expected action kind, got %s", reg.Kind)
	}
}

func TestRegistry_Options(t *testing.T) {
	r := NewRegistry()

	reg := r.AddFilter("title", nopFilter(), WithPriority(-5), WithAcceptedArgs(2))
	if reg.Priority != -5 {
		t.Errorf("expected priority -5, got %d", reg.Priority)
	}
	if reg.AcceptedArgs != 2 {
		t.Errorf("expected 2 accepted args, got %d", reg.AcceptedArgs)
	}

	reg = r.AddFilter("title", nopFilter(), WithAcceptedArgs(-7))
	if reg.AcceptedArgs != AllArgs {
		t.Errorf("negative accepted args should normalize to AllArgs, got %d", reg.AcceptedArgs)
	}
}

func TestRegistry_IDGenerator(t *testing.T) {
	n := 0
	r := NewRegistry(WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	a := r.AddAction("a", nopAction())
	b := r.AddAction("a", nopAction())

	if a.ID != "id-1" || b.ID != "id-2" {
		t.Errorf("unexpected IDs %q %q", a.ID, b.ID)
	}
}

func TestRegistry_KindsAreIndependent(t *testing.T) {
	r := NewRegistry()

	r.AddAction("shared", nopAction())

	if !r.HasAction("shared") {
		t.Error("expected action on shared")
	}
	if r.HasFilter("shared") {
		t.Error("filter table should not see action registrations")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register(KindAction, "a", nopAction()); err != nil {
		t.Fatalf("Register action: %v", err)
	}
	if _, err := r.Register(KindFilter, "f", nopFilter()); err != nil {
		t.Fatalf("Register filter: %v", err)
	}

	_, err := r.Register(KindFilter, "f", nopAction())
	if err == nil {
		t.Fatal("expected error registering action handler as filter")
	}
	if !errors.Is(err, ErrHandlerKind) {
		t.Errorf("expected ErrHandlerKind, got %v", err)
	}

	if _, err := r.Register(Kind(9), "x", nopAction()); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRegistry_RemoveAction_AllMatches(t *testing.T) {
	r := NewRegistry()
	h := nopAction()
	other := nopAction()

	r.AddAction("t", h)
	r.AddAction("t", other)
	r.AddAction("t", h, WithPriority(1))

	if n := r.RemoveAction("t", h); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if r.Count(KindAction, "t") != 1 {
		t.Errorf("expected 1 remaining, got %d", r.Count(KindAction, "t"))
	}
	if r.Len() != 1 {
		t.Errorf("expected ID index to shrink to 1, got %d", r.Len())
	}
}

func TestRegistry_Remove_UnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.AddFilter("t", nopFilter())

	if n := r.RemoveFilter("t", nopFilter()); n != 0 {
		t.Errorf("expected 0 removed, got %d", n)
	}
	if n := r.RemoveFilter("missing", nopFilter()); n != 0 {
		t.Errorf("expected 0 removed for missing tag, got %d", n)
	}
	if n := r.RemoveAction("missing", nil); n != 0 {
		t.Errorf("expected 0 removed for nil handler, got %d", n)
	}
	if r.Remove("no-such-id") {
		t.Error("Remove should return false for unknown ID")
	}
	if r.Count(KindFilter, "t") != 1 {
		t.Error("unrelated registration should remain")
	}
}

// valueHandler has a non-comparable dynamic type.
type valueHandler struct {
	fn func()
}

func (v valueHandler) HandleAction(ctx context.Context, args ...any) error {
	v.fn()
	return nil
}

func TestRegistry_Remove_NonComparableHandler(t *testing.T) {
	r := NewRegistry()
	h := valueHandler{fn: func() {}}

	reg := r.AddAction("t", h)

	if n := r.RemoveAction("t", h); n != 0 {
		t.Errorf("non-comparable handler should not match, removed %d", n)
	}
	if !r.Remove(reg.ID) {
		t.Error("expected removal by ID to succeed")
	}
	if r.HasAction("t") {
		t.Error("expected tag to be empty")
	}
}

func TestRegistry_RemoveByID_KeepsOrder(t *testing.T) {
	r := NewRegistry()
	a := r.AddAction("t", nopAction())
	b := r.AddAction("t", nopAction())
	c := r.AddAction("t", nopAction())

	if !r.Remove(b.ID) {
		t.Fatal("expected removal")
	}

	regs := r.Registrations(KindAction, "t")
	if len(regs) != 2 || regs[0].ID != a.ID || regs[1].ID != c.ID {
		t.Errorf("unexpected order after removal: %+v", regs)
	}
}

func TestRegistry_RemoveAll(t *testing.T) {
	r := NewRegistry()
	r.AddAction("t", nopAction())
	r.AddAction("t", nopAction())
	r.AddAction("u", nopAction())

	if n := r.RemoveAllActions("t"); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if r.HasAction("t") {
		t.Error("expected t empty")
	}
	if !r.HasAction("u") {
		t.Error("expected u untouched")
	}
	if n := r.RemoveAllFilters("t"); n != 0 {
		t.Errorf("expected 0 filters removed, got %d", n)
	}
}

func TestRegistry_Registrations_Order(t *testing.T) {
	r := NewRegistry()
	late := r.AddFilter("t", nopFilter(), WithPriority(20))
	first := r.AddFilter("t", nopFilter(), WithPriority(10))
	second := r.AddFilter("t", nopFilter(), WithPriority(10))
	early := r.AddFilter("t", nopFilter(), WithPriority(-1))

	regs := r.Registrations(KindFilter, "t")
	want := []string{early.ID, first.ID, second.ID, late.ID}
	if len(regs) != len(want) {
		t.Fatalf("expected %d registrations, got %d", len(want), len(regs))
	}
	for i, id := range want {
		if regs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, regs[i].ID)
		}
	}

	if r.Registrations(KindFilter, "missing") != nil {
		t.Error("expected nil for missing tag")
	}
}

func TestRegistry_Tags(t *testing.T) {
	r := NewRegistry()
	r.AddAction("b", nopAction())
	r.AddAction("a", nopAction())
	r.AddFilter("z", nopFilter())

	tags := r.Tags(KindAction)
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("unexpected action tags %v", tags)
	}
	if tags := r.Tags(KindFilter); len(tags) != 1 || tags[0] != "z" {
		t.Errorf("unexpected filter tags %v", tags)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	reg := r.AddAction("t", nopAction(), WithPriority(3))

	got, ok := r.Get(reg.ID)
	if !ok {
		t.Fatal("expected registration")
	}
	if got.Tag != "t" || got.Priority != 3 {
		t.Errorf("unexpected registration %+v", got)
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("expected miss")
	}
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Debug(msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func TestRegistry_Logger(t *testing.T) {
	log := &recordingLogger{}
	r := NewRegistry(WithLogger(log))

	h := nopAction()
	r.AddAction("t", h)
	r.RemoveAction("t", h)

	if len(log.msgs) != 2 || log.msgs[0] != "hook added" || log.msgs[1] != "hook removed" {
		t.Errorf("unexpected log messages %v", log.msgs)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindAction, "action"},
		{KindFilter, "filter"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		ok       bool
	}{
		{"action", KindAction, true},
		{"actions", KindAction, true},
		{"filter", KindFilter, true},
		{"filters", KindFilter, true},
		{"event", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.input)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("ParseKind(%q) = %v, %v; expected %v, %v", tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := nopAction()
				r.AddAction("t", h, WithPriority(j%5))
				r.RemoveAction("t", h)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := r.DoAction(ctx, "t"); err != nil {
					t.Errorf("DoAction: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
	if r.DidAction("t") != 800 {
		t.Errorf("expected 800 dispatches, got %d", r.DidAction("t"))
	}
}
