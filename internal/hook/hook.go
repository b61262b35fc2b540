package hook

import (
	"context"
	"reflect"
)

// Kind distinguishes the two hook tables.
type Kind int

const (
	// KindAction handlers are notified and their results discarded.
	KindAction Kind = iota

	// KindFilter handlers transform a value threaded through the chain.
	KindFilter
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// ParseKind parses "action" or "filter".
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "action", "actions":
		return KindAction, true
	case "filter", "filters":
		return KindFilter, true
	default:
		return 0, false
	}
}

// Standard priorities.
const (
	DefaultPriority = 10 // Used when no priority is given
	PriorityEarly   = 1
	PriorityLate    = 100
)

// AllArgs forwards every positional argument to a handler.
const AllArgs = -1

// ActionHandler is notified when an action fires.
type ActionHandler interface {
	// HandleAction is called with the arguments passed to DoAction,
	// truncated to the registration's accepted argument count.
	HandleAction(ctx context.Context, args ...any) error
}

// FilterHandler transforms a value when a filter is applied.
type FilterHandler interface {
	// HandleFilter receives the value produced by the previous handler
	// and returns the value for the next one.
	HandleFilter(ctx context.Context, value any, args ...any) (any, error)
}

// ActionFunc wraps a function as an ActionHandler.
// Always use the pointer returned by NewActionFunc when the handler may
// need to be removed later; removal compares handler identity.
type ActionFunc struct {
	fn func(ctx context.Context, args ...any) error
}

// NewActionFunc creates a new ActionFunc handler.
func NewActionFunc(fn func(ctx context.Context, args ...any) error) *ActionFunc {
	return &ActionFunc{fn: fn}
}

// HandleAction implements ActionHandler.
func (f *ActionFunc) HandleAction(ctx context.Context, args ...any) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx, args...)
}

// FilterFunc wraps a function as a FilterHandler.
type FilterFunc struct {
	fn func(ctx context.Context, value any, args ...any) (any, error)
}

// NewFilterFunc creates a new FilterFunc handler.
func NewFilterFunc(fn func(ctx context.Context, value any, args ...any) (any, error)) *FilterFunc {
	return &FilterFunc{fn: fn}
}

// HandleFilter implements FilterHandler.
func (f *FilterFunc) HandleFilter(ctx context.Context, value any, args ...any) (any, error) {
	if f.fn == nil {
		return value, nil
	}
	return f.fn(ctx, value, args...)
}

// Logger is the logging interface used by the registry.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// sameHandler reports whether two handlers are the same reference.
// Handlers of non-comparable dynamic type never match.
func sameHandler(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
