// Package hook provides the priority-ordered action and filter registry
// that every other hookline component extends through.
//
// # Actions and Filters
//
// A tag names an extension point. Handlers subscribe to a tag with a
// priority; lower priorities run first and equal priorities run in the order
// they were added.
//
//   - Actions notify handlers and discard their results (DoAction).
//   - Filters thread a value through every handler; each handler receives
//     the previous handler's output (ApplyFilters).
//
// # Basic Usage
//
//	reg := hook.NewRegistry()
//
//	addOne := hook.NewFilterFunc(func(ctx context.Context, v any, _ ...any) (any, error) {
//	    return v.(int) + 1, nil
//	})
//	reg.AddFilter("score", addOne, hook.WithPriority(5))
//
//	v, err := reg.ApplyFilters(ctx, "score", 1)
//
//	// Removal matches the same handler value.
//	reg.RemoveFilter("score", addOne)
//
// Handlers are compared by identity. Keep the pointer returned by
// NewActionFunc or NewFilterFunc if it must be removed later; otherwise use
// the Registration ID with Remove.
//
// # Dispatch Semantics
//
// Dispatch is synchronous. Each call takes a snapshot of the tag's
// registrations and sorts it, so registrations added or removed by a running
// handler apply from the next dispatch. The first handler error stops the
// dispatch and is returned as a *CallbackError. Panics are not recovered.
//
// The context passed to handlers carries the stack of tags being dispatched;
// see CurrentTag and Doing.
//
// # Typed Tags
//
// ActionTag and FilterTag bind a tag name to a Go type so that both the
// registering and dispatching sides are checked at compile time.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Handlers must manage their own
// thread safety.
package hook
