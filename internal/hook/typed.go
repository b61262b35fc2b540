package hook

import (
	"context"
	"fmt"
)

// ActionTag binds an action tag name to a payload type.
//
//	var Saved = hook.NewActionTag[Post]("post_saved")
//	Saved.Add(reg, func(ctx context.Context, p Post) error { ... })
//	err := Saved.Do(ctx, reg, post)
type ActionTag[T any] struct {
	name string
}

// NewActionTag creates a typed action tag.
func NewActionTag[T any](name string) ActionTag[T] {
	return ActionTag[T]{name: name}
}

// Name returns the tag name.
func (t ActionTag[T]) Name() string { return t.name }

// Add registers fn on the tag. Dispatches whose first argument is not a T
// fail with ErrValueType.
func (t ActionTag[T]) Add(r *Registry, fn func(ctx context.Context, payload T) error, opts ...RegisterOption) *Registration {
	return r.AddAction(t.name, NewActionFunc(func(ctx context.Context, args ...any) error {
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		payload, ok := as[T](arg)
		if !ok {
			return fmt.Errorf("%w: %s wants %T, got %T", ErrValueType, t.name, payload, arg)
		}
		return fn(ctx, payload)
	}), opts...)
}

// Do fires the tag with payload.
func (t ActionTag[T]) Do(ctx context.Context, r *Registry, payload T) error {
	return r.DoAction(ctx, t.name, payload)
}

// FilterTag binds a filter tag name to a value type.
type FilterTag[T any] struct {
	name string
}

// NewFilterTag creates a typed filter tag.
func NewFilterTag[T any](name string) FilterTag[T] {
	return FilterTag[T]{name: name}
}

// Name returns the tag name.
func (t FilterTag[T]) Name() string { return t.name }

// Add registers fn on the tag.
func (t FilterTag[T]) Add(r *Registry, fn func(ctx context.Context, value T, args ...any) (T, error), opts ...RegisterOption) *Registration {
	return r.AddFilter(t.name, NewFilterFunc(func(ctx context.Context, value any, args ...any) (any, error) {
		v, ok := as[T](value)
		if !ok {
			return value, fmt.Errorf("%w: %s wants %T, got %T", ErrValueType, t.name, v, value)
		}
		return fn(ctx, v, args...)
	}), opts...)
}

// Apply runs the filter chain and returns the result as a T.
// Untyped handlers on the same tag may return anything; a final value that
// is not a T is reported as ErrValueType.
func (t FilterTag[T]) Apply(ctx context.Context, r *Registry, value T, args ...any) (T, error) {
	out, err := r.ApplyFilters(ctx, t.name, value, args...)
	result, ok := as[T](out)
	if err != nil {
		if !ok {
			return value, err
		}
		return result, err
	}
	if !ok {
		return value, fmt.Errorf("%w: %s produced %T", ErrValueType, t.name, out)
	}
	return result, nil
}

// as converts v to T. A nil v yields the zero T.
func as[T any](v any) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}
