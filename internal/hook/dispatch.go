package hook

import "context"

// DoAction notifies every handler registered on tag, in priority order.
//
// Handlers run synchronously on the calling goroutine. The first handler
// error stops the dispatch and is returned as a *CallbackError. Panics are
// not recovered. Registrations made by handlers during the call take effect
// from the next dispatch.
func (r *Registry) DoAction(ctx context.Context, tag string, args ...any) error {
	r.firedMu.Lock()
	r.fired[tag]++
	r.firedMu.Unlock()

	regs := r.snapshot(KindAction, tag)
	if len(regs) == 0 {
		return nil
	}

	ctx = withTag(ctx, tag)
	for _, reg := range regs {
		if err := reg.action.HandleAction(ctx, truncate(args, reg.AcceptedArgs)...); err != nil {
			return wrapCallback(reg, err)
		}
	}
	return nil
}

// ApplyFilters threads value through every handler registered on tag, in
// priority order, and returns the final value.
//
// With no handlers the value is returned unchanged. Whatever a handler
// returns, including nil, becomes the input of the next one. On error the
// value produced before the failing handler is returned with a *CallbackError.
func (r *Registry) ApplyFilters(ctx context.Context, tag string, value any, args ...any) (any, error) {
	regs := r.snapshot(KindFilter, tag)
	if len(regs) == 0 {
		return value, nil
	}

	ctx = withTag(ctx, tag)
	for _, reg := range regs {
		extra := args
		if reg.AcceptedArgs != AllArgs {
			// The value is the first accepted argument.
			extra = truncate(args, max(reg.AcceptedArgs-1, 0))
		}
		next, err := reg.filter.HandleFilter(ctx, value, extra...)
		if err != nil {
			return value, wrapCallback(reg, err)
		}
		value = next
	}
	return value, nil
}

func truncate(args []any, n int) []any {
	if n == AllArgs || n >= len(args) {
		return args
	}
	return args[:n]
}

func wrapCallback(reg *Registration, err error) error {
	return &CallbackError{
		Kind:           reg.Kind,
		Tag:            reg.Tag,
		RegistrationID: reg.ID,
		Priority:       reg.Priority,
		Err:            err,
	}
}

type tagStackKey struct{}

// withTag pushes tag onto the dispatch stack carried by ctx.
func withTag(ctx context.Context, tag string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, _ := ctx.Value(tagStackKey{}).([]string)
	stack := make([]string, len(parent)+1)
	copy(stack, parent)
	stack[len(parent)] = tag
	return context.WithValue(ctx, tagStackKey{}, stack)
}

// CurrentTag returns the tag of the innermost dispatch running ctx's handler,
// or "" outside of a dispatch.
func CurrentTag(ctx context.Context) string {
	stack := TagStack(ctx)
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

// Doing reports whether tag is being dispatched anywhere up ctx's call chain.
func Doing(ctx context.Context, tag string) bool {
	for _, t := range TagStack(ctx) {
		if t == tag {
			return true
		}
	}
	return false
}

// TagStack returns the chain of tags being dispatched, outermost first.
func TagStack(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	stack, _ := ctx.Value(tagStackKey{}).([]string)
	return stack
}
