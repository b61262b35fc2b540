// Package script lets Lua scripts take part in the hook system.
//
// An Engine owns a sandboxed Lua state and exposes a global hooks table
// bound to a hook.Registry:
//
//	hooks.add_action(tag, fn [, priority [, accepted_args]]) -> id
//	hooks.add_filter(tag, fn [, priority [, accepted_args]]) -> id
//	hooks.remove_action(tag, fn) -> count
//	hooks.remove_filter(tag, fn) -> count
//	hooks.do_action(tag, ...)
//	hooks.apply_filters(tag, value, ...) -> value
//	hooks.did_action(tag) -> count
//	hooks.has_action(tag), hooks.has_filter(tag) -> bool
//	hooks.current_tag() -> tag or nil
//	hooks.doing(tag) -> bool
//
// A Lua function is wrapped in one handler per engine, so removing it with
// the same function value it was added with works. Anonymous functions
// can only be removed by id (hooks.remove(id)) or by Unload.
//
// Values cross the boundary as follows: nil, booleans, numbers and
// strings map to their Go counterparts (integral numbers become int),
// sequence tables become []any, other tables map[string]any. Go values
// with no Lua form travel as userdata and come back unchanged.
//
// Lua errors raised inside handlers fail the dispatch like any other
// handler error. Errors from Go handlers reached through do_action or
// apply_filters are raised as Lua errors.
//
// The Lua state is single threaded: an Engine serializes calls from
// different goroutines, and nested dispatch from inside a script runs on
// the same call stack.
package script
