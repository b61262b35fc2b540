package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookline/internal/hook"
)

// installHooks sets the global hooks table. Its functions run while the
// engine holds the Lua state, so they read e.ctx directly.
func (e *Engine) installHooks() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"add_action":    e.luaAdd(hook.KindAction),
		"add_filter":    e.luaAdd(hook.KindFilter),
		"remove_action": e.luaRemove(hook.KindAction),
		"remove_filter": e.luaRemove(hook.KindFilter),
		"remove":        e.luaRemoveID,
		"do_action":     e.luaDoAction,
		"apply_filters": e.luaApplyFilters,
		"did_action":    e.luaDidAction,
		"has_action":    e.luaHas(hook.KindAction),
		"has_filter":    e.luaHas(hook.KindFilter),
		"current_tag":   e.luaCurrentTag,
		"doing":         e.luaDoing,
	})
	e.L.SetGlobal("hooks", mod)
}

func (e *Engine) luaAdd(kind hook.Kind) lua.LGFunction {
	return func(L *lua.LState) int {
		tag := L.CheckString(1)
		fn := L.CheckFunction(2)
		priority := L.OptInt(3, hook.DefaultPriority)
		accepted := L.OptInt(4, hook.AllArgs)

		h := e.handlerFor(fn)
		reg, err := e.reg.Register(kind, tag, h,
			hook.WithPriority(priority), hook.WithAcceptedArgs(accepted))
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		e.track(reg.ID)
		L.Push(lua.LString(reg.ID))
		return 1
	}
}

func (e *Engine) luaRemove(kind hook.Kind) lua.LGFunction {
	return func(L *lua.LState) int {
		tag := L.CheckString(1)
		fn := L.CheckFunction(2)

		h, ok := e.lookupHandler(fn)
		if !ok {
			L.Push(lua.LNumber(0))
			return 1
		}
		var n int
		if kind == hook.KindAction {
			n = e.reg.RemoveAction(tag, h)
		} else {
			n = e.reg.RemoveFilter(tag, h)
		}
		L.Push(lua.LNumber(n))
		return 1
	}
}

func (e *Engine) luaRemoveID(L *lua.LState) int {
	L.Push(lua.LBool(e.reg.Remove(L.CheckString(1))))
	return 1
}

func (e *Engine) luaDoAction(L *lua.LState) int {
	tag := L.CheckString(1)
	args := make([]any, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, toGo(L.Get(i)))
	}
	if err := e.reg.DoAction(e.ctx, tag, args...); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaApplyFilters(L *lua.LState) int {
	tag := L.CheckString(1)
	value := toGo(L.Get(2))
	args := make([]any, 0)
	for i := 3; i <= L.GetTop(); i++ {
		args = append(args, toGo(L.Get(i)))
	}
	out, err := e.reg.ApplyFilters(e.ctx, tag, value, args...)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(toLua(L, out))
	return 1
}

func (e *Engine) luaDidAction(L *lua.LState) int {
	L.Push(lua.LNumber(e.reg.DidAction(L.CheckString(1))))
	return 1
}

func (e *Engine) luaHas(kind hook.Kind) lua.LGFunction {
	return func(L *lua.LState) int {
		tag := L.CheckString(1)
		if kind == hook.KindAction {
			L.Push(lua.LBool(e.reg.HasAction(tag)))
		} else {
			L.Push(lua.LBool(e.reg.HasFilter(tag)))
		}
		return 1
	}
}

func (e *Engine) luaCurrentTag(L *lua.LState) int {
	tag := hook.CurrentTag(e.ctx)
	if tag == "" {
		L.Push(lua.LNil)
	} else {
		L.Push(lua.LString(tag))
	}
	return 1
}

func (e *Engine) luaDoing(L *lua.LState) int {
	L.Push(lua.LBool(hook.Doing(e.ctx, L.CheckString(1))))
	return 1
}
