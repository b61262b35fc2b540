package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookline/internal/hook"
	"github.com/dshills/hookline/internal/logging"
)

// DefaultTimeout bounds a single entry into Lua.
const DefaultTimeout = 5 * time.Second

var (
	// ErrClosed is returned by an engine after Close.
	ErrClosed = errors.New("script engine is closed")

	// ErrBusy is returned when the Lua state stays held by another call
	// for longer than the engine timeout.
	ErrBusy = errors.New("script engine is busy")
)

// Error reports a failure in a script.
type Error struct {
	Script string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine runs Lua scripts against a hook registry.
//
// One call at a time owns the Lua state. Go handlers invoked from a script
// must pass on the context they receive: a dispatch started from a fresh
// context cannot reuse the held state and waits for it, failing with
// ErrBusy after the timeout or when its context ends.
type Engine struct {
	reg     *hook.Registry
	logger  *logging.Logger
	timeout time.Duration

	// sem holds the Lua state; mu guards the bookkeeping below it.
	sem chan struct{}
	L   *lua.LState
	ctx context.Context

	mu       sync.Mutex
	handlers map[*lua.LFunction]*luaHandler
	ids      []string
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger scripts print to.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTimeout bounds each entry into Lua. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

type engineKey struct{}

// NewEngine creates an engine with a fresh sandboxed Lua state.
func NewEngine(reg *hook.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		logger:   logging.Nop(),
		timeout:  DefaultTimeout,
		sem:      make(chan struct{}, 1),
		handlers: make(map[*lua.LFunction]*luaHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.installPrint()
	e.installHooks()
	return e
}

// openSafeLibraries opens base, table, string and math. io, os, debug
// and package stay closed, and the chunk loaders are removed.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (e *Engine) installPrint() {
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		e.logger.Info("script print", "text", strings.Join(parts, "\t"))
		return 0
	}))
}

// enter acquires the Lua state for ctx. Calls nested inside a running
// script carry the engine in ctx and reuse the held state.
func (e *Engine) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if owner, _ := ctx.Value(engineKey{}).(*Engine); owner == e {
		prev := e.ctx
		e.ctx = ctx
		return ctx, func() { e.ctx = prev }, nil
	}

	if err := e.acquire(ctx); err != nil {
		return nil, nil, err
	}
	if e.isClosed() {
		<-e.sem
		return nil, nil, ErrClosed
	}

	ctx = context.WithValue(ctx, engineKey{}, e)
	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	e.ctx = ctx
	e.L.SetContext(ctx)

	return ctx, func() {
		e.L.RemoveContext()
		e.ctx = nil
		cancel()
		<-e.sem
	}, nil
}

// acquire takes the Lua state, giving up when ctx ends or the engine
// timeout passes.
func (e *Engine) acquire(ctx context.Context) error {
	var expired <-chan time.Time
	if e.timeout > 0 {
		t := time.NewTimer(e.timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return ErrBusy
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// call invokes fn with args and returns nret results.
func (e *Engine) call(fn *lua.LFunction, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	L := e.L
	top := L.GetTop()
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}
	if err := L.PCall(len(args), nret, nil); err != nil {
		return nil, err
	}
	n := L.GetTop() - top
	if n <= 0 {
		return nil, nil
	}
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = L.Get(top + i + 1)
	}
	L.Pop(n)
	return results, nil
}

// RunString runs code as a chunk named name.
func (e *Engine) RunString(ctx context.Context, name, code string) error {
	_, leave, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return &Error{Script: name, Err: err}
	}
	if _, err := e.call(fn, 0); err != nil {
		return &Error{Script: name, Err: err}
	}
	return nil
}

// RunFile runs the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Script: path, Err: err}
	}
	return e.RunString(ctx, path, string(data))
}

// LoadDir unloads everything the engine registered, then runs every *.lua
// file in dir in name order. It stops at the first failing script and
// returns the number of scripts run successfully.
func (e *Engine) LoadDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	e.Unload()
	for i, path := range paths {
		if err := e.RunFile(ctx, path); err != nil {
			return i, err
		}
		e.logger.Debug("script loaded", "path", path)
	}
	return len(paths), nil
}

// Unload removes every registration the engine's scripts made and
// returns how many were still registered. It must not be called from a
// script.
func (e *Engine) Unload() int {
	e.mu.Lock()
	ids := e.ids
	e.ids = nil
	e.handlers = make(map[*lua.LFunction]*luaHandler)
	e.mu.Unlock()

	n := 0
	for _, id := range ids {
		if e.reg.Remove(id) {
			n++
		}
	}
	return n
}

// Registrations returns the ids of registrations the scripts made that
// are still in the registry.
func (e *Engine) Registrations() []string {
	e.mu.Lock()
	ids := append([]string(nil), e.ids...)
	e.mu.Unlock()

	live := ids[:0]
	for _, id := range ids {
		if _, ok := e.reg.Get(id); ok {
			live = append(live, id)
		}
	}
	return live
}

// Close unloads the scripts and releases the Lua state. It waits for a
// running script to finish and must not be called from one.
func (e *Engine) Close() error {
	e.Unload()

	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.L.Close()
	return nil
}

// luaHandler adapts a Lua function to both handler interfaces.
type luaHandler struct {
	e  *Engine
	fn *lua.LFunction
}

func (h *luaHandler) HandleAction(ctx context.Context, args ...any) error {
	_, leave, err := h.e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	_, err = h.e.call(h.fn, 0, h.e.luaArgs(args)...)
	return err
}

func (h *luaHandler) HandleFilter(ctx context.Context, value any, args ...any) (any, error) {
	_, leave, err := h.e.enter(ctx)
	if err != nil {
		return value, err
	}
	defer leave()

	largs := append([]lua.LValue{toLua(h.e.L, value)}, h.e.luaArgs(args)...)
	res, err := h.e.call(h.fn, 1, largs...)
	if err != nil {
		return value, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	return toGo(res[0]), nil
}

func (e *Engine) luaArgs(args []any) []lua.LValue {
	out := make([]lua.LValue, len(args))
	for i, a := range args {
		out[i] = toLua(e.L, a)
	}
	return out
}

// handlerFor returns the engine's handler for fn, creating it once.
func (e *Engine) handlerFor(fn *lua.LFunction) *luaHandler {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.handlers[fn]
	if !ok {
		h = &luaHandler{e: e, fn: fn}
		e.handlers[fn] = h
	}
	return h
}

func (e *Engine) lookupHandler(fn *lua.LFunction) (*luaHandler, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.handlers[fn]
	return h, ok
}

func (e *Engine) track(id string) {
	e.mu.Lock()
	e.ids = append(e.ids, id)
	e.mu.Unlock()
}
