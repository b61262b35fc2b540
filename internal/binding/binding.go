// Package binding registers hook handlers declared by their owners.
//
// An owner lists what it wants hooked by implementing Hookable:
//
//	func (p *Plugin) Bindings() []binding.Binding {
//		return []binding.Binding{
//			binding.Action("admin_menu", hook.NewActionFunc(p.adminMenu)),
//			binding.Filter("the_title", p.titleFilter, hook.WithPriority(5)),
//		}
//	}
//
// A Binder registers the bindings of each distinct owner at most once.
// Bindings can also be declared in a YAML or HCL manifest that names
// handlers from a Table.
package binding

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dshills/hookline/internal/hook"
)

// Errors returned by binding operations.
var (
	// ErrOwnerNotComparable indicates an owner that cannot be tracked.
	// Owners are usually pointers.
	ErrOwnerNotComparable = errors.New("binding owner is not comparable")

	// ErrUnknownHandler indicates a manifest entry naming a handler
	// missing from the table.
	ErrUnknownHandler = errors.New("unknown handler")
)

// Binding is one declared hook registration.
type Binding struct {
	Kind    hook.Kind
	Tag     string
	Handler any
	Options []hook.RegisterOption
}

// Action declares an action binding.
func Action(tag string, h hook.ActionHandler, opts ...hook.RegisterOption) Binding {
	return Binding{Kind: hook.KindAction, Tag: tag, Handler: h, Options: opts}
}

// Filter declares a filter binding.
func Filter(tag string, h hook.FilterHandler, opts ...hook.RegisterOption) Binding {
	return Binding{Kind: hook.KindFilter, Tag: tag, Handler: h, Options: opts}
}

// Hookable is implemented by anything that declares bindings.
type Hookable interface {
	Bindings() []Binding
}

// Binder registers bindings with a registry.
type Binder struct {
	reg *hook.Registry

	mu    sync.Mutex
	bound map[any][]string
}

// NewBinder creates a binder for reg.
func NewBinder(reg *hook.Registry) *Binder {
	return &Binder{
		reg:   reg,
		bound: make(map[any][]string),
	}
}

// Bind registers the owner's bindings. It reports false without
// registering anything when the owner was already bound. If any binding
// fails, the ones registered so far are removed and the error returned.
func (b *Binder) Bind(owner Hookable) (bool, error) {
	if owner == nil || !reflect.ValueOf(owner).Comparable() {
		return false, ErrOwnerNotComparable
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.bound[owner]; ok {
		return false, nil
	}

	var ids []string
	for _, bnd := range owner.Bindings() {
		r, err := b.reg.Register(bnd.Kind, bnd.Tag, bnd.Handler, bnd.Options...)
		if err != nil {
			for _, id := range ids {
				b.reg.Remove(id)
			}
			return false, fmt.Errorf("binding %s %q: %w", bnd.Kind, bnd.Tag, err)
		}
		ids = append(ids, r.ID)
	}
	b.bound[owner] = ids
	return true, nil
}

// Bound reports whether owner has been bound.
func (b *Binder) Bound(owner Hookable) bool {
	if owner == nil || !reflect.ValueOf(owner).Comparable() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bound[owner]
	return ok
}

// Unbind removes every registration made for owner and forgets it, so a
// later Bind registers again. It returns the number of registrations
// removed.
func (b *Binder) Unbind(owner Hookable) int {
	if owner == nil || !reflect.ValueOf(owner).Comparable() {
		return 0
	}

	b.mu.Lock()
	ids, ok := b.bound[owner]
	delete(b.bound, owner)
	b.mu.Unlock()

	if !ok {
		return 0
	}
	n := 0
	for _, id := range ids {
		if b.reg.Remove(id) {
			n++
		}
	}
	return n
}
