package hook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registration is one handler subscribed to a tag.
type Registration struct {
	// ID uniquely identifies the registration.
	ID string

	// Kind is the table the registration lives in.
	Kind Kind

	// Tag is the extension point name.
	Tag string

	// Priority orders handlers within a tag. Lower runs first.
	Priority int

	// AcceptedArgs is the number of positional arguments forwarded,
	// or AllArgs.
	AcceptedArgs int

	action ActionHandler
	filter FilterHandler
}

// Handler returns the registered handler.
func (reg *Registration) Handler() any {
	if reg.Kind == KindFilter {
		return reg.filter
	}
	return reg.action
}

// Registry holds action and filter registrations keyed by tag.
// It is safe for concurrent use. Dispatch works on a snapshot taken at the
// start of each call, so handlers may register or remove hooks freely.
type Registry struct {
	mu      sync.RWMutex
	actions map[string][]*Registration
	filters map[string][]*Registration
	byID    map[string]*Registration

	firedMu sync.Mutex
	fired   map[string]int

	logger Logger
	newID  func() string
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		actions: make(map[string][]*Registration),
		filters: make(map[string][]*Registration),
		byID:    make(map[string]*Registration),
		fired:   make(map[string]int),
		logger:  nopLogger{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddAction registers h on the action tag.
// The same handler may be registered more than once; it then runs once per
// registration.
func (r *Registry) AddAction(tag string, h ActionHandler, opts ...RegisterOption) *Registration {
	reg := r.newRegistration(KindAction, tag, opts)
	reg.action = h
	r.add(reg)
	return reg
}

// AddFilter registers h on the filter tag.
func (r *Registry) AddFilter(tag string, h FilterHandler, opts ...RegisterOption) *Registration {
	reg := r.newRegistration(KindFilter, tag, opts)
	reg.filter = h
	r.add(reg)
	return reg
}

// Register adds a handler to the table selected by kind.
// It fails only when the handler does not implement the interface for kind.
func (r *Registry) Register(kind Kind, tag string, handler any, opts ...RegisterOption) (*Registration, error) {
	switch kind {
	case KindAction:
		h, ok := handler.(ActionHandler)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an ActionHandler", ErrHandlerKind, handler)
		}
		return r.AddAction(tag, h, opts...), nil
	case KindFilter:
		h, ok := handler.(FilterHandler)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a FilterHandler", ErrHandlerKind, handler)
		}
		return r.AddFilter(tag, h, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrHandlerKind, kind)
	}
}

func (r *Registry) newRegistration(kind Kind, tag string, opts []RegisterOption) *Registration {
	reg := &Registration{
		ID:           r.newID(),
		Kind:         kind,
		Tag:          tag,
		Priority:     DefaultPriority,
		AcceptedArgs: AllArgs,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

func (r *Registry) add(reg *Registration) {
	r.mu.Lock()
	table := r.table(reg.Kind)
	table[reg.Tag] = append(table[reg.Tag], reg)
	r.byID[reg.ID] = reg
	r.mu.Unlock()

	r.logger.Debug("hook added",
		"kind", reg.Kind.String(),
		"tag", reg.Tag,
		"priority", reg.Priority,
		"id", reg.ID,
	)
}

// RemoveAction removes every registration of h on the action tag.
// Returns the number of registrations removed.
func (r *Registry) RemoveAction(tag string, h ActionHandler) int {
	return r.removeHandler(KindAction, tag, h)
}

// RemoveFilter removes every registration of h on the filter tag.
// Returns the number of registrations removed.
func (r *Registry) RemoveFilter(tag string, h FilterHandler) int {
	return r.removeHandler(KindFilter, tag, h)
}

func (r *Registry) removeHandler(kind Kind, tag string, h any) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	table := r.table(kind)
	regs, ok := table[tag]
	if !ok {
		return 0
	}

	kept := regs[:0:0]
	removed := 0
	for _, reg := range regs {
		if sameHandler(reg.Handler(), h) {
			delete(r.byID, reg.ID)
			removed++
			continue
		}
		kept = append(kept, reg)
	}
	r.store(table, tag, kept)

	if removed > 0 {
		r.logger.Debug("hook removed", "kind", kind.String(), "tag", tag, "count", removed)
	}
	return removed
}

// Remove removes a registration by ID.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	table := r.table(reg.Kind)
	regs := table[reg.Tag]
	kept := make([]*Registration, 0, len(regs))
	for _, existing := range regs {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	r.store(table, reg.Tag, kept)

	r.logger.Debug("hook removed", "kind", reg.Kind.String(), "tag", reg.Tag, "id", id)
	return true
}

// RemoveAllActions removes every action registration on tag.
func (r *Registry) RemoveAllActions(tag string) int {
	return r.removeAll(KindAction, tag)
}

// RemoveAllFilters removes every filter registration on tag.
func (r *Registry) RemoveAllFilters(tag string) int {
	return r.removeAll(KindFilter, tag)
}

func (r *Registry) removeAll(kind Kind, tag string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	table := r.table(kind)
	regs := table[tag]
	for _, reg := range regs {
		delete(r.byID, reg.ID)
	}
	delete(table, tag)
	return len(regs)
}

// store writes the list back, dropping empty tags.
// Callers hold r.mu.
func (r *Registry) store(table map[string][]*Registration, tag string, regs []*Registration) {
	if len(regs) == 0 {
		delete(table, tag)
		return
	}
	table[tag] = regs
}

// table returns the map for kind. Callers hold r.mu.
func (r *Registry) table(kind Kind) map[string][]*Registration {
	if kind == KindFilter {
		return r.filters
	}
	return r.actions
}

// HasAction returns true if any action is registered on tag.
func (r *Registry) HasAction(tag string) bool {
	return r.Count(KindAction, tag) > 0
}

// HasFilter returns true if any filter is registered on tag.
func (r *Registry) HasFilter(tag string) bool {
	return r.Count(KindFilter, tag) > 0
}

// Count returns the number of registrations on tag.
func (r *Registry) Count(kind Kind, tag string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table(kind)[tag])
}

// Len returns the total number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Get returns a copy of the registration with the given ID.
func (r *Registry) Get(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byID[id]
	if !ok {
		return Registration{}, false
	}
	return *reg, true
}

// Registrations returns copies of the registrations on tag in dispatch order.
func (r *Registry) Registrations(kind Kind, tag string) []Registration {
	regs := r.snapshot(kind, tag)
	if len(regs) == 0 {
		return nil
	}
	result := make([]Registration, len(regs))
	for i, reg := range regs {
		result[i] = *reg
	}
	return result
}

// Tags returns the sorted tags that have at least one registration.
func (r *Registry) Tags(kind Kind) []string {
	r.mu.RLock()
	table := r.table(kind)
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	r.mu.RUnlock()

	sort.Strings(tags)
	return tags
}

// DidAction returns how many times DoAction has been called for tag.
func (r *Registry) DidAction(tag string) int {
	r.firedMu.Lock()
	defer r.firedMu.Unlock()
	return r.fired[tag]
}

// snapshot copies the registrations for tag and orders them by priority.
// Equal priorities keep registration order.
func (r *Registry) snapshot(kind Kind, tag string) []*Registration {
	r.mu.RLock()
	regs := r.table(kind)[tag]
	if len(regs) == 0 {
		r.mu.RUnlock()
		return nil
	}
	ordered := make([]*Registration, len(regs))
	copy(ordered, regs)
	r.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	return ordered
}
