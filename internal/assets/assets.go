// Package assets queues the scripts and styles a plugin page needs.
//
// Assets are registered under a handle with a source, dependencies and a
// version, then enqueued for output. Ordered returns the enqueued assets
// with their registered dependencies first.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Errors returned by the queue.
var (
	// ErrDependencyCycle indicates assets that depend on each other.
	ErrDependencyCycle = errors.New("asset dependency cycle")

	// ErrNotRegistered indicates an unknown handle.
	ErrNotRegistered = errors.New("asset not registered")
)

// Kind distinguishes scripts from styles. Each kind has its own handles.
type Kind int

const (
	Script Kind = iota
	Style
)

func (k Kind) String() string {
	switch k {
	case Script:
		return "script"
	case Style:
		return "style"
	default:
		return "unknown"
	}
}

// Asset is a registered script or style.
type Asset struct {
	Handle  string
	Src     string
	Deps    []string
	Version string
	// InFooter places a script at the end of the page.
	InFooter bool
	// Media is the media query of a style. Empty means all.
	Media string
}

// URL returns the source with the version appended as ver.
func (a Asset) URL() string {
	if a.Version == "" || a.Src == "" {
		return a.Src
	}
	sep := "?"
	if strings.Contains(a.Src, "?") {
		sep = "&"
	}
	return a.Src + sep + "ver=" + url.QueryEscape(a.Version)
}

// Localization is data attached to a script as a global object.
type Localization struct {
	Object string
	Data   any
}

type set struct {
	registered map[string]*Asset
	queue      []string
	enqueued   map[string]bool
}

func newSet() *set {
	return &set{
		registered: make(map[string]*Asset),
		enqueued:   make(map[string]bool),
	}
}

// Queue holds registered and enqueued assets. It is safe for concurrent
// use.
type Queue struct {
	mu        sync.RWMutex
	sets      map[Kind]*set
	localized map[string][]Localization
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		sets:      map[Kind]*set{Script: newSet(), Style: newSet()},
		localized: make(map[string][]Localization),
	}
}

// Register records an asset without enqueueing it. The first
// registration of a handle wins; later ones report false.
func (q *Queue) Register(kind Kind, a Asset) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.register(kind, a)
}

func (q *Queue) register(kind Kind, a Asset) bool {
	s := q.sets[kind]
	if _, exists := s.registered[a.Handle]; exists {
		return false
	}
	a.Deps = append([]string(nil), a.Deps...)
	s.registered[a.Handle] = &a
	return true
}

// Enqueue registers a (if its handle is new and it has a source) and
// marks it for output. Enqueueing twice has no further effect.
func (q *Queue) Enqueue(kind Kind, a Asset) {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.sets[kind]
	if a.Src != "" {
		q.register(kind, a)
	}
	if s.enqueued[a.Handle] {
		return
	}
	s.enqueued[a.Handle] = true
	s.queue = append(s.queue, a.Handle)
}

// EnqueueScript enqueues a script.
func (q *Queue) EnqueueScript(a Asset) { q.Enqueue(Script, a) }

// EnqueueStyle enqueues a style.
func (q *Queue) EnqueueStyle(a Asset) { q.Enqueue(Style, a) }

// Dequeue removes handle from the output queue. Its registration stays.
func (q *Queue) Dequeue(kind Kind, handle string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.sets[kind]
	if !s.enqueued[handle] {
		return
	}
	delete(s.enqueued, handle)
	for i, h := range s.queue {
		if h == handle {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
}

// IsEnqueued reports whether handle is queued for output.
func (q *Queue) IsEnqueued(kind Kind, handle string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.sets[kind].enqueued[handle]
}

// IsRegistered reports whether handle is registered.
func (q *Queue) IsRegistered(kind Kind, handle string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.sets[kind].registered[handle]
	return ok
}

// Get returns a copy of the registered asset.
func (q *Queue) Get(kind Kind, handle string) (Asset, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	a, ok := q.sets[kind].registered[handle]
	if !ok {
		return Asset{}, false
	}
	cp := *a
	cp.Deps = append([]string(nil), a.Deps...)
	return cp, true
}

// Localize attaches data to a registered script, exposed under object.
func (q *Queue) Localize(handle, object string, data any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.sets[Script].registered[handle]; !ok {
		return fmt.Errorf("%w: script %q", ErrNotRegistered, handle)
	}
	q.localized[handle] = append(q.localized[handle], Localization{Object: object, Data: data})
	return nil
}

// Localizations returns the data attached to a script.
func (q *Queue) Localizations(handle string) []Localization {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Localization(nil), q.localized[handle]...)
}

// InlineScript renders the localizations of handle as variable
// declarations, one per line.
func (q *Queue) InlineScript(handle string) (string, error) {
	var b strings.Builder
	for _, l := range q.Localizations(handle) {
		data, err := json.Marshal(l.Data)
		if err != nil {
			return "", fmt.Errorf("localize %s %s: %w", handle, l.Object, err)
		}
		fmt.Fprintf(&b, "var %s = %s;\n", jsIdent(l.Object), data)
	}
	return b.String(), nil
}

// jsIdent maps characters that are invalid in an identifier to '_'.
func jsIdent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_' || r == '$':
			return r
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// Ordered returns the enqueued assets of kind in output order: each
// asset after its dependencies, otherwise in enqueue order. Registered
// dependencies are included even if not enqueued themselves. Unknown
// dependencies are treated as provided elsewhere and skipped.
func (q *Queue) Ordered(kind Kind) ([]Asset, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	s := q.sets[kind]
	var (
		out     []Asset
		done    = make(map[string]bool)
		inStack = make(map[string]bool)
		stack   []string
	)

	var visit func(handle string) error
	visit = func(handle string) error {
		a, ok := s.registered[handle]
		if !ok || done[handle] {
			return nil
		}
		if inStack[handle] {
			cycle := append([]string(nil), stack[indexOf(stack, handle):]...)
			cycle = append(cycle, handle)
			return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(cycle, " -> "))
		}

		inStack[handle] = true
		stack = append(stack, handle)
		for _, dep := range a.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		inStack[handle] = false

		done[handle] = true
		cp := *a
		cp.Deps = append([]string(nil), a.Deps...)
		out = append(out, cp)
		return nil
	}

	for _, handle := range s.queue {
		if err := visit(handle); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}
