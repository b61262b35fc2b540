// Package admin holds the plugin's admin pages and draws them on a
// terminal screen.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errors returned by menu operations.
var (
	// ErrDuplicateSlug indicates a page slug already in the menu.
	ErrDuplicateSlug = errors.New("duplicate page slug")

	// ErrNoParent indicates a submenu whose parent page is missing.
	ErrNoParent = errors.New("parent page not found")

	// ErrNoPage indicates an unknown page.
	ErrNoPage = errors.New("page not found")
)

// RenderFunc produces the body of a page.
type RenderFunc func(ctx context.Context) (string, error)

// Page is an admin page.
type Page struct {
	Title      string
	MenuTitle  string
	Capability string
	Slug       string
	Icon       string
	// Parent is the parent slug of a submenu page.
	Parent string
	// Hook is the page hook name, passed to admin_enqueue_scripts when
	// the page is displayed.
	Hook   string
	Render RenderFunc
}

// Menu is the admin menu. It is safe for concurrent use.
type Menu struct {
	mu    sync.RWMutex
	pages []*Page
	slugs map[string]*Page
}

// NewMenu creates an empty menu.
func NewMenu() *Menu {
	return &Menu{slugs: make(map[string]*Page)}
}

// AddMenuPage adds a top-level page and returns its hook name,
// "toplevel_page_<slug>".
func (m *Menu) AddMenuPage(title, menuTitle, capability, slug string, render RenderFunc, icon string) (string, error) {
	return m.add(&Page{
		Title:      title,
		MenuTitle:  menuTitle,
		Capability: capability,
		Slug:       slug,
		Icon:       icon,
		Hook:       "toplevel_page_" + slug,
		Render:     render,
	})
}

// AddSubmenuPage adds a page under parent and returns its hook name,
// "<parent menu title>_page_<slug>".
func (m *Menu) AddSubmenuPage(parent, title, menuTitle, capability, slug string, render RenderFunc) (string, error) {
	m.mu.RLock()
	p, ok := m.slugs[parent]
	m.mu.RUnlock()
	if !ok || p.Parent != "" {
		return "", fmt.Errorf("%w: %q", ErrNoParent, parent)
	}

	return m.add(&Page{
		Title:      title,
		MenuTitle:  menuTitle,
		Capability: capability,
		Slug:       slug,
		Parent:     parent,
		Hook:       sanitizeTitle(p.MenuTitle) + "_page_" + slug,
		Render:     render,
	})
}

func (m *Menu) add(p *Page) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugs[p.Slug]; exists {
		return "", fmt.Errorf("%w: %q", ErrDuplicateSlug, p.Slug)
	}
	m.pages = append(m.pages, p)
	m.slugs[p.Slug] = p
	return p.Hook, nil
}

// Page returns a copy of the page with slug.
func (m *Menu) Page(slug string) (Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.slugs[slug]
	if !ok {
		return Page{}, false
	}
	return *p, true
}

// PageForHook returns the page whose hook name is hook.
func (m *Menu) PageForHook(hook string) (Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.pages {
		if p.Hook == hook {
			return *p, true
		}
	}
	return Page{}, false
}

// TopLevel returns the top-level pages in the order they were added.
func (m *Menu) TopLevel() []Page {
	return m.filter(func(p *Page) bool { return p.Parent == "" })
}

// Submenu returns the pages under parent in the order they were added.
func (m *Menu) Submenu(parent string) []Page {
	return m.filter(func(p *Page) bool { return p.Parent == parent && parent != "" })
}

func (m *Menu) filter(keep func(*Page) bool) []Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Page
	for _, p := range m.pages {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

// RenderPage runs the render function of the page with slug.
func (m *Menu) RenderPage(ctx context.Context, slug string) (string, error) {
	p, ok := m.Page(slug)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoPage, slug)
	}
	if p.Render == nil {
		return "", nil
	}
	return p.Render(ctx)
}

// sanitizeTitle lower-cases title and replaces runs of anything other
// than letters and digits with a single '-'.
func sanitizeTitle(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
