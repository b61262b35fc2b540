package plugin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/hookline/internal/assets"
	"github.com/dshills/hookline/internal/binding"
	"github.com/dshills/hookline/internal/config"
	"github.com/dshills/hookline/internal/hook"
	"github.com/dshills/hookline/internal/i18n"
	"github.com/dshills/hookline/internal/logging"
)

// Plugin is a bootstrapped plugin. Its methods are the callbacks it binds
// on the host hooks; they may also be called directly.
type Plugin struct {
	info *config.Info
	host *Host
	log  *logging.Logger

	mu    sync.RWMutex
	state State
	tr    *i18n.Translator

	loadTextDomain *hook.ActionFunc
	adminMenu      *hook.ActionFunc
	adminScripts   *hook.ActionFunc

	pageContent      hook.FilterTag[string]
	loadAdminScripts hook.FilterTag[bool]
}

func newPlugin(host *Host, info *config.Info) *Plugin {
	p := &Plugin{
		info:             info,
		host:             host,
		log:              host.Logger.WithComponent("plugin").WithField("plugin", info.BaseName),
		tr:               i18n.Nop(),
		pageContent:      hook.NewFilterTag[string](info.Tag(SuffixPageContent)),
		loadAdminScripts: hook.NewFilterTag[bool](info.Tag(SuffixLoadAdminScripts)),
	}
	p.loadTextDomain = hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		return p.LoadTextDomain()
	})
	p.adminMenu = hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		_, err := p.AdminMenu(ctx)
		return err
	})
	p.adminScripts = hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		var pageHook string
		if len(args) > 0 {
			pageHook, _ = args[0].(string)
		}
		return p.AdminScripts(ctx, pageHook)
	})
	return p
}

// Bindings implements binding.Hookable.
func (p *Plugin) Bindings() []binding.Binding {
	return []binding.Binding{
		binding.Action(TagAdminMenu, p.adminMenu),
		binding.Action(TagAdminEnqueueScripts, p.adminScripts),
	}
}

// Info returns the plugin description.
func (p *Plugin) Info() *config.Info { return p.info }

// State returns the lifecycle state.
func (p *Plugin) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Plugin) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Tag returns the plugin's hook name for suffix.
func (p *Plugin) Tag(suffix string) string {
	return p.info.Tag(suffix)
}

// T translates key in the plugin's text domain.
func (p *Plugin) T(key string, args ...any) string {
	p.mu.RLock()
	tr := p.tr
	p.mu.RUnlock()
	return tr.T(key, args...)
}

// LoadTextDomain loads the plugin translations for the host locale and
// marks the plugin active.
func (p *Plugin) LoadTextDomain() error {
	tr, err := i18n.LoadTextDomain(p.info.Plugin.TextDomain, p.info.LanguagesDir, p.host.Locale)
	if err != nil {
		p.log.Error("loading text domain", "domain", p.info.Plugin.TextDomain, "err", err)
		return err
	}
	p.mu.Lock()
	p.tr = tr
	p.state = StateActive
	p.mu.Unlock()
	p.log.Debug("text domain loaded", "domain", tr.Domain(), "locale", tr.Locale().String(), "keys", len(tr.Keys()))
	return nil
}

// AdminMenu adds the plugin's top-level admin page and fires the submenu
// action with the menu slug so extensions can attach their own pages.
// It returns the page hook.
func (p *Plugin) AdminMenu(ctx context.Context) (string, error) {
	h := p.info.Hooks
	pageHook, err := p.host.Menu.AddMenuPage(h.MenuTitle, h.MenuTitle, MenuCapability, h.MenuSlug,
		p.RenderMainPage, p.info.AssetsURL+MenuIconPath)
	if err != nil {
		return "", fmt.Errorf("admin menu: %w", err)
	}
	p.log.Debug("menu page added", "slug", h.MenuSlug, "hook", pageHook)
	if err := p.host.Registry.DoAction(ctx, p.Tag(SuffixSubmenu), h.MenuSlug); err != nil {
		return pageHook, err
	}
	return pageHook, nil
}

// RenderMainPage renders the main admin page through the page content
// filter.
func (p *Plugin) RenderMainPage(ctx context.Context) (string, error) {
	return p.pageContent.Apply(ctx, p.host.Registry, MainPageContent)
}

// AdminScripts enqueues the plugin scripts and styles when pageHook
// belongs to the plugin page or the load admin scripts filter returns
// true.
func (p *Plugin) AdminScripts(ctx context.Context, pageHook string) error {
	load, err := p.loadAdminScripts.Apply(ctx, p.host.Registry, false)
	if err != nil {
		return err
	}
	h := p.info.Hooks
	if !load && !strings.Contains(strings.ToLower(pageHook), strings.ToLower(h.PageSlug)) {
		return nil
	}

	q := p.host.Assets
	version := p.info.Plugin.Version
	if !q.IsEnqueued(assets.Script, HooksScriptHandle) {
		q.EnqueueScript(assets.Asset{
			Handle:   HooksScriptHandle,
			Src:      p.info.AssetsURL + HooksScriptPath,
			Version:  version,
			InFooter: true,
		})
	}
	q.EnqueueScript(assets.Asset{
		Handle:   h.ScriptSlug,
		Src:      p.info.AssetsURL + MainScriptPath,
		Deps:     []string{"jquery", "backbone", HooksScriptHandle},
		Version:  version,
		InFooter: true,
	})
	if err := q.Localize(h.ScriptSlug, h.ScriptObject, map[string]any{}); err != nil {
		return err
	}
	if err := p.host.Registry.DoAction(ctx, p.Tag(SuffixEnqueueScripts)); err != nil {
		return err
	}

	q.EnqueueStyle(assets.Asset{
		Handle:  h.StyleSlug,
		Src:     p.info.AssetsURL + MainStylePath,
		Version: version,
	})
	if err := p.host.Registry.DoAction(ctx, p.Tag(SuffixEnqueueStyle)); err != nil {
		return err
	}
	p.log.Debug("admin scripts enqueued", "page", pageHook, "forced", load)
	return nil
}

// Unbind removes the plugin's hooks from the host.
func (p *Plugin) Unbind() int {
	n := p.host.Binder.Unbind(p)
	if p.host.Registry.RemoveAction(TagPluginsLoaded, p.loadTextDomain) > 0 {
		n++
	}
	p.setState(StateUnloaded)
	return n
}
