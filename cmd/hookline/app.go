package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/hookline/internal/binding"
	"github.com/dshills/hookline/internal/config"
	"github.com/dshills/hookline/internal/hook"
	"github.com/dshills/hookline/internal/i18n"
	"github.com/dshills/hookline/internal/logging"
	"github.com/dshills/hookline/internal/plugin"
	"github.com/dshills/hookline/internal/script"
	"github.com/dshills/hookline/internal/settings"
)

// app is a bootstrapped plugin with everything it runs against.
type app struct {
	info   *config.Info
	reg    *hook.Registry
	host   *plugin.Host
	plugin *plugin.Plugin
	store  *settings.Store
	engine *script.Engine
	log    *logging.Logger

	pageHook string
}

// open loads the plugin description, opens the settings store and
// bootstraps the plugin. Version failures warn on the error writer when
// warnCLI is set and become admin notices otherwise.
func (c *cli) open(ctx context.Context, warnCLI bool) (*app, error) {
	path := c.v.GetString("config")
	info, err := config.NewLoader().Load(path, path == defaultConfig)
	if err != nil && !errors.Is(err, config.ErrInstallation) {
		return nil, err
	}

	store, err := settings.Open(c.v.GetString("db"))
	if err != nil {
		return nil, err
	}

	tr, err := i18n.LoadTextDomain(info.Plugin.TextDomain, info.LanguagesDir, c.v.GetString("locale"))
	if err != nil {
		store.Close()
		return nil, err
	}

	reg := hook.NewRegistry(hook.WithLogger(c.log.WithComponent("hook")))
	opts := []plugin.HostOption{
		plugin.WithSettings(store),
		plugin.WithLogger(c.log),
		plugin.WithTranslator(tr),
		plugin.WithVersion(c.v.GetString("host-version")),
		plugin.WithLocale(c.v.GetString("locale")),
		plugin.WithNotices(c.out),
	}
	if warnCLI {
		opts = append(opts, plugin.WithCLI(c.errOut))
	}
	host := plugin.NewHost(reg, opts...)

	a := &app{
		info:  info,
		reg:   reg,
		host:  host,
		store: store,
		log:   c.log,
	}

	a.plugin, err = plugin.Bootstrap(host, info)
	if err != nil {
		if errors.Is(err, config.ErrInstallation) {
			// The installation notice is hooked on shutdown.
			if serr := reg.DoAction(ctx, plugin.TagShutdown); serr != nil {
				err = errors.Join(err, serr)
			}
		}
		if errors.Is(err, plugin.ErrHostTooOld) && !warnCLI {
			if nerr := reg.DoAction(ctx, plugin.TagAdminNotices); nerr != nil {
				err = errors.Join(err, nerr)
			}
		}
		store.Close()
		return nil, err
	}

	if manifest := c.v.GetString("manifest"); manifest != "" {
		if err := a.bindManifest(manifest, c.out); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.engine = script.NewEngine(reg, script.WithLogger(c.log.WithComponent("script")))
	if dir := c.v.GetString("scripts"); dir != "" {
		n, err := a.engine.LoadDir(ctx, dir)
		if err != nil {
			a.Close()
			return nil, err
		}
		c.log.Info("scripts loaded", "dir", dir, "count", n)
	}
	return a, nil
}

func (a *app) bindManifest(path string, out io.Writer) error {
	m, err := binding.LoadManifest(path)
	if err != nil {
		return err
	}
	set, err := m.Resolve(builtinHandlers(out, a.log))
	if err != nil {
		return err
	}
	if _, err := a.host.Binder.Bind(set); err != nil {
		return err
	}
	a.log.Info("manifest bound", "path", path, "entries", len(m.Entries))
	return nil
}

// boot fires the lifecycle hooks an admin page load fires. An empty
// pageHook means the plugin's main page.
func (a *app) boot(ctx context.Context, pageHook string) error {
	if err := a.reg.DoAction(ctx, plugin.TagPluginsLoaded); err != nil {
		return err
	}
	if err := a.reg.DoAction(ctx, plugin.TagAdminMenu); err != nil {
		return err
	}
	if pageHook == "" {
		page, ok := a.host.Menu.Page(a.info.Hooks.MenuSlug)
		if !ok {
			return fmt.Errorf("main page %q was not added", a.info.Hooks.MenuSlug)
		}
		pageHook = page.Hook
	}
	a.pageHook = pageHook
	return a.reg.DoAction(ctx, plugin.TagAdminEnqueueScripts, pageHook)
}

// Close releases the script engine and the settings store.
func (a *app) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.plugin != nil {
		a.plugin.Unbind()
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
