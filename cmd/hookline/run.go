package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/hookline/internal/assets"
	"github.com/dshills/hookline/internal/script"
)

func (c *cli) runCmd() *cobra.Command {
	var (
		page  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bootstrap the plugin and fire the admin hooks",
		Long: `run bootstraps the plugin, loads the Lua scripts, fires plugins_loaded,
admin_menu and admin_enqueue_scripts, then prints the rendered main page
and the enqueued scripts and styles.

With --watch the script directory is watched and the page re-rendered
whenever a script changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.boot(ctx, page); err != nil {
				return err
			}
			if err := a.report(ctx, c.out); err != nil {
				return err
			}
			if watch {
				return a.watch(ctx, c.v.GetString("scripts"), c.out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "page hook passed to admin_enqueue_scripts (default: the main page)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload scripts when they change")
	return cmd
}

// report writes the main page and the asset queue.
func (a *app) report(ctx context.Context, w io.Writer) error {
	if err := a.renderPage(ctx, w); err != nil {
		return err
	}

	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, kind := range []assets.Kind{assets.Script, assets.Style} {
		ordered, err := a.host.Assets.Ordered(kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "\n%ss:\n", title.String(kind.String()))
		if len(ordered) == 0 {
			fmt.Fprintln(tw, "  (none)")
		}
		for _, asset := range ordered {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", asset.Handle, asset.URL(), strings.Join(asset.Deps, ","))
			if kind != assets.Script {
				continue
			}
			inline, err := a.host.Assets.InlineScript(asset.Handle)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimSpace(inline), "\n") {
				if line != "" {
					fmt.Fprintf(tw, "    %s\n", line)
				}
			}
		}
	}
	return tw.Flush()
}

func (a *app) renderPage(ctx context.Context, w io.Writer) error {
	body, err := a.host.Menu.RenderPage(ctx, a.info.Hooks.MenuSlug)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "== %s (%s) ==\n%s\n", a.info.Hooks.MenuTitle, a.pageHook, body)
	return nil
}

// watch re-renders the main page after every script reload until ctx
// is done.
func (a *app) watch(ctx context.Context, dir string, w io.Writer) error {
	if dir == "" {
		return errors.New("--watch needs --scripts")
	}
	watcher, err := script.NewWatcher(a.engine, dir,
		script.WithWatcherLogger(a.log.WithComponent("watcher")),
		script.WithReloadHandler(func(n int, err error) {
			if err != nil {
				a.log.Error("reloading scripts", "dir", dir, "err", err)
				return
			}
			a.log.Info("scripts reloaded", "dir", dir, "count", n)
			if err := a.renderPage(ctx, w); err != nil {
				a.log.Error("rendering page", "err", err)
			}
		}),
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
