package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/hookline/internal/admin"
)

func (c *cli) adminCmd() *cobra.Command {
	var slug string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Show an admin page in the terminal",
		Long: `admin bootstraps the plugin like run does and shows an admin page full
screen until a key is pressed. Host version failures are shown as
admin notices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.boot(ctx, ""); err != nil {
				return err
			}
			if slug == "" {
				slug = a.info.Hooks.MenuSlug
			}
			page, ok := a.host.Menu.Page(slug)
			if !ok {
				return fmt.Errorf("%w: %q", admin.ErrNoPage, slug)
			}

			screen, err := c.newScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()
			return admin.Run(ctx, screen, page)
		},
	}
	cmd.Flags().StringVar(&slug, "page", "", "slug of the page to show (default: the main page)")
	return cmd
}
