package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/hookline/internal/hook"
)

func (c *cli) hooksCmd() *cobra.Command {
	var boot bool
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "List the registered hooks",
		Long: `hooks bootstraps the plugin, loads scripts and manifest, then lists every
registration by kind and tag in dispatch order. With --boot the admin
lifecycle hooks are fired first so registrations made by them show up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if boot {
				if err := a.boot(ctx, ""); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tTAG\tPRIORITY\tARGS\tHANDLER\tID")
			for _, kind := range []hook.Kind{hook.KindAction, hook.KindFilter} {
				for _, tag := range a.reg.Tags(kind) {
					for _, r := range a.reg.Registrations(kind, tag) {
						accepted := "all"
						if r.AcceptedArgs != hook.AllArgs {
							accepted = fmt.Sprint(r.AcceptedArgs)
						}
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%T\t%s\n", kind, tag, r.Priority, accepted, r.Handler(), r.ID)
					}
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&boot, "boot", false, "fire plugins_loaded, admin_menu and admin_enqueue_scripts first")
	return cmd
}
