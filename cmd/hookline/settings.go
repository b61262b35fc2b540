package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

func (c *cli) settingsCmd() *cobra.Command {
	var blog int64
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write plugin settings",
		Long: `settings reads and writes the plugin's settings object through the
options filters. Network plugins use the network table. With --blog the
settings of one blog are used instead.`,
	}
	cmd.PersistentFlags().Int64Var(&blog, "blog", 0, "blog ID for per-blog settings")

	get := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a setting, or all settings without a key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			var key string
			if len(args) == 1 {
				key = args[0]
			}
			var value any
			if blog != 0 {
				value, err = a.plugin.GetSiteSetting(ctx, blog, key, nil)
			} else {
				value, err = a.plugin.GetSetting(ctx, key, nil)
			}
			if err != nil {
				return err
			}
			data, err := json.Marshal(value)
			if err != nil {
				return err
			}
			_, err = c.out.Write(pretty.Pretty(data))
			return err
		},
	}

	var reason string
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting; JSON values are stored as JSON, anything else as a string",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.update(cmd, blog, args[0], parseValue(args[1]), reason)
		},
	}
	set.Flags().StringVar(&reason, "reason", "", "reason passed to the site settings updated actions")

	replace := &cobra.Command{
		Use:   "replace <json-object>",
		Short: "Replace the whole settings object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gjson.Valid(args[0]) {
				return fmt.Errorf("invalid JSON: %s", args[0])
			}
			return c.update(cmd, blog, "", json.RawMessage(args[0]), reason)
		},
	}
	replace.Flags().StringVar(&reason, "reason", "", "reason passed to the site settings updated actions")

	cmd.AddCommand(get, set, replace)
	return cmd
}

func (c *cli) update(cmd *cobra.Command, blog int64, key string, value any, reason string) error {
	ctx := cmd.Context()
	a, err := c.open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if blog != 0 {
		var r any
		if reason != "" {
			r = reason
		}
		return a.plugin.UpdateSiteSettings(ctx, blog, key, value, r)
	}
	return a.plugin.UpdateSettings(ctx, key, value)
}

// parseValue keeps valid JSON as raw JSON and treats anything else as a
// string.
func parseValue(s string) any {
	if gjson.Valid(s) {
		return json.RawMessage(s)
	}
	return s
}
