package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/hookline/internal/logging"
	"github.com/dshills/hookline/internal/settings"
)

const defaultConfig = "plugin.toml"

// cli holds what the commands share.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	log    *logging.Logger

	newScreen func() (tcell.Screen, error)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	return newCLI(out, errOut).rootCmd()
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{
		v:         viper.New(),
		out:       out,
		errOut:    errOut,
		log:       logging.Nop(),
		newScreen: tcell.NewScreen,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hookline",
		Short: "Host a hook-based plugin from the command line",
		Long: `hookline bootstraps a plugin described by plugin.toml against a
priority-ordered hook registry, runs Lua scripts that hook into it and
fires the admin lifecycle hooks.

Every flag can be set in the environment with the HOOKLINE_ prefix,
for example HOOKLINE_LOG_LEVEL=debug or HOOKLINE_DB=settings.db.
Plugin header fields are overridden the same way:
HOOKLINE_HOOKS_PREFIX overrides hooks.prefix in plugin.toml.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", defaultConfig, "plugin description file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", string(logging.FormatConsole), "log format (console, json)")
	flags.String("db", settings.MemoryPath, "settings database path")
	flags.String("scripts", "", "directory of Lua scripts to load")
	flags.String("manifest", "", "hook manifest (.yaml or .hcl) binding built-in handlers")
	flags.String("host-version", "", "host version checked against requires_host")
	flags.String("locale", "", "locale for translations, e.g. de_DE")
	_ = c.v.BindPFlags(flags)

	c.v.SetEnvPrefix("HOOKLINE")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.runCmd(),
		c.adminCmd(),
		c.hooksCmd(),
		c.settingsCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	level := c.v.GetString("log-level")
	if !logging.ValidLevel(level) {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}
	format := logging.Format(c.v.GetString("log-format"))
	switch format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (must be console or json)", format)
	}

	c.log = logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: c.errOut,
		Format: format,
	})
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "hookline %s\n", version)
			fmt.Fprintf(c.out, "Commit: %s\n", commit)
			fmt.Fprintf(c.out, "Built: %s\n", date)
		},
	}
}
