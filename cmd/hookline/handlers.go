package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/hookline/internal/binding"
	"github.com/dshills/hookline/internal/hook"
	"github.com/dshills/hookline/internal/logging"
)

// builtinHandlers names the handlers a hook manifest can bind.
//
//	print   action  writes the tag and its arguments to out
//	log     action  logs the tag and its arguments
//	upper   filter  upper-cases string values
//	trim    filter  trims space around string values
//	enable  filter  returns true
//	disable filter  returns false
func builtinHandlers(out io.Writer, log *logging.Logger) *binding.Table {
	t := binding.NewTable()
	t.MustAddAction("print", hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		_, err := fmt.Fprintf(out, "%s %s\n", hook.CurrentTag(ctx), formatArgs(args))
		return err
	}))
	t.MustAddAction("log", hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		log.Info("action", "tag", hook.CurrentTag(ctx), "args", formatArgs(args))
		return nil
	}))
	t.MustAddFilter("upper", stringFilter(strings.ToUpper))
	t.MustAddFilter("trim", stringFilter(strings.TrimSpace))
	t.MustAddFilter("enable", constFilter(true))
	t.MustAddFilter("disable", constFilter(false))
	return t
}

func stringFilter(fn func(string) string) *hook.FilterFunc {
	return hook.NewFilterFunc(func(ctx context.Context, value any, args ...any) (any, error) {
		if s, ok := value.(string); ok {
			return fn(s), nil
		}
		return value, nil
	})
}

func constFilter(v any) *hook.FilterFunc {
	return hook.NewFilterFunc(func(ctx context.Context, value any, args ...any) (any, error) {
		return v, nil
	})
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
