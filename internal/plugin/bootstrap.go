package plugin

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/dshills/hookline/internal/config"
	"github.com/dshills/hookline/internal/hook"
)

const (
	versionFailText      = "%s plugin error: Your host version is too old to run this plugin. You must be running %s or higher."
	installationFailText = "%s has not been properly installed. Please remove the plugin and try reinstalling."
)

// Bootstrap checks that the plugin can run in host and hooks it up.
//
// When the host is older than info.Plugin.RequiresHost, a notice is hooked
// on admin_notices (or written to host.CLI) and ErrHostTooOld returned.
// When the plugin paths are unresolved, a notice is hooked on shutdown
// and config.ErrInstallation returned. Otherwise the text domain loader
// is hooked on plugins_loaded and the plugin's bindings are registered.
func Bootstrap(host *Host, info *config.Info) (*Plugin, error) {
	reg := host.Registry
	log := host.Logger.WithComponent("plugin")

	ok, err := hostSatisfies(host.Version, info.Plugin.RequiresHost)
	if err != nil {
		return nil, err
	}
	if !ok {
		text := host.Translator.T(versionFailText, info.Plugin.Name, info.Plugin.RequiresHost)
		if host.CLI != nil {
			fmt.Fprintf(host.CLI, "Warning: %s\n", text)
		} else {
			reg.AddAction(TagAdminNotices, noticeAction(host.Notices,
				fmt.Sprintf(`<div class="error"><p>%s</p></div>`, html.EscapeString(text))))
		}
		log.Warn("host too old", "host", host.Version, "requires", info.Plugin.RequiresHost)
		return nil, fmt.Errorf("%w: %s requires %s", ErrHostTooOld, host.Version, info.Plugin.RequiresHost)
	}

	if info.BaseName == "" {
		// Not translated: the text domain cannot be found without paths.
		text := html.EscapeString(fmt.Sprintf(installationFailText, info.Plugin.Name))
		reg.AddAction(TagShutdown, noticeAction(host.Notices,
			fmt.Sprintf(`<div class="error"><p>%s</p></div>`, text)))
		log.Error("plugin not installed", "name", info.Plugin.Name)
		return nil, config.ErrInstallation
	}

	p := newPlugin(host, info)
	reg.AddAction(TagPluginsLoaded, p.loadTextDomain)
	if _, err := host.Binder.Bind(p); err != nil {
		p.setState(StateError)
		return nil, err
	}
	p.setState(StateBound)

	log.Info("plugin bootstrapped", "name", info.Plugin.Name, "version", info.Plugin.Version, "base", info.BaseName)
	return p, nil
}

// hostSatisfies reports whether version meets required. An empty
// version or requirement always satisfies.
func hostSatisfies(version, required string) (bool, error) {
	if version == "" || required == "" {
		return true, nil
	}
	v, r := canonical(version), canonical(required)
	if !semver.IsValid(v) {
		return false, fmt.Errorf("%w: host %q", ErrBadVersion, version)
	}
	if !semver.IsValid(r) {
		return false, fmt.Errorf("%w: requires_host %q", ErrBadVersion, required)
	}
	return semver.Compare(v, r) >= 0, nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func noticeAction(w io.Writer, message string) *hook.ActionFunc {
	return hook.NewActionFunc(func(ctx context.Context, args ...any) error {
		_, err := io.WriteString(w, message+"\n")
		return err
	})
}
