package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookline/internal/config"
	"github.com/dshills/hookline/internal/plugin"
)

const pluginTOML = `
[plugin]
name = "Demo"
version = "1.2.0"

[hooks]
prefix = "demo"
page_slug = "plugin_menu_slug"
`

// writePlugin creates a plugin directory holding plugin.toml and
// returns the file path.
func writePlugin(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "plugin.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hookline dev")
	assert.Contains(t, out, "Commit: unknown")
}

func TestRun(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	out, _, err := execute(t, "run", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "== PluginMenu (toplevel_page_plugin_menu_slug) ==\nHello World!\n")
	assert.Contains(t, out, "Scripts:")
	assert.Contains(t, out, "Styles:")
	assert.Contains(t, out, "js/hooks.js?ver=1.2.0")
	assert.Contains(t, out, "plugin-js-slug")
	assert.Contains(t, out, "jquery,backbone,hooks")
	assert.Contains(t, out, "var plugin_js_object = {};")
	assert.Contains(t, out, "css/plugin.css?ver=1.2.0")
}

func TestRun_ForeignPage(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	out, _, err := execute(t, "run", "--config", cfg, "--page", "edit.php")
	require.NoError(t, err)
	assert.Contains(t, out, "== PluginMenu (edit.php) ==")
	assert.NotContains(t, out, "plugin-js-slug")
	assert.Contains(t, out, "(none)")
}

func TestRun_Scripts(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	scripts := t.TempDir()
	writeFile(t, scripts, "10-page.lua", `
hooks.add_filter("demo_page_content", function(v)
  return v .. " from Lua"
end)
`)
	writeFile(t, scripts, "20-submenu.lua", `
hooks.add_action("demo_submenu", function(slug)
  print("submenu for " .. slug)
end)
`)

	out, _, err := execute(t, "run", "--config", cfg, "--scripts", scripts, "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello World! from Lua")
}

func TestRun_ScriptError(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	scripts := t.TempDir()
	writeFile(t, scripts, "bad.lua", `error("broken")`)

	_, _, err := execute(t, "run", "--config", cfg, "--scripts", scripts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRun_Manifest(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	manifest := writeFile(t, t.TempDir(), "hooks.yaml", `
actions:
  - tag: demo_submenu
    handler: print
filters:
  - tag: demo_page_content
    handler: upper
    priority: 20
`)

	out, _, err := execute(t, "run", "--config", cfg, "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "demo_submenu [plugin_menu_slug]")
	assert.Contains(t, out, "HELLO WORLD!")
}

func TestRun_ManifestHCL(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	manifest := writeFile(t, t.TempDir(), "hooks.hcl", `
filter "demo_load_admin_scripts" {
  handler = "enable"
}
`)

	out, _, err := execute(t, "run", "--config", cfg, "--manifest", manifest, "--page", "edit.php")
	require.NoError(t, err)
	assert.Contains(t, out, "plugin-js-slug")
}

func TestRun_ManifestUnknownHandler(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	manifest := writeFile(t, t.TempDir(), "hooks.yaml", "actions:\n  - tag: init\n    handler: missing\n")

	_, _, err := execute(t, "run", "--config", cfg, "--manifest", manifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRun_WatchNeedsScripts(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	_, _, err := execute(t, "run", "--config", cfg, "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--scripts")
}

func TestRun_HostTooOld(t *testing.T) {
	cfg := writePlugin(t, strings.Replace(pluginTOML, `version = "1.2.0"`, "version = \"1.2.0\"\nrequires_host = \"6.0\"", 1))

	_, errOut, err := execute(t, "run", "--config", cfg, "--host-version", "5.8")
	require.ErrorIs(t, err, plugin.ErrHostTooOld)
	assert.Contains(t, errOut, "Warning: Demo plugin error:")
}

func TestRun_NotInstalled(t *testing.T) {
	cfg := writePlugin(t, pluginTOML+"\n[paths]\nlocation = \"themes\"\n")

	out, _, err := execute(t, "run", "--config", cfg)
	require.ErrorIs(t, err, config.ErrInstallation)
	assert.Contains(t, out, "Demo has not been properly installed.")
}

func TestRun_MissingConfig(t *testing.T) {
	_, _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestRun_EnvironmentOverrides(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	t.Setenv("HOOKLINE_HOOKS_MENU_TITLE", "EnvMenu")
	t.Setenv("HOOKLINE_CONFIG", cfg)

	out, _, err := execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "== EnvMenu (")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	t.Setenv("HOOKLINE_LOG_FORMAT", "xml")
	_, _, err = execute(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestHooks(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	out, _, err := execute(t, "hooks", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "plugins_loaded")
	assert.Contains(t, out, "admin_menu")
	assert.Contains(t, out, "admin_enqueue_scripts")
	assert.Contains(t, out, "*hook.ActionFunc")
}

func TestHooks_Scripts(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	scripts := t.TempDir()
	writeFile(t, scripts, "a.lua", `hooks.add_filter("demo_options_color", function(v) return v end, 5)`)

	out, _, err := execute(t, "hooks", "--config", cfg, "--scripts", scripts, "--boot")
	require.NoError(t, err)
	assert.Contains(t, out, "demo_options_color")
	assert.Contains(t, out, "*script.luaHandler")
}

func TestSettings(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	db := filepath.Join(t.TempDir(), "settings.db")

	_, _, err := execute(t, "settings", "set", "color", "red", "--config", cfg, "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "settings", "set", "sizes", "[1,2]", "--config", cfg, "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "settings", "get", "color", "--config", cfg, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "\"red\"", strings.TrimSpace(out))

	out, _, err = execute(t, "settings", "get", "--config", cfg, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"color": "red"`)
	assert.Contains(t, out, `"sizes"`)

	_, _, err = execute(t, "settings", "replace", `{"only":true}`, "--config", cfg, "--db", db)
	require.NoError(t, err)
	out, _, err = execute(t, "settings", "get", "--config", cfg, "--db", db)
	require.NoError(t, err)
	assert.NotContains(t, out, "color")
	assert.Contains(t, out, `"only": true`)
}

func TestSettings_Blog(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	db := filepath.Join(t.TempDir(), "settings.db")

	_, _, err := execute(t, "settings", "set", "color", "teal", "--blog", "2", "--reason", "test", "--config", cfg, "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "settings", "get", "color", "--blog", "2", "--config", cfg, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "\"teal\"", strings.TrimSpace(out))

	out, _, err = execute(t, "settings", "get", "color", "--config", cfg, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestSettings_ReplaceRejectsNonObject(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	_, _, err := execute(t, "settings", "replace", "[1]", "--config", cfg)
	require.ErrorIs(t, err, plugin.ErrInvalidSettings)

	_, _, err = execute(t, "settings", "replace", "{", "--config", cfg)
	require.Error(t, err)
}

// testScreen is a simulation screen that presses a key once shown and
// keeps the title row when finalized.
type testScreen struct {
	tcell.SimulationScreen
	title string
}

func (s *testScreen) Init() error {
	if err := s.SimulationScreen.Init(); err != nil {
		return err
	}
	s.SetSize(40, 10)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	return nil
}

func (s *testScreen) Fini() {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := s.GetContent(x, 0) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(mainc)
	}
	s.title = b.String()
	s.SimulationScreen.Fini()
}

func TestAdmin(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)
	screen := &testScreen{SimulationScreen: tcell.NewSimulationScreen("UTF-8")}

	var out, errOut bytes.Buffer
	c := newCLI(&out, &errOut)
	c.newScreen = func() (tcell.Screen, error) { return screen, nil }
	root := c.rootCmd()
	root.SetArgs([]string{"admin", "--config", cfg})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, screen.title, "PluginMenu")
}

func TestAdmin_UnknownPage(t *testing.T) {
	cfg := writePlugin(t, pluginTOML)

	_, _, err := execute(t, "admin", "--config", cfg, "--page", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page not found")
}
