package config

import (
	"path/filepath"
	"strings"
)

// Plugin locations.
const (
	LocationPlugins   = "plugins"
	LocationMUPlugins = "mu-plugins"
)

// Header is the descriptive plugin header.
type Header struct {
	Name         string `toml:"name"`
	PluginURI    string `toml:"plugin_uri"`
	Version      string `toml:"version"`
	Description  string `toml:"description"`
	Author       string `toml:"author"`
	AuthorURI    string `toml:"author_uri"`
	TextDomain   string `toml:"text_domain"`
	DomainPath   string `toml:"domain_path"`
	Network      bool   `toml:"network"`
	RequiresHost string `toml:"requires_host"`
}

// Paths locates the plugin on disk and on the web.
type Paths struct {
	BaseDir     string `toml:"base_dir"`
	BaseURL     string `toml:"base_url"`
	Location    string `toml:"location"`
	LibraryPath string `toml:"library_path"`
	AssetsPath  string `toml:"assets_path"`
	APIVersion  string `toml:"api_version"`
}

// Hooks holds the names the plugin uses to talk to the hook registry and
// the admin screens.
type Hooks struct {
	Prefix       string `toml:"prefix"`
	SettingsKey  string `toml:"settings_key"`
	MenuSlug     string `toml:"menu_slug"`
	MenuTitle    string `toml:"menu_title"`
	PageSlug     string `toml:"page_slug"`
	ScriptSlug   string `toml:"script_slug"`
	ScriptObject string `toml:"script_object"`
	StyleSlug    string `toml:"style_slug"`
}

// Info is the complete plugin description. The derived directory and URL
// fields are filled by Resolve.
type Info struct {
	Plugin Header `toml:"plugin"`
	Paths  Paths  `toml:"paths"`
	Hooks  Hooks  `toml:"hooks"`

	BaseName     string `toml:"-"`
	IncludeDir   string `toml:"-"`
	IncludeURL   string `toml:"-"`
	AssetsDir    string `toml:"-"`
	AssetsURL    string `toml:"-"`
	LanguagesDir string `toml:"-"`
	LanguagesURL string `toml:"-"`
}

// Default returns an Info with the scaffold defaults.
func Default() Info {
	return Info{
		Plugin: Header{
			Name:       "Plugin",
			Version:    "0.1.0",
			TextDomain: "plugin",
			DomainPath: "/languages",
		},
		Paths: Paths{
			Location:    LocationPlugins,
			LibraryPath: "lib",
			AssetsPath:  "assets",
			APIVersion:  "1",
		},
		Hooks: Hooks{
			Prefix:       "plugin_hook_prefix",
			SettingsKey:  "plugin-settings-key",
			MenuSlug:     "plugin_menu_slug",
			MenuTitle:    "PluginMenu",
			PageSlug:     "plugin-page-slug",
			ScriptSlug:   "plugin-js-slug",
			ScriptObject: "plugin-js-object",
			StyleSlug:    "plugin-css-slug",
		},
	}
}

// Resolve derives the plugin directories and URLs from the base paths.
// It returns ErrInstallation when the base directory is missing or the
// location is not recognised.
func (i *Info) Resolve() error {
	if i.Paths.BaseDir == "" {
		return ErrInstallation
	}
	switch i.Paths.Location {
	case "":
		i.Paths.Location = LocationPlugins
	case LocationPlugins, LocationMUPlugins:
	default:
		return ErrInstallation
	}

	base, err := filepath.Abs(i.Paths.BaseDir)
	if err != nil {
		return err
	}
	i.Paths.BaseDir = base
	i.BaseName = filepath.Base(base)
	if i.BaseName == "." || i.BaseName == string(filepath.Separator) {
		i.BaseName = ""
		return ErrInstallation
	}

	domainPath := strings.Trim(i.Plugin.DomainPath, "/")
	i.IncludeDir = dirWithSep(base, i.Paths.LibraryPath)
	i.AssetsDir = dirWithSep(base, i.Paths.AssetsPath)
	i.LanguagesDir = dirWithSep(base, domainPath)

	baseURL := i.Paths.BaseURL
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	i.Paths.BaseURL = baseURL
	i.IncludeURL = urlWithSlash(baseURL, i.Paths.LibraryPath)
	i.AssetsURL = urlWithSlash(baseURL, i.Paths.AssetsPath)
	i.LanguagesURL = urlWithSlash(baseURL, domainPath)
	return nil
}

// Tag builds a hook name under the plugin's prefix, e.g. Tag("submenu")
// returns "<prefix>_submenu".
func (i *Info) Tag(suffix string) string {
	return i.Hooks.Prefix + "_" + suffix
}

func dirWithSep(base, rel string) string {
	return filepath.Join(base, rel) + string(filepath.Separator)
}

func urlWithSlash(base, rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return base
	}
	return base + rel + "/"
}
