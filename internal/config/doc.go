// Package config loads the plugin description from plugin.toml.
//
// The file carries three tables: [plugin] with the descriptive header,
// [paths] locating the plugin on disk and on the web, and [hooks] with the
// prefix and slugs the plugin uses when registering hooks and admin pages.
// Every value has a default, so an empty file is valid.
//
// Environment variables override file values. The variable name is the
// prefix followed by the table and key, upper-cased:
//
//	HOOKLINE_HOOKS_PREFIX=myplugin
//	HOOKLINE_PATHS_BASE_URL=https://example.test/wp-content/plugins/myplugin
//	HOOKLINE_PLUGIN_NETWORK=true
//
// After loading, Resolve derives the include, assets and languages
// directories and URLs. A plugin without a base directory is reported as
// ErrInstallation.
package config
