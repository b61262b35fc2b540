// Package plugin is the plugin scaffold: it checks that a plugin can run
// in its host, binds the plugin's callbacks to the host hooks and gives
// the plugin access to its settings.
//
// Bootstrap order:
//
//	host := plugin.NewHost(reg, plugin.WithSettings(store))
//	p, err := plugin.Bootstrap(host, info)
//	reg.DoAction(ctx, plugin.TagPluginsLoaded)
//	reg.DoAction(ctx, plugin.TagAdminMenu)
//	reg.DoAction(ctx, plugin.TagAdminEnqueueScripts, pageHook)
//
// The plugin's own hooks are named <prefix>_<suffix> where the prefix is
// the hooks.prefix of plugin.toml; see the Suffix constants.
package plugin
