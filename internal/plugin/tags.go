package plugin

// Host tags the plugin hooks into or fires.
const (
	TagAdminNotices        = "admin_notices"
	TagShutdown            = "shutdown"
	TagPluginsLoaded       = "plugins_loaded"
	TagAdminMenu           = "admin_menu"
	TagAdminEnqueueScripts = "admin_enqueue_scripts"
)

// Suffixes of the plugin's own tags. The full tag is the hook prefix, an
// underscore and the suffix; see config.Info.Tag.
const (
	SuffixSubmenu             = "submenu"
	SuffixPageContent         = "page_content"
	SuffixLoadAdminScripts    = "load_admin_scripts"
	SuffixEnqueueScripts      = "enqueue_scripts"
	SuffixEnqueueStyle        = "enqueue_style"
	SuffixOptionsAll          = "options_all"
	SuffixOptions             = "options_"
	SuffixSiteSettingsAll     = "site_settings_all"
	SuffixSiteSettings        = "site_settings_"
	SuffixSiteSettingsUpdated = "site_settings_updated"
)

// Handles and paths of the assets the admin page loads.
const (
	HooksScriptHandle = "hooks"
	HooksScriptPath   = "js/hooks.js"
	MainScriptPath    = "js/plugin.js"
	MainStylePath     = "css/plugin.css"
	MenuIconPath      = "images/admin-menu-icon.svg"
	MenuCapability    = "manage_options"
	MainPageContent   = "Hello World!"
)
