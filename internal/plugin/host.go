package plugin

import (
	"io"

	"github.com/dshills/hookline/internal/admin"
	"github.com/dshills/hookline/internal/assets"
	"github.com/dshills/hookline/internal/binding"
	"github.com/dshills/hookline/internal/hook"
	"github.com/dshills/hookline/internal/i18n"
	"github.com/dshills/hookline/internal/logging"
	"github.com/dshills/hookline/internal/settings"
)

// Host is the environment a plugin runs in: the hook registry and the
// services the plugin talks to.
type Host struct {
	Registry *hook.Registry
	Binder   *binding.Binder
	Menu     *admin.Menu
	Assets   *assets.Queue
	// Settings is optional; settings operations fail with ErrNoStore
	// without it.
	Settings *settings.Store
	Logger   *logging.Logger
	// Translator translates bootstrap messages shown before the plugin's
	// own text domain is loaded.
	Translator *i18n.Translator

	// Version is the host version checked against the plugin's
	// requires_host. Empty skips the check.
	Version string
	// Locale selects the translation file of the text domain.
	Locale string
	// Notices receives admin_notices and shutdown output.
	Notices io.Writer
	// CLI, when set, receives the version warning directly instead of an
	// admin notice.
	CLI io.Writer
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithSettings sets the settings store.
func WithSettings(s *settings.Store) HostOption {
	return func(h *Host) {
		h.Settings = s
	}
}

// WithLogger sets the host logger.
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		h.Logger = l
	}
}

// WithTranslator sets the translator for bootstrap messages.
func WithTranslator(t *i18n.Translator) HostOption {
	return func(h *Host) {
		h.Translator = t
	}
}

// WithVersion sets the host version.
func WithVersion(v string) HostOption {
	return func(h *Host) {
		h.Version = v
	}
}

// WithLocale sets the locale.
func WithLocale(locale string) HostOption {
	return func(h *Host) {
		h.Locale = locale
	}
}

// WithNotices sets where notices are written.
func WithNotices(w io.Writer) HostOption {
	return func(h *Host) {
		h.Notices = w
	}
}

// WithCLI makes version failures warn on w.
func WithCLI(w io.Writer) HostOption {
	return func(h *Host) {
		h.CLI = w
	}
}

// NewHost creates a host around reg with fresh services.
func NewHost(reg *hook.Registry, opts ...HostOption) *Host {
	h := &Host{
		Registry:   reg,
		Binder:     binding.NewBinder(reg),
		Menu:       admin.NewMenu(),
		Assets:     assets.NewQueue(),
		Logger:     logging.Nop(),
		Translator: i18n.Nop(),
		Notices:    io.Discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
