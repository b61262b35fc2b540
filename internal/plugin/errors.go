package plugin

import "errors"

// Plugin errors.
var (
	// ErrHostTooOld is returned when the host is older than the plugin requires.
	ErrHostTooOld = errors.New("host version is too old")

	// ErrBadVersion is returned when a version string is not semantic.
	ErrBadVersion = errors.New("invalid version")

	// ErrNoStore is returned by settings operations without a settings store.
	ErrNoStore = errors.New("no settings store")

	// ErrInvalidSettings is returned when whole-document settings are not
	// an object.
	ErrInvalidSettings = errors.New("settings must be an object")
)
