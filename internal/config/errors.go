package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Errors returned by configuration operations.
var (
	// ErrInstallation indicates the plugin paths could not be resolved.
	ErrInstallation = errors.New("plugin has not been properly installed")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")
)

// ParseError locates a plugin.toml decoding failure.
type ParseError struct {
	Path   string
	Line   int
	Column int
	// Key is the dotted key being decoded, such as "hooks.prefix", when
	// the decoder knows it.
	Key string
	Err error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc += ":" + strconv.Itoa(e.Line)
		if e.Column > 0 {
			loc += ":" + strconv.Itoa(e.Column)
		}
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: key %s: %v", loc, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
