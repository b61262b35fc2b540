package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultEnvPrefix is the environment variable prefix for overrides.
// HOOKLINE_HOOKS_PREFIX overrides hooks.prefix, HOOKLINE_PLUGIN_NETWORK
// overrides plugin.network and so on.
const DefaultEnvPrefix = "HOOKLINE_"

// Loader reads plugin.toml and applies environment overrides.
type Loader struct {
	prefix  string
	environ func() []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnvPrefix sets the environment variable prefix. It should include
// the trailing underscore.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// WithEnviron replaces os.Environ as the source of overrides.
func WithEnviron(fn func() []string) LoaderOption {
	return func(l *Loader) {
		l.environ = fn
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		prefix:  DefaultEnvPrefix,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path over the defaults, applies environment overrides and
// resolves the derived paths. A missing file is not an error when
// optional is true; the defaults and environment are used instead.
// A relative or empty base_dir is taken relative to the file's directory.
// When the paths cannot be resolved the unresolved info is returned along
// with ErrInstallation so the caller can still report the failure.
func (l *Loader) Load(path string, optional bool) (*Info, error) {
	info := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &info); err != nil {
			return nil, err
		}
		if !filepath.IsAbs(info.Paths.BaseDir) {
			info.Paths.BaseDir = filepath.Join(filepath.Dir(path), info.Paths.BaseDir)
		}
	case errors.Is(err, os.ErrNotExist):
		if !optional {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := l.applyEnv(&info); err != nil {
		return nil, err
	}
	if err := info.Resolve(); err != nil {
		if errors.Is(err, ErrInstallation) {
			return &info, err
		}
		return nil, err
	}
	return &info, nil
}

// Parse decodes TOML bytes over the defaults without touching the
// environment or resolving paths.
func Parse(data []byte) (*Info, error) {
	info := Default()
	if err := decode("<input>", data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func decode(path string, data []byte, info *Info) error {
	if err := toml.Unmarshal(data, info); err != nil {
		pe := &ParseError{Path: path, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
			pe.Key = strings.Join(derr.Key(), ".")
		}
		return pe
	}
	return nil
}

// applyEnv sets fields named by PREFIX_SECTION_KEY variables.
// Unknown sections or keys are ignored.
func (l *Loader) applyEnv(info *Info) error {
	root := reflect.ValueOf(info).Elem()
	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, l.prefix)), "_")
		if !ok {
			continue
		}
		field, ok := fieldByTag(root, section, key)
		if !ok {
			continue
		}
		if err := setField(field, value); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
	}
	return nil
}

func fieldByTag(root reflect.Value, section, key string) (reflect.Value, bool) {
	sec, ok := lookupTag(root, section)
	if !ok || sec.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return lookupTag(sec, key)
}

func lookupTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
