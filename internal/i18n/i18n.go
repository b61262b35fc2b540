// Package i18n translates plugin strings.
//
// A text domain is a YAML file of flat key: translation pairs named
// <domain>-<locale>.yaml, for example plugin-de_DE.yaml. Keys are the
// untranslated strings and may contain printf verbs. Strings without a
// translation are formatted as given.
package i18n

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// ErrBadLocale indicates a locale that is not a valid language tag.
var ErrBadLocale = errors.New("invalid locale")

// Translator formats strings of one text domain in one locale.
type Translator struct {
	domain  string
	tag     language.Tag
	keys    []string
	printer *message.Printer
}

// LoadTextDomain reads the translations of domain for locale from dir.
// A missing file is not an error: the translator passes strings through.
func LoadTextDomain(domain, dir, locale string) (*Translator, error) {
	tag, err := ParseLocale(locale)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, FileName(domain, locale))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newTranslator(domain, tag, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("reading text domain: %w", err)
	}

	var messages map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parsing text domain %s: %w", path, err)
	}
	return newTranslator(domain, tag, messages)
}

// New builds a translator from an in-memory message table.
func New(domain, locale string, messages map[string]string) (*Translator, error) {
	tag, err := ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	return newTranslator(domain, tag, messages)
}

func newTranslator(domain string, tag language.Tag, messages map[string]string) (*Translator, error) {
	b := catalog.NewBuilder(catalog.Fallback(tag))
	keys := make([]string, 0, len(messages))
	for key, msg := range messages {
		if err := b.SetString(tag, key, msg); err != nil {
			return nil, fmt.Errorf("text domain %s: message %q: %w", domain, key, err)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Translator{
		domain:  domain,
		tag:     tag,
		keys:    keys,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}, nil
}

// Nop returns a translator with no translations.
func Nop() *Translator {
	t, _ := newTranslator("", language.Und, nil)
	return t
}

// T translates key and formats it with args.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Domain returns the text domain name.
func (t *Translator) Domain() string { return t.domain }

// Locale returns the language tag.
func (t *Translator) Locale() language.Tag { return t.tag }

// Keys returns the translated keys, sorted.
func (t *Translator) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Has reports whether key has a translation.
func (t *Translator) Has(key string) bool {
	i := sort.SearchStrings(t.keys, key)
	return i < len(t.keys) && t.keys[i] == key
}

// ParseLocale parses a locale such as de_DE or pt-BR. An empty locale is
// the undetermined language.
func ParseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w %q: %v", ErrBadLocale, locale, err)
	}
	return tag, nil
}

// FileName returns the translation file name for domain and locale.
func FileName(domain, locale string) string {
	return domain + "-" + locale + ".yaml"
}
