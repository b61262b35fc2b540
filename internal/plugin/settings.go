package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"

	"github.com/dshills/hookline/internal/settings"
)

// Settings values are JSON: objects decode to map[string]any, arrays to
// []any and numbers to float64.

func (p *Plugin) store() (*settings.Store, error) {
	if p.host.Settings == nil {
		return nil, ErrNoStore
	}
	return p.host.Settings, nil
}

// scope is the network table on network installs and the site table
// otherwise.
func (p *Plugin) scope() settings.Scope {
	if p.info.Plugin.Network {
		return settings.Network
	}
	return settings.Site
}

// GetSetting returns one plugin setting, or the whole settings object
// when key is empty, passed through the options filters. A missing key
// yields def; so does an empty array or object when def is not empty.
func (p *Plugin) GetSetting(ctx context.Context, key string, def any) (any, error) {
	st, err := p.store()
	if err != nil {
		return nil, err
	}
	name := p.info.Hooks.SettingsKey

	if key == "" {
		doc, err := st.Document(ctx, p.scope(), name)
		if err != nil {
			return nil, err
		}
		return p.host.Registry.ApplyFilters(ctx, p.Tag(SuffixOptionsAll), gjson.Parse(doc).Value())
	}

	res, err := st.GetKey(ctx, p.scope(), name, key)
	if err != nil {
		return nil, err
	}
	option := def
	if res.Exists() {
		option = res.Value()
	}
	if isEmptyCollection(option) && !isEmpty(def) {
		option = def
	}
	return p.host.Registry.ApplyFilters(ctx, p.Tag(SuffixOptions+key), option)
}

// UpdateSettings sets one plugin setting, or replaces the whole settings
// object when key is empty.
func (p *Plugin) UpdateSettings(ctx context.Context, key string, value any) error {
	st, err := p.store()
	if err != nil {
		return err
	}
	name := p.info.Hooks.SettingsKey

	if key != "" {
		_, err := st.SetKey(ctx, p.scope(), name, key, value)
		return err
	}
	doc, err := marshalObject(value)
	if err != nil {
		return err
	}
	return st.Put(ctx, p.scope(), name, doc)
}

// GetSiteSetting is GetSetting for one blog of a network. The blog ID is
// passed to the filters as an extra argument.
func (p *Plugin) GetSiteSetting(ctx context.Context, blogID int64, key string, def any) (any, error) {
	st, err := p.store()
	if err != nil {
		return nil, err
	}
	name := p.info.Hooks.SettingsKey
	scope := settings.Blog(blogID)

	if key == "" {
		doc, err := st.Document(ctx, scope, name)
		if err != nil {
			return nil, err
		}
		return p.host.Registry.ApplyFilters(ctx, p.Tag(SuffixSiteSettingsAll), gjson.Parse(doc).Value(), blogID)
	}

	res, err := st.GetKey(ctx, scope, name, key)
	if err != nil {
		return nil, err
	}
	option := def
	if res.Exists() {
		option = res.Value()
	}
	return p.host.Registry.ApplyFilters(ctx, p.Tag(SuffixSiteSettings+key), option, blogID)
}

// UpdateSiteSettings sets one setting of a blog, or replaces its settings
// object when key is empty, then fires
// <prefix>_site_settings_updated_<key> with (value, old, blogID, reason)
// and <prefix>_site_settings_updated with (key, value, old, blogID, reason).
// With an empty key the first tag ends in an underscore.
func (p *Plugin) UpdateSiteSettings(ctx context.Context, blogID int64, key string, value, reason any) error {
	st, err := p.store()
	if err != nil {
		return err
	}
	name := p.info.Hooks.SettingsKey
	scope := settings.Blog(blogID)

	var old any
	if key != "" {
		prev, err := st.SetKey(ctx, scope, name, key, value)
		if err != nil {
			return err
		}
		old = prev.Value()
	} else {
		doc, err := marshalObject(value)
		if err != nil {
			return err
		}
		prev, err := st.Document(ctx, scope, name)
		if err != nil {
			return err
		}
		old = gjson.Parse(prev).Value()
		if err := st.Put(ctx, scope, name, doc); err != nil {
			return err
		}
	}

	reg := p.host.Registry
	if err := reg.DoAction(ctx, p.Tag(SuffixSiteSettingsUpdated+"_"+key), value, old, blogID, reason); err != nil {
		return err
	}
	return reg.DoAction(ctx, p.Tag(SuffixSiteSettingsUpdated), key, value, old, blogID, reason)
}

func marshalObject(value any) (string, error) {
	raw, ok := value.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encoding settings: %w", err)
		}
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return "", ErrInvalidSettings
	}
	return string(raw), nil
}

func isEmptyCollection(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// isEmpty reports whether v is nil, false, zero, "", "0" or an empty
// collection.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == "" || s == "0"
	}
	if isEmptyCollection(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return false
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
