package assets

import (
	"errors"
	"strings"
	"testing"
)

func handles(list []Asset) string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Handle
	}
	return strings.Join(names, ",")
}

func TestKind_String(t *testing.T) {
	if Script.String() != "script" || Style.String() != "style" || Kind(9).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}

func TestAsset_URL(t *testing.T) {
	tests := []struct {
		asset    Asset
		expected string
	}{
		{Asset{Src: "a.js"}, "a.js"},
		{Asset{Src: "a.js", Version: "1.0"}, "a.js?ver=1.0"},
		{Asset{Src: "a.js?x=1", Version: "1 0"}, "a.js?x=1&ver=1+0"},
		{Asset{Version: "1.0"}, ""},
	}
	for _, tt := range tests {
		if got := tt.asset.URL(); got != tt.expected {
			t.Errorf("URL() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestQueue_Enqueue(t *testing.T) {
	q := NewQueue()

	q.EnqueueScript(Asset{Handle: "hooks", Src: "hooks.js"})
	q.EnqueueScript(Asset{Handle: "hooks", Src: "other.js"})

	if !q.IsEnqueued(Script, "hooks") {
		t.Error("expected hooks to be enqueued")
	}
	if q.IsEnqueued(Style, "hooks") {
		t.Error("scripts and styles must not share handles")
	}
	a, _ := q.Get(Script, "hooks")
	if a.Src != "hooks.js" {
		t.Errorf("Src = %q, first registration must win", a.Src)
	}

	list, err := q.Ordered(Script)
	if err != nil {
		t.Fatalf("Ordered: %v", err)
	}
	if handles(list) != "hooks" {
		t.Errorf("Ordered = %s", handles(list))
	}
}

func TestQueue_DependencyOrder(t *testing.T) {
	q := NewQueue()

	q.Register(Script, Asset{Handle: "lib", Src: "lib.js"})
	q.EnqueueScript(Asset{Handle: "app", Src: "app.js", Deps: []string{"hooks", "lib", "jquery"}})
	q.EnqueueScript(Asset{Handle: "hooks", Src: "hooks.js"})
	q.EnqueueScript(Asset{Handle: "extra", Src: "extra.js"})

	list, err := q.Ordered(Script)
	if err != nil {
		t.Fatalf("Ordered: %v", err)
	}
	// lib is pulled in as a dependency; jquery is unknown and skipped.
	if got := handles(list); got != "hooks,lib,app,extra" {
		t.Errorf("Ordered = %s, expected hooks,lib,app,extra", got)
	}
	if q.IsEnqueued(Script, "lib") {
		t.Error("dependencies are output but not enqueued")
	}
}

func TestQueue_Cycle(t *testing.T) {
	q := NewQueue()
	q.EnqueueStyle(Asset{Handle: "a", Src: "a.css", Deps: []string{"b"}})
	q.EnqueueStyle(Asset{Handle: "b", Src: "b.css", Deps: []string{"c"}})
	q.EnqueueStyle(Asset{Handle: "c", Src: "c.css", Deps: []string{"a"}})

	_, err := q.Ordered(Style)
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> c -> a") {
		t.Errorf("unexpected cycle description %q", err)
	}
}

func TestQueue_Dequeue(t *testing.T) {
	q := NewQueue()
	q.EnqueueStyle(Asset{Handle: "main", Src: "main.css"})
	q.EnqueueStyle(Asset{Handle: "print", Src: "print.css", Media: "print"})

	q.Dequeue(Style, "main")
	q.Dequeue(Style, "missing")

	if q.IsEnqueued(Style, "main") {
		t.Error("expected main to be dequeued")
	}
	if !q.IsRegistered(Style, "main") {
		t.Error("registration must survive dequeue")
	}
	list, _ := q.Ordered(Style)
	if handles(list) != "print" || list[0].Media != "print" {
		t.Errorf("unexpected styles %+v", list)
	}
}

func TestQueue_Localize(t *testing.T) {
	q := NewQueue()

	if err := q.Localize("app", "appData", nil); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}

	q.EnqueueScript(Asset{Handle: "app", Src: "app.js"})
	if err := q.Localize("app", "plugin-js-object", map[string]string{"ajaxurl": "/admin-ajax"}); err != nil {
		t.Fatalf("Localize: %v", err)
	}

	if n := len(q.Localizations("app")); n != 1 {
		t.Fatalf("Localizations = %d, expected 1", n)
	}
	inline, err := q.InlineScript("app")
	if err != nil {
		t.Fatalf("InlineScript: %v", err)
	}
	if inline != "var plugin_js_object = {\"ajaxurl\":\"/admin-ajax\"};\n" {
		t.Errorf("InlineScript = %q", inline)
	}
}

func TestQueue_InlineScriptError(t *testing.T) {
	q := NewQueue()
	q.EnqueueScript(Asset{Handle: "app", Src: "app.js"})
	_ = q.Localize("app", "bad", make(chan int))

	if _, err := q.InlineScript("app"); err == nil {
		t.Error("expected marshal error")
	}
}
