package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sectionform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

var templates = fstest.MapFS{
	"hello.tpl":      {Data: []byte(`Hello {{ name }}`)},
	"use-global.tpl": {Data: []byte(`env={{ settings.env }}`)},
	"use-filter.tpl": {Data: []byte(`{{ name|shout }}`)},
	"trim.tpl":       {Data: []byte(`[{{ value|trim }}]`)},
	"section.tpl":    {Data: []byte(`{{ section.type }}:{{ section.fields|length }}`)},
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada" || written != result {
		t.Fatalf("unexpected output result=%q written=%q", result, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func TestGoTemplateEngine_DefaultFiltersAndStrings(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("trim", map[string]any{"value": "  padded "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "[padded]" {
		t.Fatalf("unexpected output %q", result)
	}

	inline, err := engine.Render("{{ greeting }}, {{ name }}", map[string]any{"greeting": "Hi", "name": "Lin"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if inline != "Hi, Lin" {
		t.Fatalf("unexpected inline output %q", inline)
	}
}

func TestGoTemplateEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)
	type section struct {
		Type   string   `json:"type"`
		Fields []string `json:"fields"`
	}

	result, err := engine.RenderTemplate("section", map[string]any{
		"section": section{Type: "hero", Fields: []string{"title", "subtitle"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "hero:2" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RejectsNonFunctionHelpers(t *testing.T) {
	_, err := gotemplate.New(
		gotemplate.WithFS(templates),
		gotemplate.WithTemplateFunc(map[string]any{"answer": 42}),
	)
	if err == nil {
		t.Fatalf("expected non-function helper to be rejected")
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templates))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
