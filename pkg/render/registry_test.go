package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/render"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, *form.Form, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "tui"})
	if err := reg.Register(stubRenderer{name: "html"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if diff := cmp.Diff([]string{"html", "tui"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("html") || reg.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}

	got, err := reg.Get("html")
	if err != nil || got.Name() != "html" {
		t.Fatalf("get html: %v %v", got, err)
	}
	if _, err := reg.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := render.NewRegistry()
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil renderer to be rejected")
	}
	if err := reg.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	reg.MustRegister(stubRenderer{name: "html"})
	if err := reg.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate to be rejected")
	}
}

func TestRegistry_NamesIgnoreCase(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "HTML"})

	if !reg.Has(" html ") {
		t.Fatalf("expected case-insensitive lookup")
	}
	if diff := cmp.Diff([]string{"html"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if err := reg.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected names differing only in case to collide")
	}
}
