package uischema

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

func mustStore(t *testing.T, raw string) *Store {
	t.Helper()
	store, err := LoadFS(fstest.MapFS{"overlay.yaml": {Data: []byte(raw)}})
	if err != nil {
		t.Fatalf("load overlay: %v", err)
	}
	return store
}

func TestDecorator_AppliesHintsAndMetadata(t *testing.T) {
	store := mustStore(t, `
contracts:
  hero:
    label: Big banner
    icon: '<svg viewBox="0 0 24 24"><script>x</script><path d="M0 0h24v24H0z"/></svg>'
    order: [showScrollIndicator, title]
    fields:
      cta.link: {widget: link, placeholder: /contact}
      heroImages: {bucket: hero}
      subtitle: {description: Shown under the title}
`)
	src := contracts.Definition{TypeID: "hero", Schema: testsupport.HeroDef(), Metadata: contracts.Metadata{Label: "Hero", Category: "layout"}}

	got, err := NewDecorator(store).Decorate(src)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if got.Metadata.Label != "Big banner" || got.Metadata.Category != "layout" {
		t.Fatalf("unexpected metadata: %+v", got.Metadata)
	}
	if strings.Contains(got.Metadata.Icon, "script") || !strings.Contains(got.Metadata.Icon, "<path") {
		t.Fatalf("expected sanitised icon, got %q", got.Metadata.Icon)
	}

	var names []string
	for _, field := range got.Schema.Fields {
		names = append(names, field.Name)
	}
	wantOrder := []string{"showScrollIndicator", "title", "subtitle", "description", "backgroundImage", "heroImages", "cta", "secondaryCta"}
	if diff := cmp.Diff(wantOrder, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	node := schema.MustCompile(got.Schema)
	link, ok := node.Lookup(schema.MustParsePath("cta.link"))
	if !ok {
		t.Fatalf("cta.link missing")
	}
	if diff := cmp.Diff(schema.Hint{Widget: "link", Placeholder: "/contact"}, link.Hint); diff != "" {
		t.Fatalf("hint mismatch (-want +got):\n%s", diff)
	}
	images, _ := node.Lookup(schema.MustParsePath("heroImages"))
	if images.Hint.Bucket != "hero" {
		t.Fatalf("expected bucket hint, got %+v", images.Hint)
	}
	subtitle, _ := node.Lookup(schema.MustParsePath("subtitle"))
	if subtitle.Description != "Shown under the title" {
		t.Fatalf("expected description, got %q", subtitle.Description)
	}

	if diff := cmp.Diff(testsupport.HeroDef(), src.Schema); diff != "" {
		t.Fatalf("source definition was modified (-want +got):\n%s", diff)
	}
}

func TestDecorator_ElementPaths(t *testing.T) {
	store := mustStore(t, `
contracts:
  pricing:
    fields:
      plans[].features[]: {label: Feature}
      plans[].icon: {widget: icon}
`)
	got, err := NewDecorator(store).Decorate(contracts.Definition{TypeID: "pricing", Schema: testsupport.PricingDef()})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	node := schema.MustCompile(got.Schema)
	feature, ok := node.Lookup(schema.MustParsePath("plans[0].features[0]"))
	if !ok || feature.Hint.Label != "Feature" {
		t.Fatalf("expected element hint, got %+v", feature)
	}
	icon, _ := node.Lookup(schema.MustParsePath("plans[0].icon"))
	if icon.Hint.Widget != "icon" || !icon.Nullable {
		t.Fatalf("expected icon hint on nullable field, got %+v", icon)
	}
}

func TestDecorator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
		want    string
	}{
		{name: "unknown field", overlay: "contracts:\n  faq:\n    fields:\n      missing: {label: x}\n", want: `unknown field "missing"`},
		{name: "element of object", overlay: "contracts:\n  faq:\n    fields:\n      title[]: {label: x}\n", want: "is not an array"},
		{name: "field of scalar", overlay: "contracts:\n  faq:\n    fields:\n      title.x: {label: x}\n", want: `cannot select "x"`},
		{name: "unknown order", overlay: "contracts:\n  faq:\n    order: [nope]\n", want: `unknown field "nope"`},
		{name: "duplicate order", overlay: "contracts:\n  faq:\n    order: [title, title]\n", want: "twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecorator(mustStore(t, tt.overlay)).Decorate(contracts.Definition{TypeID: "faq", Schema: testsupport.FAQDef()})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDecorator_NoOverlayIsPassThrough(t *testing.T) {
	def := contracts.Definition{TypeID: "gallery", Schema: testsupport.GalleryDef()}
	got, err := NewDecorator(nil).Decorate(def)
	if err != nil || got.Schema != def.Schema {
		t.Fatalf("expected untouched definition")
	}

	all, err := NewDecorator(mustStore(t, "contracts:\n  hero: {label: H}\n")).DecorateAll([]contracts.Definition{def})
	if err != nil || len(all) != 1 || all[0].Schema != def.Schema {
		t.Fatalf("expected gallery to pass through, got %+v %v", all, err)
	}
}
