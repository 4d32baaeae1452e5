package form

import (
	"testing"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
	"github.com/google/go-cmp/cmp"
)

func controlNames(controls []*Control) []string {
	out := make([]string, 0, len(controls))
	for _, c := range controls {
		out = append(out, c.Name)
	}
	return out
}

func TestWalkHeroGroups(t *testing.T) {
	hero := mustContract(t, "hero")
	root := Walk(hero.Node, schema.Path{}, hero.DefaultData())

	type group struct {
		Group     widgets.Group
		Collapsed bool
		Names     []string
	}
	var got []group
	for _, section := range root.Groups {
		got = append(got, group{section.Group, section.Collapsed, controlNames(section.Controls)})
	}
	want := []group{
		{widgets.GroupContent, false, []string{"title", "subtitle", "description"}},
		{widgets.GroupMedia, false, []string{"backgroundImage", "heroImages"}},
		{widgets.GroupCTA, false, []string{"cta", "secondaryCta"}},
		{widgets.GroupAdvanced, true, []string{"showScrollIndicator"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if len(root.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics for default data, got %v", root.Diagnostics)
	}
}

func TestWalkOptionalObjectIsNestedGroup(t *testing.T) {
	hero := mustContract(t, "hero")
	root := Walk(hero.Node, schema.Path{}, hero.DefaultData())

	cta, ok := root.Find(path("cta"))
	if !ok {
		t.Fatal("cta control missing")
	}
	if cta.Widget != widgets.WidgetGroup || !cta.Optional {
		t.Fatalf("expected optional group widget, got %s optional=%v", cta.Widget, cta.Optional)
	}
	text, ok := cta.Find(path("cta.text"))
	if !ok || text.Widget != widgets.WidgetText {
		t.Fatalf("expected cta.text text widget, got %+v", text)
	}
	link, ok := cta.Find(path("cta.link"))
	if !ok || link.Widget != widgets.WidgetLink {
		t.Fatalf("expected cta.link link widget, got %+v", link)
	}
	if link.Bucket != widgets.DefaultLinkBucket {
		t.Fatalf("expected link bucket %q, got %q", widgets.DefaultLinkBucket, link.Bucket)
	}
}

func TestWalkRepeaterItems(t *testing.T) {
	gallery := mustContract(t, "gallery")
	doc := map[string]any{"images": []any{
		map[string]any{"image": "a.jpg"},
		map[string]any{"image": "b.jpg"},
		map[string]any{"image": "c.jpg"},
	}}
	root := Walk(gallery.Node, schema.Path{}, doc)

	images, ok := root.Find(path("images"))
	if !ok || images.Widget != widgets.WidgetRepeater {
		t.Fatalf("expected repeater, got %+v", images)
	}
	if len(images.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(images.Items))
	}
	moves := [][2]bool{}
	for _, item := range images.Items {
		moves = append(moves, [2]bool{item.CanMoveUp, item.CanMoveDown})
	}
	if diff := cmp.Diff([][2]bool{{false, true}, {true, true}, {true, false}}, moves); diff != "" {
		t.Fatalf("move flags mismatch (-want +got):\n%s", diff)
	}
	add, ok := images.Action(ActionAdd)
	if !ok || !add.Enabled || !add.Path.Equal(path("images")) {
		t.Fatalf("expected enabled add action on images, got %+v", add)
	}

	first := images.Items[0].Control
	image, ok := first.Find(path("images[0].image"))
	if !ok || image.Widget != widgets.WidgetImage || image.Value != "a.jpg" {
		t.Fatalf("expected image widget with value, got %+v", image)
	}
	alt, _ := first.Find(path("images[0].alt"))
	// Fields under images inherit the image widget from their path.
	if alt == nil || alt.Widget != widgets.WidgetImage || alt.Value != "" {
		t.Fatalf("expected alt image widget with repaired value, got %+v", alt)
	}
	up, _ := first.Action(ActionMoveUp)
	if up.Enabled {
		t.Fatal("first item must not move up")
	}
}

func TestWalkRepairsThroughNormalizer(t *testing.T) {
	gallery := mustContract(t, "gallery")
	root := Walk(gallery.Node, schema.Path{}, map[string]any{
		"images": []any{map[string]any{"image": 42, "alt": nil}},
	})

	image, _ := root.Find(path("images[0].image"))
	if image == nil || image.Value != "" {
		t.Fatalf("expected repaired string value, got %+v", image)
	}
	if !root.Diagnostics.Has(diagnostics.DataShapeMismatch) {
		t.Fatalf("expected repair diagnostics, got %v", root.Diagnostics)
	}
}

func TestWalkImageListAndResolver(t *testing.T) {
	resolver, err := links.NewResolver(links.Options{
		BaseURL: "https://example.com",
		Buckets: map[string]string{widgets.DefaultMediaBucket: "https://cdn.example.com"},
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	walker := NewWalker(WithResolver(resolver))
	hero := mustContract(t, "hero")
	doc := hero.DefaultData()
	doc["heroImages"] = []any{"one.jpg", "two.jpg"}
	doc["backgroundImage"] = "bg.jpg"

	root := walker.Walk(hero.Node, schema.Path{}, doc)

	list, _ := root.Find(path("heroImages"))
	if list == nil || list.Widget != widgets.WidgetImageList {
		t.Fatalf("expected image list, got %+v", list)
	}
	if diff := cmp.Diff([]string{"one.jpg", "two.jpg"}, list.Value); diff != "" {
		t.Fatalf("image list value mismatch (-want +got):\n%s", diff)
	}
	if got := list.Items[1].Control.URL; got != "https://cdn.example.com/two.jpg" {
		t.Fatalf("unexpected item url %q", got)
	}
	bg, _ := root.Find(path("backgroundImage"))
	if bg == nil || bg.URL != "https://cdn.example.com/bg.jpg" {
		t.Fatalf("unexpected background url %+v", bg)
	}
}

func TestWalkSubtreeReportsAbsolutePaths(t *testing.T) {
	gallery := mustContract(t, "gallery")
	element := gallery.Node.Fields[0].Node.Element

	c := Walk(element, path("images[2]"), map[string]any{"image": 7})
	if c.Widget != widgets.WidgetGroup {
		t.Fatalf("expected group, got %s", c.Widget)
	}
	if diff := cmp.Diff([]string{"images[2].image", "images[2].alt", "images[2].title", "images[2].story"}, c.Diagnostics.Paths()); diff != "" {
		t.Fatalf("diagnostic paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkUnknownFallsBackToReadOnlyText(t *testing.T) {
	node := schema.MustCompile(schema.Object(
		schema.Field("payload", &schema.Def{}),
	))
	root := Walk(node, schema.Path{}, map[string]any{"payload": map[string]any{"a": 1}})

	payload, _ := root.Find(path("payload"))
	if payload == nil || payload.Widget != widgets.WidgetText || !payload.ReadOnly {
		t.Fatalf("expected read-only text fallback, got %+v", payload)
	}
	if !payload.Diagnostics.Has(diagnostics.ClassificationFallback) {
		t.Fatalf("expected classification fallback, got %v", payload.Diagnostics)
	}
}

func TestWalkHintOverridesLabelAndWidget(t *testing.T) {
	node := schema.MustCompile(schema.Object(
		schema.Field("summary", schema.String().WithHint(schema.Hint{
			Widget: "textarea", Label: "Short summary", Placeholder: "Say it briefly",
		})),
	))
	root := Walk(node, schema.Path{}, nil)

	summary, _ := root.Find(path("summary"))
	if summary.Widget != widgets.WidgetTextarea || summary.Label != "Short summary" || summary.Placeholder != "Say it briefly" {
		t.Fatalf("hint not applied: %+v", summary)
	}
}

func TestWalkIsDeterministic(t *testing.T) {
	pricing := mustContract(t, "pricing")
	doc := map[string]any{"plans": []any{map[string]any{"name": "Pro", "price": 10, "features": []any{"a"}}}}

	first := Walk(pricing.Node, schema.Path{}, doc)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, Walk(pricing.Node, schema.Path{}, doc)); diff != "" {
			t.Fatalf("walk not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestWalkDoesNotMutateInput(t *testing.T) {
	gallery := mustContract(t, "gallery")
	doc := map[string]any{"images": "not-an-array"}
	Walk(gallery.Node, schema.Path{}, doc)
	if doc["images"] != "not-an-array" {
		t.Fatalf("input mutated: %v", doc)
	}
	if got := normalize.Normalize(gallery.Node, doc).Value; !cmp.Equal(got, map[string]any{"images": []any{}}) {
		t.Fatalf("unexpected normalization %v", got)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"title":               "Title",
		"backgroundImage":     "Background Image",
		"button_url":          "Button Url",
		"showScrollIndicator": "Show Scroll Indicator",
		"step2":               "Step 2",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFallbackForm(t *testing.T) {
	f := Fallback("legacy-banner", map[string]any{"text": "hi"})
	if !f.ReadOnly || !f.Root.ReadOnly {
		t.Fatal("fallback must be read-only")
	}
	if f.Root.Value != "{\n  \"text\": \"hi\"\n}" {
		t.Fatalf("unexpected dump %q", f.Root.Value)
	}
	if !f.Diagnostics.Has(diagnostics.SchemaResolutionFailure) {
		t.Fatalf("expected schema resolution diagnostic, got %v", f.Diagnostics)
	}
}
