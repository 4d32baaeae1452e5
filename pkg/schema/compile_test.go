package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
)

func TestCompileOptionalObjectKeepsNestedFields(t *testing.T) {
	def := Object(
		Field("cta", Optional(Object(
			Field("text", String()),
			Field("link", Optional(String())),
		))),
	)

	node, diags := Compile(def)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	cta, ok := node.Field("cta")
	if !ok {
		t.Fatalf("expected cta field")
	}
	if cta.Kind != KindObject || !cta.Optional {
		t.Fatalf("expected optional object, got kind=%s optional=%v", cta.Kind, cta.Optional)
	}
	if diff := cmp.Diff([]string{"text", "link"}, cta.FieldNames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	link, _ := cta.Field("link")
	if link.Kind != KindString || !link.Optional {
		t.Fatalf("expected optional string link, got %+v", link)
	}
}

func TestCompileArrayElement(t *testing.T) {
	node, _ := Compile(Object(
		Field("images", Array(Object(
			Field("image", String()),
			Field("alt", Optional(String())),
		))),
	))

	images, _ := node.Field("images")
	if images.Kind != KindArray || images.ElementKind() != KindObject {
		t.Fatalf("expected array of objects, got %s of %s", images.Kind, images.ElementKind())
	}

	got, ok := node.Lookup(MustParsePath("images[3].alt"))
	if !ok || got.Kind != KindString {
		t.Fatalf("expected lookup through element schema, got %+v", got)
	}
}

func TestCompileReportsInvalidAndDuplicateFields(t *testing.T) {
	node, diags := Compile(Object(
		Field("title", String()),
		Field("title", Number()),
		Field("a.b", String()),
		Field("", String()),
	))

	if diff := cmp.Diff([]string{"title"}, node.FieldNames()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Code != diagnostics.SchemaResolutionFailure || d.Severity != diagnostics.SeverityError {
			t.Fatalf("unexpected diagnostic %+v", d)
		}
	}
}

func TestCompileUnknownLeafWarns(t *testing.T) {
	node, diags := Compile(Object(Field("legacy", &Def{Tag: "markdown"})))
	legacy, _ := node.Field("legacy")
	if legacy.Kind != KindUnknown {
		t.Fatalf("expected unknown kind, got %s", legacy.Kind)
	}
	if len(diags) != 1 || diags[0].Path != "legacy" || diags[0].Severity != diagnostics.SeverityWarn {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestCompileSelfReferenceTerminates(t *testing.T) {
	def := Object()
	def.Fields = append(def.Fields, Field("child", def))

	_, diags := Compile(def)
	if !diags.Has(diagnostics.SchemaResolutionFailure) {
		t.Fatalf("expected depth diagnostic for recursive schema")
	}
}

func TestMustCompilePanicsOnErrors(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustCompile(Object(Field("a[0]", String())))
}
