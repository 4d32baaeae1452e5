package validation

import (
	"errors"
	"testing"

	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
	"github.com/google/go-cmp/cmp"
)

func mustValidator(t *testing.T, def *schema.Def) *Validator {
	t.Helper()
	v, err := NewValidator(schema.MustCompile(def))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestDefaultDataValidates(t *testing.T) {
	defs := map[string]*schema.Def{
		"hero":    testsupport.HeroDef(),
		"gallery": testsupport.GalleryDef(),
		"faq":     testsupport.FAQDef(),
		"pricing": testsupport.PricingDef(),
	}
	for name, def := range defs {
		t.Run(name, func(t *testing.T) {
			node := schema.MustCompile(def)
			v, err := NewValidator(node)
			if err != nil {
				t.Fatalf("NewValidator: %v", err)
			}
			if result := v.Validate(normalize.Default(node)); !result.Valid {
				t.Fatalf("default data invalid: %+v", result.Issues)
			}
		})
	}
}

func TestValidateReportsFieldPaths(t *testing.T) {
	v := mustValidator(t, testsupport.GalleryDef())

	result := v.Validate(map[string]any{
		"images": []any{
			map[string]any{"image": "a.jpg"},
			map[string]any{"image": 12},
		},
	})
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	got := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		got = append(got, issue.Field)
	}
	if diff := cmp.Diff([]string{"images[1].image"}, got); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
	if result.Issues[0].Path != "/images/1/image" {
		t.Fatalf("expected pointer path, got %q", result.Issues[0].Path)
	}
}

func TestValidateMissingRequiredKey(t *testing.T) {
	v := mustValidator(t, testsupport.FAQDef())

	result := v.Validate(map[string]any{"items": []any{}})
	if result.Valid {
		t.Fatal("expected missing title to fail")
	}
	err := result.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(Issues(err)) == 0 {
		t.Fatal("expected issues on error")
	}
}

func TestValidateAcceptsGoNativeValues(t *testing.T) {
	v := mustValidator(t, testsupport.PricingDef())

	result := v.Validate(map[string]any{
		"title": "Plans",
		"plans": []map[string]any{{
			"name":     "Pro",
			"price":    29,
			"features": []string{"SSO"},
			"icon":     nil,
		}},
	})
	if !result.Valid {
		t.Fatalf("expected valid, got %+v", result.Issues)
	}
}

func TestOptionalKeysMayBeAbsent(t *testing.T) {
	v := mustValidator(t, testsupport.HeroDef())

	result := v.Validate(map[string]any{"title": "Hi", "showScrollIndicator": false})
	if !result.Valid {
		t.Fatalf("expected optional keys to be optional, got %+v", result.Issues)
	}
}

func TestJSONSchemaShape(t *testing.T) {
	node := schema.MustCompile(schema.Object(
		schema.Field("icon", schema.Nullable(schema.String())),
		schema.Field("tags", schema.Optional(schema.Array(schema.String()))),
	))

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"icon": map[string]any{"type": []any{"string", "null"}},
			"tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"icon"},
	}
	if diff := cmp.Diff(want, JSONSchema(node)); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"/title":         "title",
		"/plans/0/name":  "plans[0].name",
		"#/a~1b/2":       "a/b[2]",
		"/images/10/alt": "images[10].alt",
	}
	for in, want := range cases {
		if got := fieldPathFromPointer(in); got != want {
			t.Errorf("fieldPathFromPointer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromDocumentKeepsAuthoredConstraints(t *testing.T) {
	document := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs": map[string]any{
			"badge": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"slug": map[string]any{"type": "string", "pattern": "^[a-z-]+$", "minLength": 3},
					"size": map[string]any{"type": "string", "enum": []any{"s", "m", "l"}},
				},
			},
		},
	}
	v, err := FromDocument(document, "#/$defs/badge")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if result := v.Validate(map[string]any{"slug": "new-in", "size": "m"}); !result.Valid {
		t.Fatalf("expected valid document, got %+v", result.Issues)
	}

	result := v.Validate(map[string]any{"slug": "NOT A SLUG!!", "size": "xxl"})
	if result.Valid {
		t.Fatal("expected pattern and enum violations")
	}
	got := map[string]bool{}
	for _, issue := range result.Issues {
		got[issue.Field] = true
	}
	if !got["slug"] || !got["size"] {
		t.Fatalf("expected slug and size issues, got %+v", result.Issues)
	}
}

func TestAllMergesIssues(t *testing.T) {
	failing := CheckFunc(func(any) []SchemaIssue {
		return []SchemaIssue{{Field: "size", Message: "out of range"}}
	})
	passing := CheckFunc(func(any) []SchemaIssue { return nil })

	if result := All(passing, nil).Validate(map[string]any{}); !result.Valid {
		t.Fatalf("expected valid result, got %+v", result.Issues)
	}
	result := All(passing, failing, failing).Validate(map[string]any{})
	if result.Valid || len(result.Issues) != 2 {
		t.Fatalf("expected two merged issues, got %+v", result)
	}
	if !errors.Is(result.Err(), ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", result.Err())
	}
}
