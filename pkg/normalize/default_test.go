package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

func TestDefaultHero(t *testing.T) {
	node := compile(t, testsupport.HeroDef())

	want := map[string]any{
		"title":               "",
		"subtitle":            "",
		"description":         "",
		"backgroundImage":     "",
		"heroImages":          []any{},
		"cta":                 map[string]any{"text": "", "link": ""},
		"secondaryCta":        map[string]any{"text": "", "link": ""},
		"showScrollIndicator": true,
	}
	if diff := cmp.Diff(want, Default(node)); diff != "" {
		t.Fatalf("default mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultScalarsAndUnknown(t *testing.T) {
	cases := []struct {
		node *schema.Node
		want any
	}{
		{&schema.Node{Kind: schema.KindString}, ""},
		{&schema.Node{Kind: schema.KindNumber}, float64(0)},
		{&schema.Node{Kind: schema.KindBoolean}, false},
		{&schema.Node{Kind: schema.KindArray, Element: &schema.Node{Kind: schema.KindString}}, []any{}},
		{&schema.Node{Kind: schema.KindUnknown}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Default(tc.node)); diff != "" {
			t.Fatalf("default for %+v mismatch (-want +got):\n%s", tc.node, diff)
		}
	}
}

func TestDefaultIgnoresMismatchedDeclaredDefault(t *testing.T) {
	node := compile(t, schema.Defaulted(schema.Number(), "ten"))
	if Default(node) != float64(0) {
		t.Fatalf("expected kind default when declared default has the wrong shape")
	}

	node = compile(t, schema.Defaulted(schema.Number(), 10))
	if Default(node) != float64(10) {
		t.Fatalf("expected declared default to be normalized to float64")
	}
}

func TestDefaultIsNormalized(t *testing.T) {
	for _, def := range []*schema.Def{testsupport.HeroDef(), testsupport.GalleryDef(), testsupport.FAQDef(), testsupport.PricingDef()} {
		node := compile(t, def)
		value := Default(node)
		res := Normalize(node, value)
		if res.Repaired() {
			t.Fatalf("default value needed repairs: %v", res.Diagnostics)
		}
	}
}
