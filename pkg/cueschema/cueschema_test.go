package cueschema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

const heroCUE = `
_#CTA: {
	text:  string
	link?: string
}

// Large banner at the top of a page.
#Hero: {
	title:                string
	subtitle?:            string
	description?:         string
	backgroundImage?:     string
	heroImages?:          [...string]
	cta?:                 _#CTA
	secondaryCta?:        _#CTA
	showScrollIndicator:  *true | bool
} @section(type=hero, label="Hero", icon=star, category=layout)

#PricingTable: {
	heading:   string @form(widget=textarea, label="Heading", placeholder="Plans")
	badge:     string | null
	columns:   *3 | int
	price:     number & >=0
	slug:      string & =~"^[a-z-]*$"
}
`

func TestCompile_HeroMatchesFixture(t *testing.T) {
	defs, err := Compile("sections.cue", []byte(heroCUE))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}

	hero := defs[0]
	if hero.TypeID != "hero" {
		t.Fatalf("type id: %q", hero.TypeID)
	}
	wantMeta := contracts.Metadata{
		Label:       "Hero",
		Description: "Large banner at the top of a page.",
		Icon:        "star",
		Category:    "layout",
	}
	if diff := cmp.Diff(wantMeta, hero.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(testsupport.HeroDef(), hero.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_DefinitionNameAndFieldShapes(t *testing.T) {
	defs, err := Compile("sections.cue", []byte(heroCUE))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pricing := defs[1]
	if pricing.TypeID != "pricing-table" {
		t.Fatalf("type id: %q", pricing.TypeID)
	}

	heading := schema.String().WithHint(schema.Hint{Widget: "textarea", Label: "Heading", Placeholder: "Plans"})
	want := schema.Object(
		schema.Field("heading", heading),
		schema.Field("badge", schema.Nullable(schema.String())),
		schema.Field("columns", schema.Defaulted(schema.Integer(), int64(3))),
		schema.Field("price", schema.Effect(schema.Number())),
		schema.Field("slug", schema.Effect(schema.String())),
	)
	got := pricing.Schema
	if diff := cmp.Diff(fieldNames(want), fieldNames(got)); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	for i, field := range want.Fields {
		gotField := got.Fields[i].Def
		if gotField.Tag != field.Def.Tag {
			t.Fatalf("%s: tag %q, want %q", field.Name, gotField.Tag, field.Def.Tag)
		}
	}
	if diff := cmp.Diff(heading.Hint, got.Fields[0].Def.Hint); diff != "" {
		t.Fatalf("hint mismatch (-want +got):\n%s", diff)
	}
	if inner := got.Fields[2].Def.Inner; inner == nil || inner.Tag != schema.TagInteger {
		t.Fatalf("columns should wrap an integer, got %+v", inner)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "syntax", src: "#A: {", want: "compile"},
		{name: "no definitions", src: "a: 1", want: "no definitions"},
		{name: "not a struct", src: "#A: string", want: "must be a struct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("x.cue", []byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAdapter_Detect(t *testing.T) {
	adapter := NewAdapter()
	cueDoc := catalog.MustNewDocument(catalog.SourceFromFile("sections.cue"), []byte(heroCUE))
	yamlDoc := catalog.MustNewDocument(catalog.SourceFromFile("sections.yaml"), []byte("type: hero\nfields: {}"))
	if !adapter.Detect(cueDoc) {
		t.Fatalf("expected .cue document to be detected")
	}
	if adapter.Detect(yamlDoc) {
		t.Fatalf("expected .yaml document to be ignored")
	}
}

func TestAdapter_CatalogIntegration(t *testing.T) {
	cat := catalog.New(nil, catalog.WithAdapters(NewAdapter()))
	doc := catalog.MustNewDocument(catalog.SourceFromFile("sections.cue"), []byte(heroCUE))
	defs, err := cat.LoadDocument(testsupport.Context(), doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := contracts.NewRegistry()
	if err := catalog.Register(reg, defs); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Has("pricing-table") {
		t.Fatalf("expected pricing-table to be registered")
	}
}

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"Hero":         "hero",
		"PricingTable": "pricing-table",
		"FAQ":          "faq",
		"HTMLBlock":    "html-block",
		"logo_cloud":   "logo-cloud",
	}
	for in, want := range cases {
		if got := kebab(in); got != want {
			t.Errorf("kebab(%q) = %q, want %q", in, got, want)
		}
	}
}

func fieldNames(def *schema.Def) []string {
	out := make([]string, 0, len(def.Fields))
	for _, field := range def.Fields {
		out = append(out, field.Name)
	}
	return out
}

func TestCompile_ConstraintsFollowCUE(t *testing.T) {
	defs, err := Compile("sections.cue", []byte(heroCUE))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pricing, err := contracts.Build(defs[1])
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	valid := map[string]any{"heading": "Plans", "badge": nil, "columns": 3, "price": 12.5, "slug": "pro-plans"}
	if result := pricing.Validate(valid); !result.Valid {
		t.Fatalf("expected valid document, got %+v", result.Issues)
	}

	invalid := map[string]any{"heading": "Plans", "badge": nil, "columns": 3, "price": -1, "slug": "NOT A SLUG!!"}
	result := pricing.Validate(invalid)
	if result.Valid {
		t.Fatal("expected bound and pattern violations")
	}
	got := map[string]bool{}
	for _, issue := range result.Issues {
		got[issue.Field] = true
	}
	if !got["price"] || !got["slug"] {
		t.Fatalf("expected price and slug issues, got %+v", result.Issues)
	}
}

func TestFieldPath(t *testing.T) {
	if got := fieldPath([]string{"images", "0", "alt"}); got != "images[0].alt" {
		t.Fatalf("expected images[0].alt, got %q", got)
	}
}
