package jsonschema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

func TestDefinitionsFromRootExtension(t *testing.T) {
	raw := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Frequently asked questions",
  "description": "Question and answer list",
  "x-section": {"type": "faq", "icon": "help", "category": "content"},
  "type": "object",
  "required": ["title", "items"],
  "properties": {
    "title": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "answer"],
        "properties": {"question": {"type": "string"}, "answer": {"type": "string"}}
      }
    }
  },
  "default": {"title": "FAQ", "items": []}
}`
	defs, err := Definitions([]byte(raw), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	def := defs[0]
	wantMeta := contracts.Metadata{
		Label:       "Frequently asked questions",
		Description: "Question and answer list",
		Icon:        "help",
		Category:    "content",
	}
	if def.TypeID != "faq" {
		t.Fatalf("expected faq, got %q", def.TypeID)
	}
	if diff := cmp.Diff(wantMeta, def.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(testsupport.FAQDef(), def.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"title": "FAQ", "items": []any{}}, def.DefaultData); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	contract, err := contracts.Build(def)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := contract.DefaultData()["title"]; got != "FAQ" {
		t.Fatalf("expected provided default title, got %v", got)
	}
}

func TestDefinitionsFromDefs(t *testing.T) {
	raw := `
$schema: https://json-schema.org/draft/2020-12/schema
$defs:
  button:
    type: object
    properties:
      text: {type: string}
  quote:
    x-section: {type: quote, label: Quote}
    type: object
    required: [text]
    properties:
      text: {type: string}
      button: {$ref: "#/$defs/button"}
  banner:
    x-section: {type: banner}
    type: object
    properties:
      image: {type: string}
`
	defs, err := Definitions([]byte(raw), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	var ids []string
	for _, def := range defs {
		ids = append(ids, def.TypeID)
	}
	if diff := cmp.Diff([]string{"quote", "banner"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if defs[0].Metadata.Label != "Quote" {
		t.Fatalf("expected Quote label, got %q", defs[0].Metadata.Label)
	}
	for _, def := range defs {
		if _, err := contracts.Build(def); err != nil {
			t.Fatalf("build %s: %v", def.TypeID, err)
		}
	}
}

func TestDefinitionsTypeFromID(t *testing.T) {
	raw := `{"$schema":"https://json-schema.org/draft/2020-12/schema","$id":"https://example.com/sections/pricing.schema.json","type":"object","properties":{}}`
	defs, err := Definitions([]byte(raw), DiscoveryOptions{FallbackTypeID: "ignored"})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if defs[0].TypeID != "pricing" {
		t.Fatalf("expected pricing, got %q", defs[0].TypeID)
	}

	bare := `{"$schema":"https://json-schema.org/draft/2020-12/schema","type":"object","properties":{}}`
	defs, err = Definitions([]byte(bare), DiscoveryOptions{FallbackTypeID: "cta"})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if defs[0].TypeID != "cta" {
		t.Fatalf("expected fallback cta, got %q", defs[0].TypeID)
	}

	if _, err := Definitions([]byte(bare), DiscoveryOptions{}); err == nil || !strings.Contains(err.Error(), "cannot derive contract type") {
		t.Fatalf("expected type derivation error, got %v", err)
	}
}

func TestDefinitionsDialect(t *testing.T) {
	cases := map[string]string{
		`{"type":"object"}`: "$schema is required",
		`{"$schema":"http://json-schema.org/draft-07/schema#","type":"object"}`: "unsupported $schema",
		`["not", "an", "object"]`: "schema must be an object",
	}
	for raw, want := range cases {
		_, err := Definitions([]byte(raw), DiscoveryOptions{FallbackTypeID: "x"})
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: expected error containing %q, got %v", raw, want, err)
		}
	}
}

func TestDefinitionsRejectsScalarDefault(t *testing.T) {
	raw := `{"$schema":"https://json-schema.org/draft/2020-12/schema","x-section":{"type":"x"},"type":"object","properties":{},"default":3}`
	if _, err := Definitions([]byte(raw), DiscoveryOptions{}); err == nil {
		t.Fatalf("expected error for scalar root default")
	}
}

func TestAdapterDetect(t *testing.T) {
	adapter := NewAdapter()
	cases := []struct {
		location string
		raw      string
		want     bool
	}{
		{"hero.json", `{"$schema":"https://json-schema.org/draft/2020-12/schema"}`, true},
		{"hero.yaml", "$schema: https://json-schema.org/draft/2020-12/schema\n", true},
		{"api.yaml", "openapi: 3.1.0\n$schema: x\n", false},
		{"hero.yaml", "type: hero\nfields: {}\n", false},
		{"hero.cue", `{"$schema":"x"}`, false},
		{"broken.json", `{`, false},
	}
	for _, tc := range cases {
		doc := catalog.MustNewDocument(catalog.SourceFromFS(tc.location), []byte(tc.raw))
		if got := adapter.Detect(doc); got != tc.want {
			t.Fatalf("Detect(%s, %q) = %v, want %v", tc.location, tc.raw, got, tc.want)
		}
	}
}

func TestAdapterInCatalogUsesFileName(t *testing.T) {
	raw := `{"$schema":"https://json-schema.org/draft/2020-12/schema","type":"object","required":["text"],"properties":{"text":{"type":"string"}}}`
	c := catalog.New(nil, catalog.WithAdapters(NewAdapter()))
	defs, err := c.LoadDocument(context.Background(), catalog.MustNewDocument(catalog.SourceFromFS("sections/quote.schema.json"), []byte(raw)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 || defs[0].TypeID != "quote" {
		t.Fatalf("expected quote definition, got %+v", defs)
	}
}

func TestDefinitionsEnforceAuthoredConstraints(t *testing.T) {
	raw := `
$schema: https://json-schema.org/draft/2020-12/schema
$id: https://example.com/sections/badges.schema.json
$defs:
  badge:
    x-section: {type: badge}
    type: object
    required: [slug, size]
    properties:
      slug: {type: string, pattern: "^[a-z-]+$", minLength: 3}
      size: {type: string, enum: [s, m, l]}
    default: {slug: new-in, size: m}
  loose:
    x-section: {type: loose}
    type: object
    properties:
      size: {type: string, enum: [s, m, l]}
`
	defs, err := Definitions([]byte(raw), DiscoveryOptions{})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	badge, err := contracts.Build(defs[0])
	if err != nil {
		t.Fatalf("build badge: %v", err)
	}
	if result := badge.Validate(map[string]any{"slug": "sale", "size": "l"}); !result.Valid {
		t.Fatalf("expected valid badge, got %+v", result.Issues)
	}
	if result := badge.Validate(map[string]any{"slug": "NOT A SLUG!!", "size": "xxl"}); result.Valid {
		t.Fatal("expected pattern and enum violations to be reported")
	}

	// The derived default for size is "", which the enum rejects.
	if _, err := contracts.Build(defs[1]); !errors.Is(err, contracts.ErrUnsoundDefault) {
		t.Fatalf("expected ErrUnsoundDefault, got %v", err)
	}
}
