package openapi

import (
	"context"
	"testing"

	"github.com/goliatone/go-sectionform/pkg/catalog"
)

const quoteDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Sections", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Quote": {
        "x-section-type": "quote",
        "type": "object",
        "required": ["text"],
        "properties": {"text": {"type": "string"}, "author": {"type": "string"}}
      }
    }
  }
}`

func TestAdapterDetect(t *testing.T) {
	adapter := NewAdapter(nil)
	cases := []struct {
		location string
		raw      string
		want     bool
	}{
		{"api.json", quoteDocument, true},
		{"api.yaml", "openapi: 3.0.3\n", true},
		{"schema.json", `{"$schema":"https://json-schema.org/draft/2020-12/schema"}`, false},
		{"api.cue", quoteDocument, false},
	}
	for _, tc := range cases {
		doc := catalog.MustNewDocument(catalog.SourceFromFS(tc.location), []byte(tc.raw))
		if got := adapter.Detect(doc); got != tc.want {
			t.Fatalf("Detect(%s) = %v, want %v", tc.location, got, tc.want)
		}
	}
}

func TestAdapterThroughCatalog(t *testing.T) {
	c := catalog.New(nil, catalog.WithAdapters(NewAdapter(NewParser(WithValidation(true)))))
	defs, err := c.LoadDocument(context.Background(), catalog.MustNewDocument(catalog.SourceFromFS("api.json"), []byte(quoteDocument)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 || defs[0].TypeID != "quote" {
		t.Fatalf("expected quote definition, got %+v", defs)
	}
	if got := len(defs[0].Schema.Fields); got != 2 {
		t.Fatalf("expected 2 fields, got %d", got)
	}
}

func TestNewParserOptions(t *testing.T) {
	opts := NewParserOptions(WithValidation(false), WithExternalRefs(true), WithTypeExtension("x-block"), WithHintExtension("x-ui"))
	if opts.ValidateDocument || !opts.AllowExternalRefs || opts.TypeExtension != "x-block" || opts.HintExtension != "x-ui" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if !NewParserOptions().ValidateDocument {
		t.Fatalf("expected validation on by default")
	}
}
