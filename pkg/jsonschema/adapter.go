package jsonschema

import (
	"context"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
)

// DefaultAdapterName is the catalog identifier of the JSON Schema adapter.
const DefaultAdapterName = "jsonschema"

// Adapter plugs JSON Schema documents into a catalog.
type Adapter struct{}

var _ catalog.Adapter = (*Adapter)(nil)

// NewAdapter constructs the JSON Schema adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the document declares a JSON Schema dialect and is
// not an OpenAPI description.
func (a *Adapter) Detect(doc catalog.Document) bool {
	switch doc.Format() {
	case catalog.FormatJSON, catalog.FormatYAML:
	default:
		return false
	}
	root, err := yamlnode.Parse(doc.Raw())
	if err != nil || !yamlnode.IsMapping(root) {
		return false
	}
	if yamlnode.Has(root, "openapi") || yamlnode.Has(root, "swagger") {
		return false
	}
	return yamlnode.Has(root, "$schema")
}

// Definitions converts the document; a root without x-section.type or $id
// is named after the file.
func (a *Adapter) Definitions(_ context.Context, doc catalog.Document) ([]contracts.Definition, error) {
	return Definitions(doc.Raw(), DiscoveryOptions{
		FallbackTypeID: typeIDFromLocation(doc.Location()),
	})
}
