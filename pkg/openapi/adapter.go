package openapi

import (
	"context"
	"errors"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
)

// DefaultAdapterName is the catalog identifier of the OpenAPI adapter.
const DefaultAdapterName = "openapi"

// Adapter plugs OpenAPI documents into a catalog.
type Adapter struct {
	parser Parser
}

var _ catalog.Adapter = (*Adapter)(nil)

// NewAdapter constructs an OpenAPI adapter. A nil parser selects the default.
func NewAdapter(p Parser) *Adapter {
	if p == nil {
		p = NewParser()
	}
	return &Adapter{parser: p}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the document is an OpenAPI 3 description.
func (a *Adapter) Detect(doc catalog.Document) bool {
	switch doc.Format() {
	case catalog.FormatJSON, catalog.FormatYAML:
	default:
		return false
	}
	root, err := yamlnode.Parse(doc.Raw())
	if err != nil {
		return false
	}
	return yamlnode.String(root, "openapi") != ""
}

// Definitions parses the document's component schemas.
func (a *Adapter) Definitions(ctx context.Context, doc catalog.Document) ([]contracts.Definition, error) {
	if a == nil || a.parser == nil {
		return nil, errors.New("openapi adapter: parser is nil")
	}
	return a.parser.Definitions(ctx, doc.Raw())
}
