package cueschema

import (
	"context"

	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
)

// DefaultAdapterName is the catalog identifier of the CUE adapter.
const DefaultAdapterName = "cue"

// Adapter plugs .cue documents into a catalog.
type Adapter struct{}

var _ catalog.Adapter = (*Adapter)(nil)

// NewAdapter constructs the CUE adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect accepts documents with a .cue extension.
func (a *Adapter) Detect(doc catalog.Document) bool {
	return doc.Format() == catalog.FormatCUE
}

// Definitions compiles the document.
func (a *Adapter) Definitions(_ context.Context, doc catalog.Document) ([]contracts.Definition, error) {
	return Compile(doc.Location(), doc.Raw())
}
