package sectionform

import (
	"github.com/goliatone/go-sectionform/internal/loader"
	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/openapi"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
)

// NewLoader constructs a document loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...catalog.LoaderOption) catalog.Loader {
	return loader.New(catalog.NewLoaderOptions(options...))
}

// NewParser constructs the OpenAPI component parser.
func NewParser(options ...openapi.ParserOption) openapi.Parser {
	return openapi.NewParser(options...)
}

// NewCatalog builds a catalog understanding every bundled contract syntax.
func NewCatalog(logger interfaces.Logger, options ...catalog.LoaderOption) *catalog.Catalog {
	return orchestrator.DefaultCatalog(logger, options...)
}
