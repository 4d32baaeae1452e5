package orchestrator

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sectionform/internal/loader"
	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/cueschema"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/jsonschema"
	"github.com/goliatone/go-sectionform/pkg/openapi"
)

// DefaultCatalog builds a catalog that understands every bundled contract
// syntax: OpenAPI components, JSON Schema, CUE and the native format.
func DefaultCatalog(logger interfaces.Logger, options ...catalog.LoaderOption) *catalog.Catalog {
	return catalog.New(
		loader.New(catalog.NewLoaderOptions(options...)),
		catalog.WithAdapters(
			openapi.NewAdapter(nil),
			jsonschema.NewAdapter(),
			cueschema.NewAdapter(),
		),
		catalog.WithLogger(logger),
	)
}

func (o *Orchestrator) loadContracts() error {
	if len(o.contractSources) == 0 && len(o.definitions) == 0 {
		return nil
	}
	ctx := context.Background()

	defs := append([]contracts.Definition(nil), o.definitions...)
	for _, src := range o.contractSources {
		loaded, err := o.catalog.LoadFS(ctx, src.fs, src.root)
		if err != nil {
			return fmt.Errorf("orchestrator: load contracts: %w", err)
		}
		defs = append(defs, loaded...)
	}

	if err := o.applyTransformers(ctx, defs); err != nil {
		return err
	}

	decorator, err := o.overlayDecorator()
	if err != nil {
		return err
	}
	if decorator != nil {
		if defs, err = decorator.DecorateAll(defs); err != nil {
			return fmt.Errorf("orchestrator: decorate contracts: %w", err)
		}
	}

	if err := catalog.Register(o.contracts, defs); err != nil {
		return fmt.Errorf("orchestrator: register contracts: %w", err)
	}
	o.logger.Info("contracts registered", "count", len(defs), "types", o.contracts.List())
	return nil
}
