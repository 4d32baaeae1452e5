package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/contracts"
)

// Transformer rewrites a contract definition after it was decoded and before
// presentation overlays run. Implementations can rename labels, inject hints
// or drop nothing at all.
type Transformer interface {
	Transform(ctx context.Context, def *contracts.Definition) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, def *contracts.Definition) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, def *contracts.Definition) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, def)
}

// CategoryDefaults fills Metadata.Category for definitions that declare none,
// keyed by type id. The "*" key applies to every remaining definition.
func CategoryDefaults(categories map[string]string) Transformer {
	return TransformerFunc(func(_ context.Context, def *contracts.Definition) error {
		if def == nil || strings.TrimSpace(def.Metadata.Category) != "" {
			return nil
		}
		if category, ok := categories[def.TypeID]; ok {
			def.Metadata.Category = category
			return nil
		}
		def.Metadata.Category = categories["*"]
		return nil
	})
}

func (o *Orchestrator) applyTransformers(ctx context.Context, defs []contracts.Definition) error {
	if len(o.transformers) == 0 {
		return nil
	}
	for idx := range defs {
		for _, t := range o.transformers {
			if err := t.Transform(ctx, &defs[idx]); err != nil {
				return fmt.Errorf("orchestrator: transform contract %q: %w", defs[idx].TypeID, err)
			}
		}
	}
	return nil
}
