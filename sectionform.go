// Package sectionform turns content-type contracts into editable section
// forms. The root package re-exports the common entry points: the
// orchestrator constructor, the built-in contracts and the embedded
// templates and browser assets.
package sectionform

import (
	"context"
	"embed"
	"io/fs"

	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/render"
)

//go:embed contracts/*.yaml contracts/*.json contracts/*.cue
var builtinContracts embed.FS

// RenderOptions describes per-request overrides that renderers can use to
// surface server-side validation errors or pick a theme.
type RenderOptions = render.RenderOptions

// Mutation is one structural or scalar edit posted by a client.
type Mutation = orchestrator.Mutation

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// BuiltinContractsFS exposes the bundled section contracts: hero (native
// YAML), gallery (CUE), faq (JSON Schema) and pricing (OpenAPI).
func BuiltinContractsFS() fs.FS {
	sub, err := fs.Sub(builtinContracts, "contracts")
	if err != nil {
		return builtinContracts
	}
	return sub
}

// RenderNew renders a blank form for typeID using the named renderer. It
// is the simplest entry point for callers that just want markup.
func RenderNew(ctx context.Context, typeID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	orch := orchestrator.New(append([]orchestrator.Option{
		orchestrator.WithContractsFS(BuiltinContractsFS(), "."),
	}, options...)...)
	session, err := orch.NewSession(typeID)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	return orch.Render(ctx, orchestrator.Request{
		Form:     session.Form(),
		Renderer: rendererName,
	})
}
