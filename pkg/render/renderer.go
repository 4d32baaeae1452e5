package render

import (
	"context"

	"github.com/goliatone/go-sectionform/pkg/form"
)

// Renderer converts a synthesized form into a byte representation (HTML,
// terminal transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options RenderOptions) ([]byte, error)
}
