package uischema

import (
	"embed"
	"io/fs"
)

//go:embed overlays/*.yaml
var embeddedOverlays embed.FS

// EmbeddedFS returns the bundled overlays for the stock sections. Callers may
// pass this filesystem to LoadFS to use the default presentation.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedOverlays, "overlays")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
