package sectionform

import (
	"io/fs"

	"github.com/goliatone/go-sectionform/pkg/renderers/html"
)

// RuntimeAssetsFS exposes the browser runtime (stylesheet and the script
// wiring repeatable blocks to the mutations endpoint) so Go applications can
// serve it without a build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(sectionform.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}
