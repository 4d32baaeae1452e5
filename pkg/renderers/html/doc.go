// Package html renders a synthesized section form as server-side HTML.
//
// Scalar widgets render through pongo2 templates that a theme can override
// by partial key ("widgets.text", "widgets.image", ...). Groups and
// repeatable blocks are assembled in Go so nested controls keep their field
// chrome. Repeatable blocks carry add, move and remove buttons wired to the
// embedded runtime script, which posts the edit and swaps in the re-rendered
// form.
package html
