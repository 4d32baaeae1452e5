// Package catalog loads section contracts from documents. Each document is
// dispatched to the first Adapter that recognises it; the native YAML/JSON
// format is always available as the last resort, and JSON Schema, OpenAPI
// and CUE adapters plug in through WithAdapters.
package catalog
