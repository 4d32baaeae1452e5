// Package normalize derives default instances for compiled schema nodes and
// repairs stored documents whose runtime shape disagrees with their schema.
//
// Normalization is idempotent and never mutates its input. Every repair is
// reported as a diagnostics.DataShapeMismatch entry on the returned Result.
package normalize
