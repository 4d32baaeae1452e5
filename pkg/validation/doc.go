// Package validation checks section documents against the JSON Schema
// derived from a compiled contract node. Issues carry both the JSON pointer
// reported by the validator and the dotted document path used by forms.
package validation
