package contracts

import (
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/validation"
)

// Metadata describes a contract for pickers and listings.
type Metadata struct {
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Definition is the registration input. DefaultData is optional; when nil
// the default is derived from the schema. Constraints carries the authored
// source's own validator (patterns, enums, bounds) that the compiled node
// does not keep.
type Definition struct {
	TypeID      string
	Schema      *schema.Def
	DefaultData map[string]any
	Metadata    Metadata
	Constraints validation.Checker
}

// Contract is a registered, compiled content type.
type Contract struct {
	TypeID   string
	Def      *schema.Def
	Node     *schema.Node
	Metadata Metadata

	defaults    map[string]any
	validator   *validation.Validator
	constraints validation.Checker
	diagnostics diagnostics.List
}

// DefaultData returns a deep copy of the contract's default document.
func (c Contract) DefaultData() map[string]any {
	out, _ := normalize.Clone(c.defaults).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// Validate checks doc against the compiled structure and the source
// constraints, reporting the issues of both.
func (c Contract) Validate(doc any) validation.SchemaValidationResult {
	return c.checker().Validate(doc)
}

func (c Contract) checker() validation.Checker {
	var checkers []validation.Checker
	if c.validator != nil {
		checkers = append(checkers, c.validator)
	}
	if c.constraints != nil {
		checkers = append(checkers, c.constraints)
	}
	return validation.All(checkers...)
}

// JSONSchema returns the JSON Schema derived from the contract.
func (c Contract) JSONSchema() map[string]any {
	if c.validator == nil {
		return validation.JSONSchema(c.Node)
	}
	return c.validator.Schema()
}

// Diagnostics returns the non-fatal findings recorded while compiling the
// contract.
func (c Contract) Diagnostics() diagnostics.List {
	return append(diagnostics.List(nil), c.diagnostics...)
}

// Label falls back to the type id when no label is declared.
func (c Contract) Label() string {
	if c.Metadata.Label != "" {
		return c.Metadata.Label
	}
	return c.TypeID
}

// IsZero reports whether c is the zero contract.
func (c Contract) IsZero() bool {
	return c.TypeID == "" && c.Node == nil
}
