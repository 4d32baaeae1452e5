package openapi

import (
	"context"

	"github.com/goliatone/go-sectionform/internal/openapi/parser"
	"github.com/goliatone/go-sectionform/pkg/contracts"
)

// Parser turns an OpenAPI payload into contract definitions.
type Parser interface {
	Definitions(ctx context.Context, raw []byte) ([]contracts.Definition, error)
}

// ParserOptions exposes the parser toggles.
type ParserOptions struct {
	// ValidateDocument runs full OpenAPI validation before conversion.
	ValidateDocument bool

	// AllowExternalRefs lets the loader follow refs to other documents.
	AllowExternalRefs bool

	// TypeExtension overrides the component extension naming the contract
	// type. Defaults to x-section-type.
	TypeExtension string

	// HintExtension overrides the extension carrying widget hints. Defaults
	// to x-section.
	HintExtension string
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ValidateDocument = enabled
	}
}

// WithExternalRefs toggles loading of external references.
func WithExternalRefs(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowExternalRefs = enabled
	}
}

// WithTypeExtension renames the contract type extension.
func WithTypeExtension(name string) ParserOption {
	return func(opts *ParserOptions) {
		opts.TypeExtension = name
	}
}

// WithHintExtension renames the widget hint extension.
func WithHintExtension(name string) ParserOption {
	return func(opts *ParserOptions) {
		opts.HintExtension = name
	}
}

// NewParserOptions applies ParserOption functions over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{ValidateDocument: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// NewParser constructs the kin-openapi backed parser.
func NewParser(options ...ParserOption) Parser {
	cfg := NewParserOptions(options...)
	return parser.New(parser.Options{
		Validate:          cfg.ValidateDocument,
		AllowExternalRefs: cfg.AllowExternalRefs,
		TypeExtension:     cfg.TypeExtension,
		HintExtension:     cfg.HintExtension,
	})
}
