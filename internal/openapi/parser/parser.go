package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

const (
	DefaultTypeExtension = "x-section-type"
	DefaultHintExtension = "x-section"
)

// Options configures the parser.
type Options struct {
	// Validate runs kin-openapi document validation before conversion.
	Validate bool
	// AllowExternalRefs lets kin-openapi follow refs outside the document.
	AllowExternalRefs bool
	// TypeExtension names the component extension holding the contract type.
	TypeExtension string
	// HintExtension names the schema extension holding widget hints.
	HintExtension string
}

// Parser converts OpenAPI component schemas into contract definitions.
type Parser struct {
	options Options
}

// New constructs a Parser with the given options.
func New(options Options) *Parser {
	if strings.TrimSpace(options.TypeExtension) == "" {
		options.TypeExtension = DefaultTypeExtension
	}
	if strings.TrimSpace(options.HintExtension) == "" {
		options.HintExtension = DefaultHintExtension
	}
	return &Parser{options: options}
}

// Definitions loads raw and returns one definition per component schema
// carrying the type extension, in document order.
func (p *Parser) Definitions(ctx context.Context, raw []byte) ([]contracts.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.AllowExternalRefs,
	}
	document, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.Validate {
		if err := document.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	// kin-openapi keeps schemas in maps; the raw tree supplies the order.
	root, err := yamlnode.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: parse document: %w", err)
	}
	components := yamlnode.Get(yamlnode.Get(root, "components"), "schemas")

	var out []contracts.Definition
	for _, pair := range yamlnode.Pairs(components) {
		ref := document.Components.Schemas[pair.Key]
		if ref == nil || ref.Value == nil {
			continue
		}
		typeID := extensionString(ref.Value.Extensions, p.options.TypeExtension)
		if typeID == "" {
			continue
		}
		conv := newConverter(root, p.options.HintExtension)
		at := "#/components/schemas/" + pair.Key
		def, err := conv.convert(ref, pair.Value, at)
		if err != nil {
			return nil, err
		}
		out = append(out, p.definition(typeID, ref.Value, def, at))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("openapi parser: no component schema declares %s", p.options.TypeExtension)
	}
	return out, nil
}

func (p *Parser) definition(typeID string, src *openapi3.Schema, def *schema.Def, at string) contracts.Definition {
	hints := extensionMap(src.Extensions, p.options.HintExtension)
	out := contracts.Definition{
		TypeID: typeID,
		Metadata: contracts.Metadata{
			Label:       firstNonEmpty(stringValue(hints["label"]), src.Title),
			Description: src.Description,
			Icon:        stringValue(hints["icon"]),
			Category:    stringValue(hints["category"]),
		},
	}
	if def.Tag == schema.TagDefault {
		if data, ok := def.Default.(map[string]any); ok {
			out.DefaultData = data
		}
		def = def.Inner
	}
	def.Hint = schema.Hint{}
	def.Description = ""
	out.Schema = def
	out.Constraints = constraints(src)
	return out
}

func extensionString(ext map[string]any, key string) string {
	return strings.TrimSpace(stringValue(ext[key]))
}

func extensionMap(ext map[string]any, key string) map[string]any {
	mapped, _ := ext[key].(map[string]any)
	return mapped
}

func stringValue(value any) string {
	str, _ := value.(string)
	return strings.TrimSpace(str)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
