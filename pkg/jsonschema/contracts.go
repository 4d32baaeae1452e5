package jsonschema

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/validation"
)

// DiscoveryOptions configures how contract type ids are derived when the
// document does not declare x-section.type.
type DiscoveryOptions struct {
	// FallbackTypeID is used for a root schema without x-section.type or $id.
	FallbackTypeID string
}

// Definitions parses raw and returns the contracts it declares. A root
// schema carrying x-section.type is one contract; otherwise every $defs
// entry carrying x-section.type is one; otherwise the root schema is a single
// contract named after its $id or opts.FallbackTypeID.
func Definitions(raw []byte, opts DiscoveryOptions) ([]contracts.Definition, error) {
	root, err := yamlnode.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	if !yamlnode.IsMapping(root) {
		return nil, fmt.Errorf("jsonschema: schema must be an object at #")
	}
	if err := validateDialect(root); err != nil {
		return nil, err
	}

	source, err := sourceDocument(root)
	if err != nil {
		return nil, err
	}
	c := newConverter(root)
	c.source = source
	if typeID := extensionString(root, "type"); typeID != "" {
		def, err := c.definition(typeID, root, "#")
		if err != nil {
			return nil, err
		}
		return []contracts.Definition{def}, nil
	}

	var out []contracts.Definition
	for _, key := range []string{"$defs", "definitions"} {
		for _, pair := range yamlnode.Pairs(yamlnode.Get(root, key)) {
			typeID := extensionString(pair.Value, "type")
			if typeID == "" {
				continue
			}
			def, err := c.definition(typeID, pair.Value, joinPath("#", key, pair.Key))
			if err != nil {
				return nil, err
			}
			out = append(out, def)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	typeID := typeIDFromLocation(yamlnode.String(root, "$id"))
	if typeID == "" {
		typeID = strings.TrimSpace(opts.FallbackTypeID)
	}
	if typeID == "" {
		return nil, fmt.Errorf("jsonschema: cannot derive contract type: set %s.type or $id", ExtensionKey)
	}
	def, err := c.definition(typeID, root, "#")
	if err != nil {
		return nil, err
	}
	return []contracts.Definition{def}, nil
}

func (c *converter) definition(typeID string, n *yaml.Node, at string) (contracts.Definition, error) {
	def, err := c.convert(n, at)
	if err != nil {
		return contracts.Definition{}, err
	}

	out := contracts.Definition{
		TypeID: typeID,
		Metadata: contracts.Metadata{
			Label:       firstNonEmpty(extensionString(n, "label"), yamlnode.String(n, "title")),
			Description: yamlnode.String(n, "description"),
			Icon:        extensionString(n, "icon"),
			Category:    extensionString(n, "category"),
		},
	}

	// A default on the contract root is the contract's default document.
	if def.Tag == schema.TagDefault {
		data, ok := def.Default.(map[string]any)
		if !ok {
			return contracts.Definition{}, fmt.Errorf("jsonschema: default must be an object at %s", at)
		}
		out.DefaultData = data
		def = def.Inner
	}
	// The root's label and description live in Metadata.
	def.Hint = schema.Hint{}
	def.Description = ""
	out.Schema = def

	constraints, err := validation.FromDocument(c.source, at)
	if err != nil {
		return contracts.Definition{}, fmt.Errorf("jsonschema: constraints of %s: %w", at, err)
	}
	out.Constraints = constraints
	return out, nil
}

// sourceDocument decodes the authored tree for constraint validation. $id is
// dropped so local pointers resolve against the in-memory resource.
func sourceDocument(root *yaml.Node) (map[string]any, error) {
	var doc map[string]any
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("jsonschema: decode schema: %w", err)
	}
	delete(doc, "$id")
	return doc, nil
}

func validateDialect(root *yaml.Node) error {
	value := yamlnode.String(root, "$schema")
	if value == "" {
		return fmt.Errorf("jsonschema: $schema is required")
	}
	if !isDraft202012(value) {
		return fmt.Errorf("jsonschema: unsupported $schema %q", value)
	}
	return nil
}

func isDraft202012(value string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "#")
	switch trimmed {
	case "https://json-schema.org/draft/2020-12/schema", "http://json-schema.org/draft/2020-12/schema":
		return true
	default:
		return false
	}
}

func extensionString(n *yaml.Node, key string) string {
	return yamlnode.String(yamlnode.Get(n, ExtensionKey), key)
}

// typeIDFromLocation derives "hero" from ids such as
// "https://example.com/sections/hero.schema.json" or "hero".
func typeIDFromLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	location = strings.TrimSuffix(location, "/")
	if idx := strings.IndexAny(location, "?#"); idx >= 0 {
		location = location[:idx]
	}
	name := path.Base(location)
	for _, suffix := range []string{".json", ".yaml", ".yml", ".schema"} {
		name = strings.TrimSuffix(name, suffix)
	}
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
