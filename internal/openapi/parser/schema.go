package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

type converter struct {
	root    *yaml.Node
	hintKey string
	visited map[*openapi3.Schema]string
}

func newConverter(root *yaml.Node, hintKey string) *converter {
	return &converter{
		root:    root,
		hintKey: hintKey,
		visited: make(map[*openapi3.Schema]string),
	}
}

// convert maps a kin-openapi schema onto a Def. raw is the matching node of
// the source document, used only for property order; it may be nil.
func (c *converter) convert(ref *openapi3.SchemaRef, raw *yaml.Node, at string) (*schema.Def, error) {
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi parser: unresolved schema at %s", at)
	}
	if ref.Ref != "" && strings.HasPrefix(ref.Ref, "#") {
		if target, err := yamlnode.Pointer(c.root, ref.Ref); err == nil {
			raw = target
		}
	}

	src := ref.Value
	if first, seen := c.visited[src]; seen {
		return nil, fmt.Errorf("openapi parser: recursive schema at %s (first seen at %s)", at, first)
	}
	c.visited[src] = at
	defer delete(c.visited, src)

	base, nullable, err := c.shape(src, raw, at)
	if err != nil {
		return nil, err
	}
	if src.Description != "" {
		base.Description = src.Description
	}

	hint := c.hint(src)
	if hint.Label == "" {
		hint.Label = src.Title
	}

	def := base
	if hasRefinement(src) {
		def = schema.Effect(def)
	}
	if nullable {
		def = schema.Nullable(def)
	}
	if src.Default != nil {
		def = schema.Defaulted(def, src.Default)
	}
	def.WithHint(hint)
	return def, nil
}

func (c *converter) shape(src *openapi3.Schema, raw *yaml.Node, at string) (*schema.Def, bool, error) {
	if len(src.AllOf) > 0 {
		if len(src.AllOf) != 1 {
			return nil, false, fmt.Errorf("openapi parser: allOf must hold exactly one schema at %s", at)
		}
		def, err := c.convert(src.AllOf[0], child(raw, "allOf", 0), at+"/allOf/0")
		return def, src.Nullable, err
	}
	for _, union := range []struct {
		key  string
		refs openapi3.SchemaRefs
	}{{"oneOf", src.OneOf}, {"anyOf", src.AnyOf}} {
		if len(union.refs) > 0 {
			return c.nullableUnion(union.key, union.refs, raw, at)
		}
	}

	var types []string
	if src.Type != nil {
		types = src.Type.Slice()
	}
	nullable := src.Nullable
	var typ string
	for _, candidate := range types {
		if candidate == "null" {
			nullable = true
			continue
		}
		if typ != "" {
			return nil, false, fmt.Errorf("openapi parser: union type %v is not supported at %s", types, at)
		}
		typ = candidate
	}
	if typ == "" {
		switch {
		case len(src.Properties) > 0:
			typ = "object"
		case src.Items != nil:
			typ = "array"
		}
	}

	switch typ {
	case "object":
		def, err := c.object(src, raw, at)
		return def, nullable, err
	case "array":
		if src.Items == nil {
			return schema.Array(&schema.Def{}), nullable, nil
		}
		element, err := c.convert(src.Items, yamlnode.Get(raw, "items"), at+"/items")
		if err != nil {
			return nil, false, err
		}
		return schema.Array(element), nullable, nil
	case "string":
		return schema.String(), nullable, nil
	case "number":
		return schema.Number(), nullable, nil
	case "integer":
		return schema.Integer(), nullable, nil
	case "boolean":
		return schema.Boolean(), nullable, nil
	case "":
		return &schema.Def{}, nullable, nil
	}
	return nil, false, fmt.Errorf("openapi parser: unsupported type %q at %s", typ, at)
}

func (c *converter) nullableUnion(key string, refs openapi3.SchemaRefs, raw *yaml.Node, at string) (*schema.Def, bool, error) {
	var (
		value    *openapi3.SchemaRef
		valueIdx int
		nulls    int
	)
	for idx, ref := range refs {
		if ref != nil && ref.Value != nil && isNullSchema(ref.Value) {
			nulls++
			continue
		}
		if value != nil {
			return nil, false, fmt.Errorf("openapi parser: %s with more than one non-null branch is not supported at %s", key, at)
		}
		value, valueIdx = ref, idx
	}
	if value == nil {
		return nil, false, fmt.Errorf("openapi parser: %s has no non-null branch at %s", key, at)
	}
	def, err := c.convert(value, child(raw, key, valueIdx), fmt.Sprintf("%s/%s/%d", at, key, valueIdx))
	if err != nil {
		return nil, false, err
	}
	return def, nulls > 0, nil
}

func (c *converter) object(src *openapi3.Schema, raw *yaml.Node, at string) (*schema.Def, error) {
	required := make(map[string]struct{}, len(src.Required))
	for _, name := range src.Required {
		required[name] = struct{}{}
	}
	rawProps := yamlnode.Get(raw, "properties")

	obj := schema.Object()
	for _, name := range propertyOrder(src.Properties, rawProps) {
		def, err := c.convert(src.Properties[name], yamlnode.Get(rawProps, name), at+"/properties/"+name)
		if err != nil {
			return nil, err
		}
		if _, ok := required[name]; !ok {
			def = schema.Optional(def)
		}
		obj.Fields = append(obj.Fields, schema.Field(name, def))
	}
	return obj, nil
}

func (c *converter) hint(src *openapi3.Schema) schema.Hint {
	ext := extensionMap(src.Extensions, c.hintKey)
	return schema.Hint{
		Widget:      stringValue(ext["widget"]),
		Group:       stringValue(ext["group"]),
		Bucket:      stringValue(ext["bucket"]),
		Label:       stringValue(ext["label"]),
		Help:        stringValue(ext["help"]),
		Placeholder: stringValue(ext["placeholder"]),
	}
}

// propertyOrder lists property names in source order, falling back to
// lexical order for names the raw tree does not show.
func propertyOrder(props openapi3.Schemas, raw *yaml.Node) []string {
	out := make([]string, 0, len(props))
	seen := make(map[string]struct{}, len(props))
	for _, key := range yamlnode.Keys(raw) {
		if _, ok := props[key]; ok {
			out = append(out, key)
			seen[key] = struct{}{}
		}
	}
	var rest []string
	for key := range props {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func child(raw *yaml.Node, key string, idx int) *yaml.Node {
	items := yamlnode.Items(yamlnode.Get(raw, key))
	if idx < 0 || idx >= len(items) {
		return nil
	}
	return items[idx]
}

func isNullSchema(src *openapi3.Schema) bool {
	if src.Type == nil {
		return false
	}
	types := src.Type.Slice()
	return len(types) == 1 && types[0] == "null"
}

func hasRefinement(src *openapi3.Schema) bool {
	return len(src.Enum) > 0 ||
		src.Min != nil || src.Max != nil ||
		src.MinLength > 0 || src.MaxLength != nil ||
		src.Pattern != "" ||
		src.MinItems > 0 || src.MaxItems != nil ||
		src.UniqueItems
}
