package jsonschema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// ExtensionKey is the vendor keyword carrying presentation hints and
// contract metadata.
const ExtensionKey = "x-section"

var supportedSchemaKeys = map[string]struct{}{
	"$schema":              {},
	"$id":                  {},
	"$defs":                {},
	"definitions":          {},
	"$ref":                 {},
	"$anchor":              {},
	"$comment":             {},
	"type":                 {},
	"properties":           {},
	"required":             {},
	"additionalProperties": {},
	"items":                {},
	"oneOf":                {},
	"anyOf":                {},
	"allOf":                {},
	"enum":                 {},
	"const":                {},
	"title":                {},
	"description":          {},
	"default":              {},
	"examples":             {},
	"readOnly":             {},
	"deprecated":           {},
	"format":               {},
	"minimum":              {},
	"maximum":              {},
	"exclusiveMinimum":     {},
	"exclusiveMaximum":     {},
	"multipleOf":           {},
	"minLength":            {},
	"maxLength":            {},
	"pattern":              {},
	"minItems":             {},
	"maxItems":             {},
	"uniqueItems":          {},
}

// Keywords that refine a value without changing its shape.
var refinementKeys = []string{
	"enum", "const", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum",
	"multipleOf", "minLength", "maxLength", "pattern", "minItems", "maxItems", "uniqueItems",
}

var extensionKeys = map[string]struct{}{
	"widget":      {},
	"group":       {},
	"bucket":      {},
	"label":       {},
	"help":        {},
	"placeholder": {},
	"order":       {},
	"type":        {},
	"icon":        {},
	"category":    {},
}

type converter struct {
	refs *refResolver
	// source is the decoded document, set when contracts are discovered.
	source map[string]any
}

func newConverter(root *yaml.Node) *converter {
	return &converter{refs: newRefResolver(root)}
}

// Convert turns a standalone JSON Schema (JSON or YAML) into a schema
// definition. Local $ref pointers and $anchor names are followed.
func Convert(raw []byte) (*schema.Def, error) {
	root, err := yamlnode.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	return newConverter(root).convert(root, "#")
}

func (c *converter) convert(n *yaml.Node, at string) (*schema.Def, error) {
	n = yamlnode.Resolve(n)
	if n == nil {
		return nil, fmt.Errorf("jsonschema: schema is nil at %s", at)
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		if n.Value == "true" {
			return &schema.Def{}, nil
		}
		return nil, fmt.Errorf("jsonschema: false schema is not supported at %s", at)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("jsonschema: schema must be an object at %s", at)
	}
	if err := validateKeywords(n, at); err != nil {
		return nil, err
	}

	base, nullable, err := c.shape(n, at)
	if err != nil {
		return nil, err
	}

	hint, err := hintFrom(n, at)
	if err != nil {
		return nil, err
	}
	if title := yamlnode.String(n, "title"); title != "" && hint.Label == "" {
		hint.Label = title
	}
	if description := yamlnode.String(n, "description"); description != "" {
		base.Description = description
	}

	def := base
	if hasRefinement(n) {
		def = schema.Effect(def)
	}
	if nullable {
		def = schema.Nullable(def)
	}
	if raw := yamlnode.Get(n, "default"); raw != nil {
		value, err := yamlnode.Value(raw)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: default at %s: %w", at, err)
		}
		def = schema.Defaulted(def, value)
	}
	// The outermost wrapper carries the hint so it overrides any hint on a
	// referenced definition.
	def.WithHint(hint)
	return def, nil
}

// shape converts the structural part of n and reports whether null is
// accepted alongside it.
func (c *converter) shape(n *yaml.Node, at string) (*schema.Def, bool, error) {
	if ref := yamlnode.String(n, "$ref"); ref != "" {
		target, err := c.refs.enter(ref, at)
		if err != nil {
			return nil, false, err
		}
		defer c.refs.leave(ref)
		def, err := c.convert(target, ref)
		if err != nil {
			return nil, false, err
		}
		return def, false, nil
	}

	if all := yamlnode.Get(n, "allOf"); all != nil {
		items := yamlnode.Items(all)
		if len(items) != 1 {
			return nil, false, fmt.Errorf("jsonschema: allOf must hold exactly one schema at %s", at)
		}
		def, err := c.convert(items[0], joinPath(at, "allOf", "0"))
		return def, false, err
	}

	for _, key := range []string{"oneOf", "anyOf"} {
		if branches := yamlnode.Get(n, key); branches != nil {
			return c.nullableUnion(key, yamlnode.Items(branches), joinPath(at, key))
		}
	}

	types, nullable, err := readTypes(n, at)
	if err != nil {
		return nil, false, err
	}

	var typ string
	switch len(types) {
	case 0:
		typ = inferType(n)
		if typ == "" && nullable {
			return nil, false, fmt.Errorf("jsonschema: null-only type is not supported at %s", at)
		}
	case 1:
		typ = types[0]
	default:
		return nil, false, fmt.Errorf("jsonschema: union type %v is not supported at %s", types, at)
	}

	switch typ {
	case "object":
		def, err := c.object(n, at)
		return def, nullable, err
	case "array":
		def, err := c.array(n, at)
		return def, nullable, err
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
	return nil, false, fmt.Errorf("jsonschema: unsupported type %q at %s", typ, at)
}

// nullableUnion accepts the "T or null" shape only; any other union would
// need a variant picker the editor does not offer.
func (c *converter) nullableUnion(key string, branches []*yaml.Node, at string) (*schema.Def, bool, error) {
	var (
		value    *yaml.Node
		valueIdx int
		nulls    int
	)
	for idx, branch := range branches {
		if isNullSchema(branch) {
			nulls++
			continue
		}
		if value != nil {
			return nil, false, fmt.Errorf("jsonschema: %s with more than one non-null branch is not supported at %s", key, at)
		}
		value, valueIdx = branch, idx
	}
	if value == nil {
		return nil, false, fmt.Errorf("jsonschema: %s has no non-null branch at %s", key, at)
	}
	def, err := c.convert(value, joinPath(at, fmt.Sprint(valueIdx)))
	if err != nil {
		return nil, false, err
	}
	return def, nulls > 0, nil
}

func (c *converter) object(n *yaml.Node, at string) (*schema.Def, error) {
	required := map[string]struct{}{}
	if raw := yamlnode.Get(n, "required"); raw != nil {
		names, err := yamlnode.Strings(raw)
		if err != nil || !yamlnode.IsSequence(raw) {
			return nil, fmt.Errorf("jsonschema: required must be an array of strings at %s", at)
		}
		for _, name := range names {
			required[name] = struct{}{}
		}
	}

	props := yamlnode.Get(n, "properties")
	if props != nil && !yamlnode.IsMapping(props) {
		return nil, fmt.Errorf("jsonschema: properties must be an object at %s", at)
	}
	pairs, err := orderedProperties(n, props, at)
	if err != nil {
		return nil, err
	}

	obj := schema.Object()
	for _, pair := range pairs {
		def, err := c.convert(pair.Value, joinPath(at, "properties", pair.Key))
		if err != nil {
			return nil, err
		}
		if _, ok := required[pair.Key]; !ok {
			def = schema.Optional(def)
		}
		obj.Fields = append(obj.Fields, schema.Field(pair.Key, def))
	}
	return obj, nil
}

func (c *converter) array(n *yaml.Node, at string) (*schema.Def, error) {
	items := yamlnode.Get(n, "items")
	if items == nil {
		return schema.Array(&schema.Def{}), nil
	}
	if yamlnode.IsSequence(items) {
		return nil, fmt.Errorf("jsonschema: tuple items are not supported at %s", at)
	}
	element, err := c.convert(items, joinPath(at, "items"))
	if err != nil {
		return nil, err
	}
	return schema.Array(element), nil
}

// orderedProperties returns properties in document order, moving the names
// listed in x-section.order to the front.
func orderedProperties(n, props *yaml.Node, at string) ([]yamlnode.Pair, error) {
	pairs := yamlnode.Pairs(props)
	ext := yamlnode.Get(n, ExtensionKey)
	raw := yamlnode.Get(ext, "order")
	if raw == nil {
		return pairs, nil
	}
	order, err := yamlnode.Strings(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s.order %v at %s", ExtensionKey, err, at)
	}

	byName := make(map[string]yamlnode.Pair, len(pairs))
	for _, pair := range pairs {
		byName[pair.Key] = pair
	}
	out := make([]yamlnode.Pair, 0, len(pairs))
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		pair, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("jsonschema: %s.order names unknown property %q at %s", ExtensionKey, name, at)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, pair)
	}
	for _, pair := range pairs {
		if _, ok := seen[pair.Key]; !ok {
			out = append(out, pair)
		}
	}
	return out, nil
}

func readTypes(n *yaml.Node, at string) ([]string, bool, error) {
	raw := yamlnode.Get(n, "type")
	if raw == nil {
		return nil, false, nil
	}
	list, err := yamlnode.Strings(raw)
	if err != nil {
		return nil, false, fmt.Errorf("jsonschema: type %v at %s", err, at)
	}
	var (
		out      []string
		nullable bool
	)
	for _, typ := range list {
		switch typ {
		case "null":
			nullable = true
		case "object", "array", "string", "integer", "number", "boolean":
			out = append(out, typ)
		default:
			return nil, false, fmt.Errorf("jsonschema: unsupported type %q at %s", typ, at)
		}
	}
	return out, nullable, nil
}

func inferType(n *yaml.Node) string {
	switch {
	case yamlnode.Has(n, "properties"):
		return "object"
	case yamlnode.Has(n, "items"):
		return "array"
	}
	var sample *yaml.Node
	if c := yamlnode.Get(n, "const"); c != nil {
		sample = c
	} else if values := yamlnode.Items(yamlnode.Get(n, "enum")); len(values) > 0 {
		sample = values[0]
	}
	if sample == nil || sample.Kind != yaml.ScalarNode {
		return ""
	}
	switch sample.Tag {
	case "!!str":
		return "string"
	case "!!int":
		return "integer"
	case "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	}
	return ""
}

func isNullSchema(n *yaml.Node) bool {
	if !yamlnode.IsMapping(n) {
		return false
	}
	if yamlnode.String(n, "type") == "null" {
		return true
	}
	c := yamlnode.Get(n, "const")
	return c != nil && yamlnode.IsNull(c)
}

func hasRefinement(n *yaml.Node) bool {
	for _, key := range refinementKeys {
		if yamlnode.Has(n, key) {
			return true
		}
	}
	return false
}

func hintFrom(n *yaml.Node, at string) (schema.Hint, error) {
	ext := yamlnode.Get(n, ExtensionKey)
	if ext == nil {
		return schema.Hint{}, nil
	}
	if !yamlnode.IsMapping(ext) {
		return schema.Hint{}, fmt.Errorf("jsonschema: %s must be an object at %s", ExtensionKey, at)
	}
	for _, key := range yamlnode.Keys(ext) {
		if _, ok := extensionKeys[key]; !ok {
			return schema.Hint{}, fmt.Errorf("jsonschema: unsupported %s key %q at %s", ExtensionKey, key, at)
		}
	}
	return schema.Hint{
		Widget:      yamlnode.String(ext, "widget"),
		Group:       yamlnode.String(ext, "group"),
		Bucket:      yamlnode.String(ext, "bucket"),
		Label:       yamlnode.String(ext, "label"),
		Help:        yamlnode.String(ext, "help"),
		Placeholder: yamlnode.String(ext, "placeholder"),
	}, nil
}

func validateKeywords(n *yaml.Node, at string) error {
	for _, key := range yamlnode.Keys(n) {
		if isVendorExtension(key) {
			continue
		}
		if _, ok := supportedSchemaKeys[key]; !ok {
			return fmt.Errorf("jsonschema: unsupported keyword %q at %s", key, at)
		}
	}
	return nil
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func joinPath(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}
