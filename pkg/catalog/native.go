package catalog

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// NativeAdapterName identifies the built-in YAML/JSON contract format.
const NativeAdapterName = "native"

var nativeFieldKeys = map[string]struct{}{
	"type":        {},
	"optional":    {},
	"nullable":    {},
	"default":     {},
	"description": {},
	"fields":      {},
	"items":       {},
	"widget":      {},
	"group":       {},
	"bucket":      {},
	"label":       {},
	"help":        {},
	"placeholder": {},
}

var nativeContractKeys = map[string]struct{}{
	"type":        {},
	"label":       {},
	"description": {},
	"icon":        {},
	"category":    {},
	"fields":      {},
	"defaults":    {},
}

type nativeAdapter struct{}

// NativeAdapter returns the adapter for the native contract format:
//
//	type: hero
//	label: Hero
//	fields:
//	  title: string
//	  subtitle: string?
//	  cta:
//	    type: object
//	    optional: true
//	    fields:
//	      text: string
//	      link: string?
//	  showScrollIndicator: {type: boolean, default: true}
//
// A file holds one contract, a "contracts" list, or a multi-document stream.
func NativeAdapter() Adapter {
	return nativeAdapter{}
}

func (nativeAdapter) Name() string { return NativeAdapterName }

func (nativeAdapter) Detect(doc Document) bool {
	switch doc.Format() {
	case FormatYAML, FormatJSON:
	default:
		return false
	}
	docs, err := yamlnode.ParseAll(doc.Raw())
	if err != nil {
		return false
	}
	root := docs[0]
	return yamlnode.Has(root, "contracts") || (yamlnode.Has(root, "type") && yamlnode.Has(root, "fields"))
}

func (nativeAdapter) Definitions(_ context.Context, doc Document) ([]contracts.Definition, error) {
	return Decode(doc.Raw())
}

// Decode parses native contract documents into definitions, keeping field
// order as written.
func Decode(raw []byte) ([]contracts.Definition, error) {
	docs, err := yamlnode.ParseAll(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	var out []contracts.Definition
	for _, root := range docs {
		if list := yamlnode.Get(root, "contracts"); list != nil {
			if !yamlnode.IsSequence(list) {
				return nil, fmt.Errorf("catalog: contracts must be a list")
			}
			for idx, item := range yamlnode.Items(list) {
				def, err := decodeContract(item, fmt.Sprintf("contracts[%d]", idx))
				if err != nil {
					return nil, err
				}
				out = append(out, def)
			}
			continue
		}
		def, err := decodeContract(root, "")
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func decodeContract(n *yaml.Node, at string) (contracts.Definition, error) {
	if !yamlnode.IsMapping(n) {
		return contracts.Definition{}, fmt.Errorf("catalog: contract must be a mapping at %s", orRoot(at))
	}
	for _, key := range yamlnode.Keys(n) {
		if _, ok := nativeContractKeys[key]; !ok {
			return contracts.Definition{}, fmt.Errorf("catalog: unsupported key %q at %s", key, orRoot(at))
		}
	}

	typeID := yamlnode.String(n, "type")
	if typeID == "" {
		return contracts.Definition{}, fmt.Errorf("catalog: type is required at %s", orRoot(at))
	}
	at = joinAt(at, typeID)

	fields := yamlnode.Get(n, "fields")
	if fields == nil {
		return contracts.Definition{}, fmt.Errorf("catalog: fields are required at %s", at)
	}
	root, err := decodeObject(fields, joinAt(at, "fields"))
	if err != nil {
		return contracts.Definition{}, err
	}

	def := contracts.Definition{
		TypeID: typeID,
		Schema: root,
		Metadata: contracts.Metadata{
			Label:       yamlnode.String(n, "label"),
			Description: yamlnode.String(n, "description"),
			Icon:        yamlnode.String(n, "icon"),
			Category:    yamlnode.String(n, "category"),
		},
	}

	if raw := yamlnode.Get(n, "defaults"); raw != nil {
		value, err := yamlnode.Value(raw)
		if err != nil {
			return contracts.Definition{}, fmt.Errorf("catalog: defaults at %s: %w", at, err)
		}
		data, ok := value.(map[string]any)
		if !ok {
			return contracts.Definition{}, fmt.Errorf("catalog: defaults must be a mapping at %s", at)
		}
		def.DefaultData = data
	}
	return def, nil
}

func decodeObject(n *yaml.Node, at string) (*schema.Def, error) {
	if !yamlnode.IsMapping(n) {
		return nil, fmt.Errorf("catalog: fields must be a mapping at %s", at)
	}
	obj := schema.Object()
	for _, pair := range yamlnode.Pairs(n) {
		def, err := decodeField(pair.Value, joinAt(at, pair.Key))
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, schema.Field(pair.Key, def))
	}
	return obj, nil
}

func decodeField(n *yaml.Node, at string) (*schema.Def, error) {
	if n == nil || yamlnode.IsNull(n) {
		return nil, fmt.Errorf("catalog: field definition is empty at %s", at)
	}
	if n.Kind == yaml.ScalarNode {
		name := strings.TrimSpace(n.Value)
		optional := strings.HasSuffix(name, "?")
		base, err := scalarDef(strings.TrimSuffix(name, "?"), at)
		if err != nil {
			return nil, err
		}
		if optional {
			return schema.Optional(base), nil
		}
		return base, nil
	}
	if !yamlnode.IsMapping(n) {
		return nil, fmt.Errorf("catalog: field must be a type name or a mapping at %s", at)
	}
	for _, key := range yamlnode.Keys(n) {
		if _, ok := nativeFieldKeys[key]; !ok {
			return nil, fmt.Errorf("catalog: unsupported key %q at %s", key, at)
		}
	}

	typ := yamlnode.String(n, "type")
	if typ == "" {
		switch {
		case yamlnode.Has(n, "fields"):
			typ = string(schema.TagObject)
		case yamlnode.Has(n, "items"):
			typ = string(schema.TagArray)
		default:
			return nil, fmt.Errorf("catalog: type is required at %s", at)
		}
	}

	var (
		base *schema.Def
		err  error
	)
	switch schema.Tag(typ) {
	case schema.TagObject:
		fields := yamlnode.Get(n, "fields")
		if fields == nil {
			base = schema.Object()
		} else if base, err = decodeObject(fields, joinAt(at, "fields")); err != nil {
			return nil, err
		}
	case schema.TagArray:
		items := yamlnode.Get(n, "items")
		if items == nil {
			return nil, fmt.Errorf("catalog: items are required at %s", at)
		}
		element, err := decodeField(items, joinAt(at, "items"))
		if err != nil {
			return nil, err
		}
		base = schema.Array(element)
	default:
		if base, err = scalarDef(typ, at); err != nil {
			return nil, err
		}
	}

	base.Description = yamlnode.String(n, "description")
	base.WithHint(schema.Hint{
		Widget:      yamlnode.String(n, "widget"),
		Group:       yamlnode.String(n, "group"),
		Bucket:      yamlnode.String(n, "bucket"),
		Label:       yamlnode.String(n, "label"),
		Help:        yamlnode.String(n, "help"),
		Placeholder: yamlnode.String(n, "placeholder"),
	})

	def := base
	nullable, _, err := yamlnode.Bool(n, "nullable")
	if err != nil {
		return nil, fmt.Errorf("catalog: nullable must be a boolean at %s", at)
	}
	if nullable {
		def = schema.Nullable(def)
	}
	if raw := yamlnode.Get(n, "default"); raw != nil {
		value, err := yamlnode.Value(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog: default at %s: %w", at, err)
		}
		def = schema.Defaulted(def, value)
	}
	optional, _, err := yamlnode.Bool(n, "optional")
	if err != nil {
		return nil, fmt.Errorf("catalog: optional must be a boolean at %s", at)
	}
	if optional {
		def = schema.Optional(def)
	}
	return def, nil
}

func scalarDef(name, at string) (*schema.Def, error) {
	switch schema.Tag(name) {
	case schema.TagString:
		return schema.String(), nil
	case schema.TagNumber:
		return schema.Number(), nil
	case schema.TagInteger:
		return schema.Integer(), nil
	case schema.TagBoolean:
		return schema.Boolean(), nil
	}
	if name == "any" {
		return &schema.Def{}, nil
	}
	return nil, fmt.Errorf("catalog: unsupported type %q at %s", name, at)
}

func joinAt(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}

func orRoot(at string) string {
	if at == "" {
		return "#"
	}
	return at
}
