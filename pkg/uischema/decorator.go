package uischema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// Decorator applies overlays to contract definitions.
type Decorator struct {
	store *Store
}

// NewDecorator builds a Decorator backed by the provided store. When store is
// nil or empty, the decorator becomes a no-op.
func NewDecorator(store *Store) *Decorator {
	return &Decorator{store: store}
}

// Decorate returns def with its overlay applied. The schema is cloned before
// any hint is written, so the caller's definition is never modified. A field
// path that does not exist in the schema is an error.
func (d *Decorator) Decorate(def contracts.Definition) (contracts.Definition, error) {
	if d == nil || d.store.Empty() {
		return def, nil
	}
	overlay, ok := d.store.Overlay(def.TypeID)
	if !ok {
		return def, nil
	}

	out := def
	out.Metadata = applyMetadata(def.Metadata, overlay.Contract)
	out.Schema = def.Schema.Clone()
	if out.Schema == nil {
		return contracts.Definition{}, fmt.Errorf("uischema: contract %q has no schema", def.TypeID)
	}

	if len(overlay.Contract.Order) > 0 {
		if err := reorder(out.Schema, overlay.Contract.Order); err != nil {
			return contracts.Definition{}, fmt.Errorf("uischema: contract %q (file %s): %w", def.TypeID, overlay.Source, err)
		}
	}

	paths := make([]string, 0, len(overlay.Fields))
	for path := range overlay.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		cfg := overlay.Fields[path]
		target, err := locate(out.Schema, path)
		if err != nil {
			return contracts.Definition{}, fmt.Errorf("uischema: contract %q (file %s) field %q: %w", def.TypeID, overlay.Source, cfg.OriginalPath, err)
		}
		target.WithHint(cfg.Hint())
		if desc := strings.TrimSpace(cfg.Description); desc != "" {
			target.Describe(desc)
		}
	}
	return out, nil
}

// DecorateAll applies Decorate to every definition, stopping at the first
// failure.
func (d *Decorator) DecorateAll(defs []contracts.Definition) ([]contracts.Definition, error) {
	out := make([]contracts.Definition, 0, len(defs))
	for _, def := range defs {
		decorated, err := d.Decorate(def)
		if err != nil {
			return nil, err
		}
		out = append(out, decorated)
	}
	return out, nil
}

func applyMetadata(meta contracts.Metadata, cfg ContractConfig) contracts.Metadata {
	if v := strings.TrimSpace(cfg.Label); v != "" {
		meta.Label = v
	}
	if v := strings.TrimSpace(cfg.Description); v != "" {
		meta.Description = v
	}
	if v := strings.TrimSpace(cfg.Icon); v != "" {
		meta.Icon = v
	}
	if v := strings.TrimSpace(cfg.Category); v != "" {
		meta.Category = v
	}
	return meta
}

// locate returns the outermost definition at path, so hints written to it
// take precedence over hints declared deeper in the wrapper chain.
func locate(root *schema.Def, path string) (*schema.Def, error) {
	steps, err := ParseFieldPath(path)
	if err != nil {
		return nil, err
	}
	current := root
	for _, step := range steps {
		kind, resolved := schema.Resolve(current)
		if step.Element {
			if kind != schema.KindArray || resolved.Element == nil {
				return nil, fmt.Errorf("%s is not an array", kind)
			}
			current = resolved.Element
			continue
		}
		if kind != schema.KindObject {
			return nil, fmt.Errorf("cannot select %q from %s", step.Name, kind)
		}
		next := fieldDef(resolved, step.Name)
		if next == nil {
			return nil, fmt.Errorf("unknown field %q", step.Name)
		}
		current = next
	}
	return current, nil
}

func fieldDef(obj *schema.Def, name string) *schema.Def {
	for _, field := range obj.Fields {
		if field.Name == name {
			return field.Def
		}
	}
	return nil
}

// reorder moves the named root fields to the front in the given order; the
// remaining fields keep their relative order.
func reorder(root *schema.Def, order []string) error {
	kind, obj := schema.Resolve(root)
	if kind != schema.KindObject {
		return fmt.Errorf("order requires an object schema, got %s", kind)
	}
	index := make(map[string]int, len(obj.Fields))
	for i, field := range obj.Fields {
		index[field.Name] = i
	}

	placed := make(map[string]struct{}, len(order))
	fields := make([]schema.FieldDef, 0, len(obj.Fields))
	for _, raw := range order {
		name := strings.TrimSpace(raw)
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("order names unknown field %q", name)
		}
		if _, dup := placed[name]; dup {
			return fmt.Errorf("order lists %q twice", name)
		}
		placed[name] = struct{}{}
		fields = append(fields, obj.Fields[i])
	}
	for _, field := range obj.Fields {
		if _, ok := placed[field.Name]; !ok {
			fields = append(fields, field)
		}
	}
	obj.Fields = fields
	return nil
}
