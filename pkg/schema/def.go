package schema

// Tag is the declared type tag of a Def.
type Tag string

const (
	TagObject   Tag = "object"
	TagArray    Tag = "array"
	TagString   Tag = "string"
	TagNumber   Tag = "number"
	TagInteger  Tag = "integer"
	TagBoolean  Tag = "boolean"
	TagOptional Tag = "optional"
	TagDefault  Tag = "default"
	TagNullable Tag = "nullable"
	TagEffect   Tag = "effect"
)

// IsModifier reports whether the tag wraps an inner definition.
func (t Tag) IsModifier() bool {
	switch t {
	case TagOptional, TagDefault, TagNullable, TagEffect:
		return true
	}
	return false
}

// Def is a schema node as authored. Object shape is signalled by a non-nil
// Fields slice, array shape by a non-nil Element; modifiers wrap Inner.
type Def struct {
	Tag         Tag
	Fields      []FieldDef
	Element     *Def
	Inner       *Def
	Default     any
	Description string
	Hint        Hint
}

// FieldDef is one named, ordered member of an object Def.
type FieldDef struct {
	Name string
	Def  *Def
}

// Hint is an explicit presentation annotation carried next to a field.
type Hint struct {
	Widget      string `json:"widget,omitempty" yaml:"widget,omitempty"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty"`
	Bucket      string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Help        string `json:"help,omitempty" yaml:"help,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// IsZero reports whether no attribute is set.
func (h Hint) IsZero() bool {
	return h == Hint{}
}

// Merge returns h with every non-empty attribute of other applied on top.
func (h Hint) Merge(other Hint) Hint {
	if other.Widget != "" {
		h.Widget = other.Widget
	}
	if other.Group != "" {
		h.Group = other.Group
	}
	if other.Bucket != "" {
		h.Bucket = other.Bucket
	}
	if other.Label != "" {
		h.Label = other.Label
	}
	if other.Help != "" {
		h.Help = other.Help
	}
	if other.Placeholder != "" {
		h.Placeholder = other.Placeholder
	}
	return h
}

// Object declares an object with ordered fields.
func Object(fields ...FieldDef) *Def {
	return &Def{Tag: TagObject, Fields: append([]FieldDef{}, fields...)}
}

// Field pairs a name with its definition.
func Field(name string, def *Def) FieldDef {
	return FieldDef{Name: name, Def: def}
}

// Array declares a sequence of element.
func Array(element *Def) *Def {
	return &Def{Tag: TagArray, Element: element}
}

func String() *Def  { return &Def{Tag: TagString} }
func Number() *Def  { return &Def{Tag: TagNumber} }
func Integer() *Def { return &Def{Tag: TagInteger} }
func Boolean() *Def { return &Def{Tag: TagBoolean} }

// Optional marks inner as possibly absent.
func Optional(inner *Def) *Def {
	return &Def{Tag: TagOptional, Inner: inner}
}

// Nullable marks inner as accepting null.
func Nullable(inner *Def) *Def {
	return &Def{Tag: TagNullable, Inner: inner}
}

// Defaulted attaches a default value to inner.
func Defaulted(inner *Def, value any) *Def {
	return &Def{Tag: TagDefault, Inner: inner, Default: value}
}

// Effect wraps inner in a refinement or transform. The engine only ever
// looks at the pre-transform shape.
func Effect(inner *Def) *Def {
	return &Def{Tag: TagEffect, Inner: inner}
}

// WithHint merges h into the definition's hint and returns d.
func (d *Def) WithHint(h Hint) *Def {
	if d == nil {
		return nil
	}
	d.Hint = d.Hint.Merge(h)
	return d
}

// Describe sets the description and returns d.
func (d *Def) Describe(text string) *Def {
	if d == nil {
		return nil
	}
	d.Description = text
	return d
}

// Clone returns a deep copy of d. Shared or cyclic sub-definitions keep
// their sharing in the copy.
func (d *Def) Clone() *Def {
	return cloneDef(d, make(map[*Def]*Def))
}

func cloneDef(d *Def, seen map[*Def]*Def) *Def {
	if d == nil {
		return nil
	}
	if out, ok := seen[d]; ok {
		return out
	}
	out := &Def{
		Tag:         d.Tag,
		Default:     d.Default,
		Description: d.Description,
		Hint:        d.Hint,
	}
	seen[d] = out
	if d.Fields != nil {
		out.Fields = make([]FieldDef, len(d.Fields))
		for i, field := range d.Fields {
			out.Fields[i] = FieldDef{Name: field.Name, Def: cloneDef(field.Def, seen)}
		}
	}
	out.Element = cloneDef(d.Element, seen)
	out.Inner = cloneDef(d.Inner, seen)
	return out
}
