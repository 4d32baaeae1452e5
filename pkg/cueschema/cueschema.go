package cueschema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

const (
	// SectionAttr marks a definition as a contract and carries its metadata.
	SectionAttr = "section"
	// FormAttr carries widget hints on a field.
	FormAttr = "form"
)

// Compile evaluates a single CUE source and returns its contracts.
func Compile(filename string, raw []byte) ([]contracts.Definition, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(raw, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("cueschema: compile %s: %w", filename, err)
	}
	return Definitions(value)
}

// LoadDir evaluates the CUE package in dir and returns its contracts.
func LoadDir(dir string) ([]contracts.Definition, error) {
	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, fmt.Errorf("cueschema: no CUE instances found in %s", dir)
	}
	if insts[0].Err != nil {
		return nil, fmt.Errorf("cueschema: load %s: %w", dir, insts[0].Err)
	}
	value := cuecontext.New().BuildInstance(insts[0])
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("cueschema: build %s: %w", dir, err)
	}
	return Definitions(value)
}

// Definitions converts every top-level definition of value, in declaration
// order.
func Definitions(value cue.Value) ([]contracts.Definition, error) {
	iter, err := value.Fields(cue.Definitions(true))
	if err != nil {
		return nil, fmt.Errorf("cueschema: %w", err)
	}

	var out []contracts.Definition
	for iter.Next() {
		sel := iter.Selector()
		if !sel.IsDefinition() {
			continue
		}
		label := sel.String()
		def, err := definition(label, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	if len(out) == 0 {
		return nil, errors.New("cueschema: no definitions found")
	}
	return out, nil
}

func definition(label string, v cue.Value) (contracts.Definition, error) {
	if kind := v.IncompleteKind(); kind != cue.StructKind {
		return contracts.Definition{}, fmt.Errorf("cueschema: %s must be a struct, got %s", label, kind)
	}
	root, err := object(v, label, 0)
	if err != nil {
		return contracts.Definition{}, err
	}

	attr := v.Attribute(SectionAttr)
	typeID := lookup(attr, "type")
	if typeID == "" {
		typeID = kebab(strings.TrimPrefix(label, "#"))
	}
	return contracts.Definition{
		TypeID: typeID,
		Schema: root,
		Metadata: contracts.Metadata{
			Label:       lookup(attr, "label"),
			Description: docText(v),
			Icon:        lookup(attr, "icon"),
			Category:    lookup(attr, "category"),
		},
		Constraints: constraints(v),
	}, nil
}

func object(v cue.Value, at string, depth int) (*schema.Def, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, fmt.Errorf("cueschema: fields of %s: %w", at, err)
	}
	obj := schema.Object()
	for iter.Next() {
		name := strings.TrimSuffix(iter.Selector().String(), "?")
		field, err := convert(iter.Value(), at+"."+name, depth+1)
		if err != nil {
			return nil, err
		}
		if iter.IsOptional() {
			field = schema.Optional(field)
		}
		obj.Fields = append(obj.Fields, schema.Field(name, field))
	}
	return obj, nil
}

func convert(v cue.Value, at string, depth int) (*schema.Def, error) {
	if depth > schema.MaxUnwrapDepth {
		return nil, fmt.Errorf("cueschema: nesting too deep at %s", at)
	}

	kind := v.IncompleteKind()
	nullable := kind&cue.NullKind != 0 && kind != cue.NullKind
	kind &^= cue.NullKind

	var (
		base *schema.Def
		err  error
	)
	switch {
	case kind == cue.StructKind:
		base, err = object(v, at, depth)
	case kind == cue.ListKind:
		base, err = list(v, at, depth)
	case kind == cue.StringKind:
		base = schema.String()
	case kind == cue.IntKind:
		base = schema.Integer()
	case kind == cue.FloatKind || kind == cue.NumberKind:
		base = schema.Number()
	case kind == cue.BoolKind:
		base = schema.Boolean()
	case kind == cue.BottomKind:
		return nil, fmt.Errorf("cueschema: %s has no valid value: %v", at, v.Err())
	default:
		base = &schema.Def{}
	}
	if err != nil {
		return nil, err
	}
	base.Description = docText(v)

	def := base
	if kind&(cue.StructKind|cue.ListKind) == 0 && isRefined(v) {
		def = schema.Effect(def)
	}
	if nullable {
		def = schema.Nullable(def)
	}
	if d, ok := v.Default(); ok {
		var value any
		if err := d.Decode(&value); err != nil {
			return nil, fmt.Errorf("cueschema: default at %s: %w", at, err)
		}
		// [...T] carries an implicit [] default; only explicit ones count.
		if !isEmptyList(value) {
			def = schema.Defaulted(def, value)
		}
	}
	def.WithHint(hint(v))
	return def, nil
}

func list(v cue.Value, at string, depth int) (*schema.Def, error) {
	elem := v.LookupPath(cue.MakePath(cue.AnyIndex))
	if !elem.Exists() || elem.Err() != nil {
		return schema.Array(&schema.Def{}), nil
	}
	element, err := convert(elem, at+"[]", depth+1)
	if err != nil {
		return nil, err
	}
	return schema.Array(element), nil
}

func isEmptyList(value any) bool {
	list, ok := value.([]any)
	return ok && len(list) == 0
}

// isRefined reports whether a scalar carries a constraint beyond its type,
// such as a bound, a pattern or a conjunction with a validator.
func isRefined(v cue.Value) bool {
	op, _ := v.Expr()
	switch op {
	case cue.AndOp, cue.RegexMatchOp, cue.NotRegexMatchOp,
		cue.GreaterThanOp, cue.GreaterThanEqualOp, cue.LessThanOp, cue.LessThanEqualOp, cue.NotEqualOp:
		return true
	}
	return false
}

func hint(v cue.Value) schema.Hint {
	attr := v.Attribute(FormAttr)
	if attr.Err() != nil {
		return schema.Hint{}
	}
	return schema.Hint{
		Widget:      lookup(attr, "widget"),
		Group:       lookup(attr, "group"),
		Bucket:      lookup(attr, "bucket"),
		Label:       lookup(attr, "label"),
		Help:        lookup(attr, "help"),
		Placeholder: lookup(attr, "placeholder"),
	}
}

func lookup(attr cue.Attribute, key string) string {
	if attr.Err() != nil {
		return ""
	}
	value, found, err := attr.Lookup(0, key)
	if err != nil || !found {
		return ""
	}
	return strings.TrimSpace(value)
}

func docText(v cue.Value) string {
	var parts []string
	for _, group := range v.Doc() {
		if text := strings.TrimSpace(group.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// kebab turns "PricingTable" into "pricing-table".
func kebab(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '_' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
