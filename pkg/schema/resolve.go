package schema

// MaxUnwrapDepth bounds modifier unwrapping and compilation depth.
const MaxUnwrapDepth = 64

// Resolution is the outcome of unwrapping a Def.
type Resolution struct {
	Kind        Kind
	Def         *Def
	Optional    bool
	Nullable    bool
	HasDefault  bool
	Default     any
	Effects     int
	Hint        Hint
	Description string
	// Truncated is set when unwrapping stopped on the depth bound or a
	// self-wrapping modifier.
	Truncated bool
}

// Resolve unwraps optional, default, nullable and effect modifiers and
// returns the canonical kind with the unwrapped definition. Structural shape
// (named fields, an element schema) wins over the declared tag. A nil or
// shapeless definition resolves to KindUnknown.
func Resolve(def *Def) (Kind, *Def) {
	res := ResolveWrapped(def)
	return res.Kind, res.Def
}

// ResolveWrapped is Resolve plus the modifier attributes collected on the
// way down. Outer modifiers win when the same attribute repeats.
func ResolveWrapped(def *Def) Resolution {
	res := Resolution{Kind: KindUnknown, Def: def}
	current := def
	for depth := 0; current != nil; depth++ {
		if depth >= MaxUnwrapDepth {
			res.Truncated = true
			break
		}
		res.Hint = current.Hint.Merge(res.Hint)
		if res.Description == "" {
			res.Description = current.Description
		}
		res.Def = current

		if current.Fields != nil {
			res.Kind = KindObject
			return res
		}
		if current.Element != nil {
			res.Kind = KindArray
			return res
		}

		if current.Tag.IsModifier() {
			switch current.Tag {
			case TagOptional:
				res.Optional = true
			case TagNullable:
				res.Nullable = true
			case TagDefault:
				if !res.HasDefault {
					res.HasDefault = true
					res.Default = current.Default
				}
			case TagEffect:
				res.Effects++
			}
			if current.Inner == current {
				res.Truncated = true
				break
			}
			current = current.Inner
			continue
		}

		res.Kind = tagKind(current.Tag)
		return res
	}
	res.Kind = KindUnknown
	return res
}

func tagKind(tag Tag) Kind {
	switch tag {
	case TagObject:
		return KindObject
	case TagArray:
		return KindArray
	case TagString:
		return KindString
	case TagNumber, TagInteger:
		return KindNumber
	case TagBoolean:
		return KindBoolean
	}
	return KindUnknown
}
