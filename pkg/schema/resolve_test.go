package schema

import "testing"

func TestResolveUnwrapsModifiers(t *testing.T) {
	inner := String()
	def := Optional(Nullable(Defaulted(Effect(inner), "hello")))

	res := ResolveWrapped(def)
	if res.Kind != KindString {
		t.Fatalf("expected string kind, got %s", res.Kind)
	}
	if res.Def != inner {
		t.Fatalf("expected the innermost definition to be returned")
	}
	if !res.Optional || !res.Nullable || !res.HasDefault || res.Default != "hello" || res.Effects != 1 {
		t.Fatalf("modifier attributes not collected: %+v", res)
	}
}

func TestResolveStructureBeatsDeclaredTag(t *testing.T) {
	// An effect that lost its tag but still exposes fields.
	def := &Def{Tag: TagString, Fields: []FieldDef{Field("text", String())}}
	if kind, _ := Resolve(def); kind != KindObject {
		t.Fatalf("expected object from structural detection, got %s", kind)
	}

	arr := &Def{Tag: TagEffect, Element: String()}
	if kind, _ := Resolve(arr); kind != KindArray {
		t.Fatalf("expected array from structural detection, got %s", kind)
	}
}

func TestResolveOptionalObject(t *testing.T) {
	def := Optional(Object(Field("text", String())))
	kind, unwrapped := Resolve(def)
	if kind != KindObject {
		t.Fatalf("expected object, got %s", kind)
	}
	if len(unwrapped.Fields) != 1 {
		t.Fatalf("expected unwrapped fields, got %+v", unwrapped)
	}
}

func TestResolveUnknownCases(t *testing.T) {
	cases := map[string]*Def{
		"nil":             nil,
		"empty":           {},
		"wrapper no body": {Tag: TagOptional},
		"custom tag":      {Tag: "date"},
	}
	for name, def := range cases {
		if kind, _ := Resolve(def); kind != KindUnknown {
			t.Fatalf("%s: expected unknown, got %s", name, kind)
		}
	}
}

func TestResolveTerminatesOnSelfWrap(t *testing.T) {
	loop := &Def{Tag: TagOptional}
	loop.Inner = loop
	res := ResolveWrapped(loop)
	if res.Kind != KindUnknown || !res.Truncated {
		t.Fatalf("expected truncated unknown, got %+v", res)
	}

	a := &Def{Tag: TagEffect}
	b := &Def{Tag: TagNullable, Inner: a}
	a.Inner = b
	res = ResolveWrapped(a)
	if res.Kind != KindUnknown || !res.Truncated {
		t.Fatalf("expected cycle to hit the depth bound, got %+v", res)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	def := Optional(String().WithHint(Hint{Widget: "link"}))
	before := *def
	ResolveWrapped(def)
	if def.Tag != before.Tag || def.Inner != before.Inner {
		t.Fatalf("resolve mutated input")
	}
}

func TestResolveOuterHintWins(t *testing.T) {
	def := Optional(String().WithHint(Hint{Widget: "text", Label: "Inner"})).WithHint(Hint{Widget: "link"})
	res := ResolveWrapped(def)
	if res.Hint.Widget != "link" || res.Hint.Label != "Inner" {
		t.Fatalf("unexpected merged hint %+v", res.Hint)
	}
}

func TestResolveIntegerIsNumber(t *testing.T) {
	if kind, _ := Resolve(Integer()); kind != KindNumber {
		t.Fatalf("expected number, got %s", kind)
	}
}
