package schema

import "fmt"

// Kind is the canonical shape of a compiled node.
type Kind int

const (
	KindUnknown Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBoolean
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindObject:  "object",
	KindArray:   "array",
	KindString:  "string",
	KindNumber:  "number",
	KindBoolean: "boolean",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsScalar reports whether k is string, number or boolean.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBoolean
}

// MarshalText renders the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("schema: unknown kind %q", string(text))
}

// Node is the compiled, modifier-free schema AST. Objects carry ordered
// Fields, arrays carry Element. Modifiers survive only as attributes.
type Node struct {
	Kind        Kind
	Fields      []NodeField
	Element     *Node
	Optional    bool
	Nullable    bool
	HasDefault  bool
	Default     any
	Effects     int
	Hint        Hint
	Description string
}

// NodeField is a named member of an object node.
type NodeField struct {
	Name string
	Node *Node
}

// Field looks up a direct child by name.
func (n *Node) Field(name string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return nil, false
}

// FieldNames lists child names in declaration order.
func (n *Node) FieldNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ElementKind returns the element kind for arrays, KindUnknown otherwise.
func (n *Node) ElementKind() Kind {
	if n == nil || n.Kind != KindArray || n.Element == nil {
		return KindUnknown
	}
	return n.Element.Kind
}

// Lookup walks path from n. Name segments select object fields, index
// segments select the array element schema.
func (n *Node) Lookup(path Path) (*Node, bool) {
	current := n
	for _, seg := range path {
		if current == nil {
			return nil, false
		}
		if seg.IsIndex {
			if current.Kind != KindArray || current.Element == nil {
				return nil, false
			}
			current = current.Element
			continue
		}
		child, ok := current.Field(seg.Name)
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, current != nil
}
