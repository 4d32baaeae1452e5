package normalize

import "github.com/goliatone/go-sectionform/pkg/schema"

// Default derives the minimal valid instance of node: objects carry every
// field key, arrays are empty, strings are "", numbers 0 and booleans false.
// Unknown nodes default to "". A declared default wins when its shape already
// matches the node's kind.
func Default(node *schema.Node) any {
	if node == nil {
		return ""
	}
	if node.HasDefault && matchesKind(node.Kind, node.Default) {
		p := &pass{n: quiet}
		return p.value(node, schema.Path{}, node.Default)
	}
	return kindDefault(node)
}

func kindDefault(node *schema.Node) any {
	switch node.Kind {
	case schema.KindObject:
		out := make(map[string]any, len(node.Fields))
		for _, f := range node.Fields {
			out[f.Name] = Default(f.Node)
		}
		return out
	case schema.KindArray:
		return []any{}
	case schema.KindNumber:
		return float64(0)
	case schema.KindBoolean:
		return false
	default:
		return ""
	}
}

func matchesKind(kind schema.Kind, value any) bool {
	switch kind {
	case schema.KindObject:
		_, ok := asMap(value)
		return ok
	case schema.KindArray:
		_, ok := asSlice(value)
		return ok
	case schema.KindString:
		_, ok := value.(string)
		return ok
	case schema.KindNumber:
		_, ok := asNumber(value)
		return ok
	case schema.KindBoolean:
		_, ok := value.(bool)
		return ok
	case schema.KindUnknown:
		return value != nil
	}
	return false
}
