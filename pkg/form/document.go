package form

import (
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/schema"
)

// getPath resolves path inside a normalized document.
func getPath(root any, path schema.Path) (any, bool) {
	current := root
	for _, seg := range path {
		switch node := current.(type) {
		case map[string]any:
			if seg.IsIndex {
				return nil, false
			}
			next, ok := node[seg.Name]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
				return nil, false
			}
			current = node[seg.Index]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at path. Containers along the path must already exist;
// documents are normalized, so a missing container means the path is wrong.
func setPath(root map[string]any, path schema.Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("form: cannot replace the document root")
	}
	parent, ok := getPath(root, path.Parent())
	if !ok {
		return fmt.Errorf("form: path %q does not exist in document", path.Parent().String())
	}
	last, _ := path.Last()
	switch node := parent.(type) {
	case map[string]any:
		if last.IsIndex {
			return fmt.Errorf("form: index %d used on object at %q", last.Index, path.Parent().String())
		}
		node[last.Name] = value
		return nil
	case []any:
		if !last.IsIndex {
			return fmt.Errorf("form: field %q used on array at %q", last.Name, path.Parent().String())
		}
		if last.Index < 0 || last.Index >= len(node) {
			return fmt.Errorf("form: index %d out of range at %q", last.Index, path.Parent().String())
		}
		node[last.Index] = value
		return nil
	default:
		return fmt.Errorf("form: %q is not a container", path.Parent().String())
	}
}
