// Package yamlnode holds the small helpers the contract decoders use to walk
// yaml.v3 nodes while keeping mapping key order. JSON documents parse through
// the same path since JSON is a subset of YAML.
package yamlnode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes raw into its root node, unwrapping the document node.
func Parse(raw []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	root := documentRoot(&doc)
	if root == nil {
		return nil, errors.New("yamlnode: empty document")
	}
	return root, nil
}

// ParseAll decodes every document of a multi-document stream.
func ParseAll(raw []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	var out []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if root := documentRoot(&doc); root != nil {
			out = append(out, root)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("yamlnode: empty document")
	}
	return out, nil
}

// documentRoot unwraps a decoded document. Empty input and null-only
// documents, such as the one after a trailing ---, have no root.
func documentRoot(doc *yaml.Node) *yaml.Node {
	root := Resolve(doc)
	if root == nil || root.Kind == 0 {
		return nil
	}
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil
	}
	return root
}

// Resolve follows document wrappers and aliases. It returns nil for an empty
// document.
func Resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// IsMapping reports whether n is a mapping node.
func IsMapping(n *yaml.Node) bool {
	n = Resolve(n)
	return n != nil && n.Kind == yaml.MappingNode
}

// IsSequence reports whether n is a sequence node.
func IsSequence(n *yaml.Node) bool {
	n = Resolve(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// IsNull reports whether n is absent or an explicit null scalar.
func IsNull(n *yaml.Node) bool {
	n = Resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// Pair is one key/value entry of a mapping, in document order.
type Pair struct {
	Key   string
	Value *yaml.Node
}

// Pairs lists the entries of a mapping node in document order.
func Pairs(n *yaml.Node) []Pair {
	n = Resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]Pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, Pair{Key: n.Content[i].Value, Value: Resolve(n.Content[i+1])})
	}
	return out
}

// Keys lists the keys of a mapping node in document order.
func Keys(n *yaml.Node) []string {
	pairs := Pairs(n)
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.Key)
	}
	return out
}

// Get returns the value stored under key, or nil.
func Get(n *yaml.Node, key string) *yaml.Node {
	for _, p := range Pairs(n) {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// Has reports whether key is present in the mapping.
func Has(n *yaml.Node, key string) bool {
	return Get(n, key) != nil
}

// Items lists the entries of a sequence node.
func Items(n *yaml.Node) []*yaml.Node {
	n = Resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, 0, len(n.Content))
	for _, item := range n.Content {
		out = append(out, Resolve(item))
	}
	return out
}

// String returns the trimmed scalar value under key, or "".
func String(n *yaml.Node, key string) string {
	v := Get(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(v.Value)
}

// Strings decodes a scalar or a sequence of scalars into a string slice.
func Strings(n *yaml.Node) ([]string, error) {
	n = Resolve(n)
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{strings.TrimSpace(n.Value)}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for idx, item := range Items(n) {
			if item == nil || item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("entry %d must be a string", idx)
			}
			out = append(out, strings.TrimSpace(item.Value))
		}
		return out, nil
	}
	return nil, errors.New("must be a string or a list of strings")
}

// Bool returns the boolean value under key and whether it was present.
func Bool(n *yaml.Node, key string) (bool, bool, error) {
	v := Get(n, key)
	if v == nil {
		return false, false, nil
	}
	var out bool
	if err := v.Decode(&out); err != nil {
		return false, true, err
	}
	return out, true, nil
}

// Value decodes n into plain Go values (map[string]any, []any, scalars).
func Value(n *yaml.Node) (any, error) {
	n = Resolve(n)
	if n == nil {
		return nil, nil
	}
	var out any
	if err := n.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pointer follows a JSON pointer ("#/a/b" or "/a/b") from root.
func Pointer(root *yaml.Node, ref string) (*yaml.Node, error) {
	ref = strings.TrimPrefix(ref, "#")
	if ref == "" {
		return Resolve(root), nil
	}
	if !strings.HasPrefix(ref, "/") {
		return nil, fmt.Errorf("yamlnode: invalid pointer %q", ref)
	}
	current := Resolve(root)
	for _, token := range strings.Split(ref[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch {
		case IsMapping(current):
			next := Get(current, token)
			if next == nil {
				return nil, fmt.Errorf("yamlnode: pointer %q: missing %q", ref, token)
			}
			current = next
		case IsSequence(current):
			items := Items(current)
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(items) {
				return nil, fmt.Errorf("yamlnode: pointer %q: bad index %q", ref, token)
			}
			current = items[idx]
		default:
			return nil, fmt.Errorf("yamlnode: pointer %q: cannot descend into scalar", ref)
		}
	}
	return current, nil
}
