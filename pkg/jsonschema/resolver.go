package jsonschema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/internal/yamlnode"
)

const defaultMaxRefDepth = 64

// refResolver follows document-local $ref values. Remote references are
// rejected; section contracts are expected to be self-contained.
type refResolver struct {
	root     *yaml.Node
	anchors  map[string]*yaml.Node
	stack    []string
	inStack  map[string]struct{}
	maxDepth int
}

func newRefResolver(root *yaml.Node) *refResolver {
	r := &refResolver{
		root:     root,
		anchors:  make(map[string]*yaml.Node),
		inStack:  make(map[string]struct{}),
		maxDepth: defaultMaxRefDepth,
	}
	indexAnchors(root, r.anchors)
	return r
}

func (r *refResolver) enter(ref, at string) (*yaml.Node, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("jsonschema: remote $ref %q is not supported at %s", ref, at)
	}
	if _, ok := r.inStack[ref]; ok {
		return nil, fmt.Errorf("jsonschema: recursive $ref %q at %s (%s)", ref, at, strings.Join(append(r.stack, ref), " -> "))
	}
	if len(r.stack) >= r.maxDepth {
		return nil, fmt.Errorf("jsonschema: $ref depth exceeds %d at %s", r.maxDepth, at)
	}

	var (
		target *yaml.Node
		err    error
	)
	if name := strings.TrimPrefix(ref, "#"); name != "" && !strings.HasPrefix(name, "/") {
		target = r.anchors[name]
		if target == nil {
			err = fmt.Errorf("unknown anchor %q", name)
		}
	} else {
		target, err = yamlnode.Pointer(r.root, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonschema: unresolved $ref %q at %s: %w", ref, at, err)
	}

	r.stack = append(r.stack, ref)
	r.inStack[ref] = struct{}{}
	return target, nil
}

func (r *refResolver) leave(ref string) {
	ref = strings.TrimSpace(ref)
	delete(r.inStack, ref)
	if n := len(r.stack); n > 0 {
		r.stack = r.stack[:n-1]
	}
}

func indexAnchors(n *yaml.Node, anchors map[string]*yaml.Node) {
	n = yamlnode.Resolve(n)
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		if name := yamlnode.String(n, "$anchor"); name != "" {
			if _, exists := anchors[name]; !exists {
				anchors[name] = n
			}
		}
		for _, pair := range yamlnode.Pairs(n) {
			if isVendorExtension(pair.Key) || pair.Key == "default" || pair.Key == "examples" || pair.Key == "const" || pair.Key == "enum" {
				continue
			}
			indexAnchors(pair.Value, anchors)
		}
	case yaml.SequenceNode:
		for _, item := range yamlnode.Items(n) {
			indexAnchors(item, anchors)
		}
	}
}
