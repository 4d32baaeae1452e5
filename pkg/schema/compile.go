package schema

import (
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
)

// Compile turns a declared Def into the tagged Node AST. It never fails:
// unresolvable nodes compile to KindUnknown and invalid or duplicate field
// names are dropped, each with a diagnostic. Callers treat error severity
// diagnostics as a rejected schema.
func Compile(def *Def) (*Node, diagnostics.List) {
	c := &compiler{}
	node := c.compile(def, Path{}, 0)
	return node, c.diags
}

// MustCompile panics when compilation reports an error severity diagnostic.
func MustCompile(def *Def) *Node {
	node, diags := Compile(def)
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			panic(fmt.Errorf("schema: %s", d))
		}
	}
	return node
}

type compiler struct {
	diags diagnostics.List
}

func (c *compiler) report(path Path, severity diagnostics.Severity, format string, args ...any) {
	c.diags = append(c.diags, diagnostics.Diagnostic{
		Code:     diagnostics.SchemaResolutionFailure,
		Severity: severity,
		Path:     path.String(),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *compiler) compile(def *Def, path Path, depth int) *Node {
	if depth > MaxUnwrapDepth {
		c.report(path, diagnostics.SeverityError, "schema nesting exceeds %d levels", MaxUnwrapDepth)
		return &Node{Kind: KindUnknown}
	}

	res := ResolveWrapped(def)
	node := &Node{
		Kind:        res.Kind,
		Optional:    res.Optional,
		Nullable:    res.Nullable,
		HasDefault:  res.HasDefault,
		Default:     res.Default,
		Effects:     res.Effects,
		Hint:        res.Hint,
		Description: res.Description,
	}
	if res.Truncated {
		c.report(path, diagnostics.SeverityError, "modifier chain does not terminate")
		node.Kind = KindUnknown
		return node
	}

	switch res.Kind {
	case KindObject:
		node.Fields = c.compileFields(res.Def.Fields, path, depth)
	case KindArray:
		var element *Def
		if res.Def != nil {
			element = res.Def.Element
		}
		if element == nil {
			c.report(path, diagnostics.SeverityWarn, "array declares no element schema")
		}
		node.Element = c.compile(element, path.At(0), depth+1)
	case KindUnknown:
		c.report(path, diagnostics.SeverityWarn, "no structural shape or scalar tag found")
	}
	return node
}

func (c *compiler) compileFields(defs []FieldDef, path Path, depth int) []NodeField {
	fields := make([]NodeField, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for _, fd := range defs {
		if !ValidFieldName(fd.Name) {
			c.report(path, diagnostics.SeverityError, "invalid field name %q", fd.Name)
			continue
		}
		if _, dup := seen[fd.Name]; dup {
			c.report(path.Child(fd.Name), diagnostics.SeverityError, "duplicate field %q", fd.Name)
			continue
		}
		seen[fd.Name] = struct{}{}
		fields = append(fields, NodeField{
			Name: fd.Name,
			Node: c.compile(fd.Def, path.Child(fd.Name), depth+1),
		})
	}
	return fields
}
