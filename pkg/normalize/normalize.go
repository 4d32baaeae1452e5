package normalize

import (
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithWrapScalars controls whether a lone scalar stored where an array of
// that scalar kind is expected becomes a one-element array (enabled by
// default) or is replaced by an empty array.
func WithWrapScalars(enabled bool) Option {
	return func(n *Normalizer) {
		n.wrapScalars = enabled
	}
}

// WithSink forwards every diagnostic to sink as well as returning it.
func WithSink(sink diagnostics.Sink) Option {
	return func(n *Normalizer) {
		n.sink = sink
	}
}

// Normalizer repairs documents against compiled schema nodes. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	wrapScalars bool
	sink        diagnostics.Sink
}

var (
	standard = New()
	quiet    = New()
)

// New constructs a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{wrapScalars: true}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Result is a normalised value plus the repairs applied to reach it.
type Result struct {
	Value       any
	Diagnostics diagnostics.List
}

// Repaired reports whether any repair was applied.
func (r Result) Repaired() bool {
	return len(r.Diagnostics) > 0
}

// Normalize repairs value against node using the default Normalizer.
func Normalize(node *schema.Node, value any) Result {
	return standard.Normalize(node, value)
}

// Normalize repairs value so its shape matches node. The input is never
// mutated.
func (n *Normalizer) Normalize(node *schema.Node, value any) Result {
	return n.run(node, schema.Path{}, value)
}

// NormalizeAt repairs value against the node found at path under root.
// Diagnostics are reported relative to the document root. When path does not
// address a schema node, value is returned untouched with a
// SchemaResolutionFailure diagnostic.
func (n *Normalizer) NormalizeAt(root *schema.Node, path schema.Path, value any) Result {
	node, ok := root.Lookup(path)
	if !ok {
		d := diagnostics.Diagnostic{
			Code:     diagnostics.SchemaResolutionFailure,
			Severity: diagnostics.SeverityWarn,
			Path:     path.String(),
			Message:  "path does not address a schema node",
		}
		n.emit(d)
		return Result{Value: Clone(value), Diagnostics: diagnostics.List{d}}
	}
	return n.run(node, path, value)
}

func (n *Normalizer) run(node *schema.Node, path schema.Path, value any) Result {
	if n == nil {
		n = standard
	}
	p := &pass{n: n}
	out := p.value(node, path, value)
	return Result{Value: out, Diagnostics: p.diags}
}

func (n *Normalizer) emit(d diagnostics.Diagnostic) {
	if n != nil && n.sink != nil {
		n.sink.Report(d)
	}
}

type pass struct {
	n     *Normalizer
	diags diagnostics.List
}

func (p *pass) repair(node *schema.Node, path schema.Path, observed any, format string, args ...any) {
	severity := diagnostics.SeverityWarn
	if observed == nil && node != nil && (node.Optional || node.Nullable) {
		severity = diagnostics.SeverityInfo
	}
	d := diagnostics.Diagnostic{
		Code:     diagnostics.DataShapeMismatch,
		Severity: severity,
		Path:     path.String(),
		Message:  fmt.Sprintf(format, args...),
		Expected: kindOf(node).String(),
		Observed: TypeName(observed),
	}
	p.diags = append(p.diags, d)
	p.n.emit(d)
}

func (p *pass) value(node *schema.Node, path schema.Path, value any) any {
	if node == nil {
		return p.unknown(node, path, value)
	}
	switch node.Kind {
	case schema.KindObject:
		return p.object(node, path, value)
	case schema.KindArray:
		return p.array(node, path, value)
	case schema.KindString:
		if s, ok := value.(string); ok {
			return s
		}
		p.repair(node, path, value, "replaced %s with empty string", TypeName(value))
		return ""
	case schema.KindNumber:
		if f, ok := asNumber(value); ok {
			return f
		}
		p.repair(node, path, value, "replaced %s with 0", TypeName(value))
		return float64(0)
	case schema.KindBoolean:
		if b, ok := value.(bool); ok {
			return b
		}
		p.repair(node, path, value, "replaced %s with false", TypeName(value))
		return false
	default:
		return p.unknown(node, path, value)
	}
}

func (p *pass) unknown(node *schema.Node, path schema.Path, value any) any {
	if value == nil {
		p.repair(node, path, value, "replaced null with empty string")
		return ""
	}
	return Clone(value)
}

func (p *pass) array(node *schema.Node, path schema.Path, value any) any {
	items, ok := asSlice(value)
	if !ok {
		switch {
		case value == nil:
			p.repair(node, path, value, "replaced null with empty array")
			return []any{}
		case p.n.wrapScalars && node.Element != nil && node.Element.Kind.IsScalar() && matchesKind(node.Element.Kind, value):
			p.repair(node, path, value, "wrapped single %s into array", TypeName(value))
			items = []any{value}
		default:
			p.repair(node, path, value, "replaced %s with empty array", TypeName(value))
			return []any{}
		}
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = p.value(node.Element, path.At(i), item)
	}
	return out
}

func (p *pass) object(node *schema.Node, path schema.Path, value any) any {
	src, ok := asMap(value)
	if !ok {
		p.repair(node, path, value, "replaced %s with default object", TypeName(value))
		src, _ = asMap(Default(node))
	}

	out := make(map[string]any, len(src)+len(node.Fields))
	known := make(map[string]struct{}, len(node.Fields))
	for _, f := range node.Fields {
		known[f.Name] = struct{}{}
		current, present := src[f.Name]
		if !present {
			out[f.Name] = Default(f.Node)
			p.diags = append(p.diags, diagnostics.Diagnostic{
				Code:     diagnostics.DataShapeMismatch,
				Severity: diagnostics.SeverityInfo,
				Path:     path.Child(f.Name).String(),
				Message:  "added missing key with default",
				Expected: kindOf(f.Node).String(),
				Observed: "missing",
			})
			p.n.emit(p.diags[len(p.diags)-1])
			continue
		}
		out[f.Name] = p.value(f.Node, path.Child(f.Name), current)
	}
	for key, v := range src {
		if _, ok := known[key]; ok {
			continue
		}
		out[key] = Clone(v)
	}
	return out
}

func kindOf(node *schema.Node) schema.Kind {
	if node == nil {
		return schema.KindUnknown
	}
	return node.Kind
}
