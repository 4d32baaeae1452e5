package form

import (
	"strconv"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithClassifier sets the widget registry used for classification.
func WithClassifier(registry *widgets.Registry) WalkerOption {
	return func(w *Walker) {
		if registry != nil {
			w.classifier = registry
		}
	}
}

// WithNormalizer sets the normalizer values are read through.
func WithNormalizer(n *normalize.Normalizer) WalkerOption {
	return func(w *Walker) {
		if n != nil {
			w.normalizer = n
		}
	}
}

// WithResolver resolves media and link values into preview URLs.
func WithResolver(resolver links.Resolver) WalkerOption {
	return func(w *Walker) {
		w.resolver = resolver
	}
}

// WithLabeler overrides how field names become labels.
func WithLabeler(labeler Labeler) WalkerOption {
	return func(w *Walker) {
		if labeler != nil {
			w.labeler = labeler
		}
	}
}

// Walker synthesizes control trees. It is stateless and safe for concurrent
// use.
type Walker struct {
	classifier *widgets.Registry
	normalizer *normalize.Normalizer
	resolver   links.Resolver
	labeler    Labeler
}

// NewWalker constructs a Walker over the default widget registry and
// normalizer.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		classifier: widgets.Default(),
		normalizer: normalize.New(),
		labeler:    DefaultLabeler,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

var defaultWalker = NewWalker()

// Walk synthesizes the control tree for node at path using the default
// walker. value is the data held at path, not the document root.
func Walk(node *schema.Node, path schema.Path, value any) *Control {
	return defaultWalker.Walk(node, path, value)
}

// Walk synthesizes the control tree for node at path. value is normalized
// first; repairs are attached to the returned control's Diagnostics.
func (w *Walker) Walk(node *schema.Node, path schema.Path, value any) *Control {
	return w.walk(node, path, value, nil)
}

// collapseState overrides the default collapsed flag of sections, keyed by
// the owning object path and group.
type collapseState map[string]bool

func collapseKey(path schema.Path, g widgets.Group) string {
	return path.String() + "#" + string(g)
}

func (s collapseState) collapsed(path schema.Path, g widgets.Group) bool {
	if v, ok := s[collapseKey(path, g)]; ok {
		return v
	}
	return g.CollapsedByDefault()
}

func (w *Walker) walk(node *schema.Node, path schema.Path, value any, state collapseState) *Control {
	var result normalize.Result
	if len(path) == 0 {
		result = w.normalizer.Normalize(node, value)
	} else {
		result = w.normalizer.NormalizeAt(rootFor(node, path), path, value)
	}
	c := w.control(node, path, result.Value, state)
	c.Diagnostics = append(result.Diagnostics, c.Diagnostics...)
	return c
}

// rootFor builds a throwaway root so NormalizeAt can report absolute paths
// for a node walked below the document root.
func rootFor(node *schema.Node, path schema.Path) *schema.Node {
	current := node
	for i := len(path) - 1; i >= 0; i-- {
		seg := path[i]
		if seg.IsIndex {
			current = &schema.Node{Kind: schema.KindArray, Element: current}
			continue
		}
		current = &schema.Node{Kind: schema.KindObject, Fields: []schema.NodeField{{Name: seg.Name, Node: current}}}
	}
	return current
}

func (w *Walker) control(node *schema.Node, path schema.Path, value any, state collapseState) *Control {
	class := w.classifier.Classify(widgets.InputFor(path, node, ""))
	c := &Control{
		Path:        path,
		Name:        path.LastName(),
		Label:       w.label(node, path),
		Widget:      class.Widget,
		Group:       class.Group,
		Bucket:      class.Bucket,
		Diagnostics: class.Diagnostics,
	}
	if node != nil {
		c.Kind = node.Kind
		c.Optional = node.Optional
		c.Nullable = node.Nullable
		c.Help = firstNonEmpty(node.Hint.Help, node.Description)
		c.Placeholder = node.Hint.Placeholder
	}

	switch c.Kind {
	case schema.KindObject:
		w.object(c, node, path, value, state)
	case schema.KindArray:
		w.array(c, node, path, value, state)
	default:
		w.scalar(c, value)
	}
	return c
}

func (w *Walker) object(c *Control, node *schema.Node, path schema.Path, value any, state collapseState) {
	doc, _ := value.(map[string]any)
	byGroup := make(map[widgets.Group][]*Control, len(widgets.GroupOrder))
	for _, field := range node.Fields {
		child := w.control(field.Node, path.Child(field.Name), doc[field.Name], state)
		byGroup[child.Group] = append(byGroup[child.Group], child)
	}
	for _, g := range widgets.GroupOrder {
		controls := byGroup[g]
		if len(controls) == 0 {
			continue
		}
		c.Groups = append(c.Groups, Section{
			Group:     g,
			Label:     GroupLabel(g),
			Collapsed: state.collapsed(path, g),
			Controls:  controls,
		})
	}
}

func (w *Walker) array(c *Control, node *schema.Node, path schema.Path, value any, state collapseState) {
	items, _ := value.([]any)
	c.Actions = []Action{{Kind: ActionAdd, Path: path, Index: len(items), Enabled: true}}

	if c.Widget == widgets.WidgetImageList {
		strs := make([]string, 0, len(items))
		for _, item := range items {
			s, _ := item.(string)
			strs = append(strs, s)
		}
		c.Value = strs
	}

	for i, item := range items {
		child := w.control(node.Element, path.At(i), item, state)
		child.Label = c.Label + " " + strconv.Itoa(i+1)
		if c.Widget == widgets.WidgetImageList && child.Kind == schema.KindString {
			child.Widget = widgets.WidgetImage
			child.Bucket = c.Bucket
			child.URL = w.resolve(c.Bucket, child.Value)
		}
		child.Actions = append(child.Actions,
			Action{Kind: ActionRemove, Path: path, Index: i, Enabled: true},
			Action{Kind: ActionMoveUp, Path: path, Index: i, Enabled: i > 0},
			Action{Kind: ActionMoveDown, Path: path, Index: i, Enabled: i < len(items)-1},
		)
		c.Items = append(c.Items, Item{
			Index:       i,
			Control:     child,
			CanMoveUp:   i > 0,
			CanMoveDown: i < len(items)-1,
		})
	}
}

func (w *Walker) scalar(c *Control, value any) {
	c.Value = value
	if c.Kind == schema.KindUnknown {
		if _, ok := value.(string); !ok {
			c.ReadOnly = true
		}
		return
	}
	switch c.Widget {
	case widgets.WidgetImage, widgets.WidgetIcon, widgets.WidgetLink:
		c.URL = w.resolve(c.Bucket, value)
	}
}

func (w *Walker) resolve(bucket string, value any) string {
	s, _ := value.(string)
	if w.resolver == nil || s == "" {
		return ""
	}
	return w.resolver.ResolveReference(bucket, s)
}

func (w *Walker) label(node *schema.Node, path schema.Path) string {
	if node != nil && node.Hint.Label != "" {
		return node.Hint.Label
	}
	return w.labeler(path.LastName())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collectDiagnostics(c *Control, out diagnostics.List) diagnostics.List {
	if c == nil {
		return out
	}
	out = append(out, c.Diagnostics...)
	for _, section := range c.Groups {
		for _, child := range section.Controls {
			out = collectDiagnostics(child, out)
		}
	}
	for _, item := range c.Items {
		out = collectDiagnostics(item.Control, out)
	}
	return out
}
