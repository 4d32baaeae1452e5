package widgets

import "github.com/goliatone/go-sectionform/pkg/schema"

// Widget identifies the editing control chosen for a field.
type Widget string

const (
	WidgetText      Widget = "text"
	WidgetTextarea  Widget = "textarea"
	WidgetImage     Widget = "image"
	WidgetIcon      Widget = "icon"
	WidgetLink      Widget = "link"
	WidgetNumber    Widget = "number"
	WidgetToggle    Widget = "toggle"
	WidgetList      Widget = "list"
	WidgetImageList Widget = "image-list"
	WidgetRepeater  Widget = "repeater"
	WidgetGroup     Widget = "group"
)

// Group is the UI bucket a control is rendered in.
type Group string

const (
	GroupContent  Group = "content"
	GroupMedia    Group = "media"
	GroupCTA      Group = "cta"
	GroupAdvanced Group = "advanced"
)

// GroupOrder is the order sections are laid out in a form.
var GroupOrder = []Group{GroupContent, GroupMedia, GroupCTA, GroupAdvanced}

// CollapsedByDefault reports whether a group starts collapsed.
func (g Group) CollapsedByDefault() bool {
	return g == GroupAdvanced
}

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	for _, known := range GroupOrder {
		if g == known {
			return true
		}
	}
	return false
}

// Source records which step of classification produced a widget.
type Source string

const (
	SourceStructure Source = "structure"
	SourceHint      Source = "hint"
	SourceRule      Source = "rule"
	SourceFallback  Source = "fallback"
)

// Input is everything classification looks at.
type Input struct {
	Path        schema.Path
	Kind        schema.Kind
	ElementKind schema.Kind
	Bucket      string
	Hint        schema.Hint
}

// InputFor builds an Input from a compiled node.
func InputFor(path schema.Path, node *schema.Node, bucket string) Input {
	in := Input{Path: path, Bucket: bucket}
	if node == nil {
		return in
	}
	in.Kind = node.Kind
	in.ElementKind = node.ElementKind()
	in.Hint = node.Hint
	return in
}

// Name is the last field name of the input path.
func (in Input) Name() string {
	return in.Path.LastName()
}

// compatible lists the widgets a kind may be rendered with.
var compatible = map[schema.Kind][]Widget{
	schema.KindString:  {WidgetText, WidgetTextarea, WidgetImage, WidgetIcon, WidgetLink},
	schema.KindNumber:  {WidgetNumber, WidgetText},
	schema.KindBoolean: {WidgetToggle},
	schema.KindArray:   {WidgetList, WidgetImageList, WidgetRepeater},
	schema.KindUnknown: {WidgetText, WidgetTextarea},
}

// Compatible reports whether widget can edit a value of kind. Repeaters also
// require object elements.
func Compatible(widget Widget, kind, element schema.Kind) bool {
	if kind == schema.KindObject {
		return widget == WidgetGroup
	}
	if widget == WidgetRepeater && element != schema.KindObject {
		return false
	}
	if widget == WidgetImageList && element != schema.KindString {
		return false
	}
	for _, w := range compatible[kind] {
		if w == widget {
			return true
		}
	}
	return false
}
