package components

import (
	"strings"

	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

// Fallback renders read-only controls of unknown kind as preformatted text.
const Fallback = "fallback"

// PagesListID is the id of the datalist holding known link targets.
const PagesListID = "sf-pages"

// NameFor returns the component that renders a control with the given
// widget and kind.
func NameFor(widget widgets.Widget, kind schema.Kind, readOnly bool) string {
	if readOnly && kind == schema.KindUnknown {
		return Fallback
	}
	if widget == "" {
		return string(widgets.WidgetText)
	}
	return string(widget)
}

// ControlID derives the DOM id of the control at path.
func ControlID(path schema.Path) string {
	raw := path.String()
	if raw == "" {
		return "sf-root"
	}
	var b strings.Builder
	b.WriteString("sf-")
	dash := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// LabelID derives the id of the element labelling the control at path.
func LabelID(path schema.Path) string {
	return ControlID(path) + "-label"
}
