package form

import (
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

// ActionKind names a structural edit offered by a control.
type ActionKind string

const (
	ActionAdd      ActionKind = "add"
	ActionRemove   ActionKind = "remove"
	ActionMoveUp   ActionKind = "move-up"
	ActionMoveDown ActionKind = "move-down"
)

// Action is a structural edit a renderer can offer next to a control. Path
// always addresses the array the edit applies to.
type Action struct {
	Kind    ActionKind  `json:"kind"`
	Path    schema.Path `json:"path"`
	Index   int         `json:"index"`
	Enabled bool        `json:"enabled"`
}

// Control is one node of the synthesized form.
type Control struct {
	Path        schema.Path    `json:"path"`
	Name        string         `json:"name,omitempty"`
	Label       string         `json:"label,omitempty"`
	Widget      widgets.Widget `json:"widget"`
	Group       widgets.Group  `json:"group"`
	Kind        schema.Kind    `json:"kind"`
	Value       any            `json:"value,omitempty"`
	Bucket      string         `json:"bucket,omitempty"`
	URL         string         `json:"url,omitempty"`
	Optional    bool           `json:"optional,omitempty"`
	Nullable    bool           `json:"nullable,omitempty"`
	Help        string         `json:"help,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	ReadOnly    bool           `json:"read_only,omitempty"`

	// Groups holds the fields of an object control in display order.
	Groups []Section `json:"groups,omitempty"`
	// Items holds the elements of an array control.
	Items   []Item   `json:"items,omitempty"`
	Actions []Action `json:"actions,omitempty"`

	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
}

// Section is a bucket of sibling controls sharing a group.
type Section struct {
	Group     widgets.Group `json:"group"`
	Label     string        `json:"label"`
	Collapsed bool          `json:"collapsed"`
	Controls  []*Control    `json:"controls"`
}

// Item is one element of an array control.
type Item struct {
	Index       int      `json:"index"`
	Control     *Control `json:"control"`
	CanMoveUp   bool     `json:"can_move_up"`
	CanMoveDown bool     `json:"can_move_down"`
}

// Form is the synthesized editor for one section document.
type Form struct {
	TypeID      string           `json:"type_id"`
	Label       string           `json:"label"`
	SectionID   string           `json:"section_id,omitempty"`
	Root        *Control         `json:"root"`
	Pages       []links.Page     `json:"pages,omitempty"`
	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
	ReadOnly    bool             `json:"read_only,omitempty"`
}

// Find returns the control at path.
func (c *Control) Find(path schema.Path) (*Control, bool) {
	if c == nil {
		return nil, false
	}
	if c.Path.Equal(path) {
		return c, true
	}
	for _, section := range c.Groups {
		for _, child := range section.Controls {
			if found, ok := child.Find(path); ok {
				return found, true
			}
		}
	}
	for _, item := range c.Items {
		if found, ok := item.Control.Find(path); ok {
			return found, true
		}
	}
	return nil, false
}

// Section returns the section for group g.
func (c *Control) Section(g widgets.Group) (Section, bool) {
	if c == nil {
		return Section{}, false
	}
	for _, section := range c.Groups {
		if section.Group == g {
			return section, true
		}
	}
	return Section{}, false
}

// Action returns the first enabled or disabled action of kind.
func (c *Control) Action(kind ActionKind) (Action, bool) {
	if c == nil {
		return Action{}, false
	}
	for _, action := range c.Actions {
		if action.Kind == kind {
			return action, true
		}
	}
	return Action{}, false
}
