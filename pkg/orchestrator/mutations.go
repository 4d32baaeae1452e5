package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
	"github.com/google/uuid"
)

const mutationInvalidCode = "SECTION_MUTATION_INVALID"

// MutationKind names an edit posted by a client.
type MutationKind string

const (
	MutationSet      MutationKind = "set"
	MutationSplice   MutationKind = "splice"
	MutationMove     MutationKind = "move"
	MutationAdd      MutationKind = MutationKind(form.ActionAdd)
	MutationRemove   MutationKind = MutationKind(form.ActionRemove)
	MutationMoveUp   MutationKind = MutationKind(form.ActionMoveUp)
	MutationMoveDown MutationKind = MutationKind(form.ActionMoveDown)
	MutationToggle   MutationKind = "toggle"
)

var mutationKinds = []any{
	MutationSet, MutationSplice, MutationMove,
	MutationAdd, MutationRemove, MutationMoveUp, MutationMoveDown,
	MutationToggle,
}

// Mutation is one edit against an open session. Path uses the control
// notation ("plans[0].features").
type Mutation struct {
	Kind  MutationKind `json:"kind"`
	Path  string       `json:"path"`
	Index int          `json:"index"`
	Count int          `json:"count"`
	To    int          `json:"to"`
	Value any          `json:"value,omitempty"`
	Items []any        `json:"items,omitempty"`
	Group string       `json:"group,omitempty"`
}

// Validate checks the mutation shape before it reaches a session.
func (m Mutation) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind, validation.Required, validation.In(mutationKinds...)),
		validation.Field(&m.Path,
			validation.By(validPath),
			validation.When(m.Kind != MutationToggle, validation.Required),
		),
		validation.Field(&m.Index, validation.Min(0)),
		validation.Field(&m.Count, validation.Min(0)),
		validation.Field(&m.To, validation.Min(0)),
		validation.Field(&m.Group,
			validation.When(m.Kind == MutationToggle, validation.Required, validation.By(validGroup)),
		),
	)
}

func validPath(value any) error {
	raw, _ := value.(string)
	if _, err := schema.ParsePath(raw); err != nil {
		return validation.NewError("orchestrator.path_invalid", err.Error())
	}
	return nil
}

func validGroup(value any) error {
	raw, _ := value.(string)
	if !widgets.Group(raw).Valid() {
		return validation.NewError("orchestrator.group_invalid", "unknown group")
	}
	return nil
}

// Apply runs m against the open session of section id.
func (o *Orchestrator) Apply(ctx context.Context, id uuid.UUID, m Mutation) (*Editor, form.MutationResult, error) {
	editor, err := o.OpenSection(ctx, id)
	if err != nil {
		return nil, form.MutationResult{}, err
	}
	if !editor.Supported() {
		return editor, form.MutationResult{}, fmt.Errorf("%w: %q", ErrUnsupportedSection, editor.Section.SectionType)
	}
	result, err := ApplyMutation(editor.Session, m)
	if err != nil {
		return editor, result, err
	}
	o.logger.Debug("section mutation",
		"section_id", id.String(),
		"kind", string(m.Kind),
		"path", m.Path,
		"applied", result.Applied,
	)
	return editor, result, nil
}

// ApplyMutation validates m and dispatches it to session.
func ApplyMutation(session *form.Session, m Mutation) (form.MutationResult, error) {
	if session == nil {
		return form.MutationResult{}, fmt.Errorf("orchestrator: session is required")
	}
	if err := m.Validate(); err != nil {
		return form.MutationResult{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid mutation").
			WithTextCode(mutationInvalidCode)
	}
	path, _ := schema.ParsePath(m.Path)

	switch m.Kind {
	case MutationSet:
		return session.SetScalar(path, m.Value), nil
	case MutationSplice:
		return session.SpliceArray(path, m.Index, m.Count, m.Items...), nil
	case MutationMove:
		return session.MoveArrayItem(path, m.Index, m.To), nil
	case MutationToggle:
		session.ToggleGroup(path, widgets.Group(m.Group))
		return form.MutationResult{Applied: true}, nil
	}
	return session.Apply(form.Action{
		Kind:  form.ActionKind(m.Kind),
		Path:  path,
		Index: m.Index,
	}), nil
}

// ApplyValues writes posted form values onto the scalar controls of
// session. Keys are control paths; when a key repeats the last value wins,
// which is how toggles post their hidden "false" ahead of the checkbox.
func ApplyValues(session *form.Session, values url.Values) form.MutationResult {
	var out form.MutationResult
	if session == nil || len(values) == 0 {
		return out
	}
	f := session.Form()
	if f == nil || f.Root == nil {
		return out
	}

	var leaves []*form.Control
	collectLeaves(f.Root, &leaves)
	for _, control := range leaves {
		posted, ok := values[control.Path.String()]
		if !ok || len(posted) == 0 {
			continue
		}
		value := parseValue(control, posted[len(posted)-1])
		if sameScalar(control.Value, value) {
			continue
		}
		res := session.SetScalar(control.Path, value)
		out.Applied = out.Applied || res.Applied
		out.Diagnostics = append(out.Diagnostics, res.Diagnostics...)
	}
	return out
}

func collectLeaves(c *form.Control, out *[]*form.Control) {
	if c == nil {
		return
	}
	switch c.Kind {
	case schema.KindObject:
		for _, section := range c.Groups {
			for _, child := range section.Controls {
				collectLeaves(child, out)
			}
		}
		return
	case schema.KindArray:
		for _, item := range c.Items {
			collectLeaves(item.Control, out)
		}
		return
	}
	if c.ReadOnly || len(c.Path) == 0 {
		return
	}
	*out = append(*out, c)
}

func parseValue(c *form.Control, raw string) any {
	switch c.Kind {
	case schema.KindBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	case schema.KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" && (c.Optional || c.Nullable) {
			return nil
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
		// Left for the normalizer to repair and report.
		return raw
	}
	return raw
}

func sameScalar(current, next any) bool {
	switch a := current.(type) {
	case string:
		b, ok := next.(string)
		return ok && a == b
	case float64:
		b, ok := next.(float64)
		return ok && a == b
	case bool:
		b, ok := next.(bool)
		return ok && a == b
	}
	return false
}
