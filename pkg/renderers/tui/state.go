package tui

import (
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/schema"
)

// State collects prompted values and server-provided errors. Values are
// addressed by schema paths; errors by their rendered form ("plans[0].name").
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with errors keyed by path.
func NewState(errs map[string][]string) *State {
	return &State{
		values: make(map[string]any),
		errors: cloneErrors(errs),
	}
}

// Values returns the collected document (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to path.
func (s *State) ErrorsFor(path schema.Path) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path.String()]
}

// GetValue resolves path in the collected values.
func (s *State) GetValue(path schema.Path) (any, bool) {
	if s == nil {
		return nil, false
	}
	var current any = s.values
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

// SetValue writes value at path, creating intermediate maps and growing
// slices as needed.
func (s *State) SetValue(path schema.Path, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if len(path) == 0 {
		doc, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("tui: document root must be an object")
		}
		s.values = doc
		return nil
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	updated, err := setIn(s.values, path, value)
	if err != nil {
		return err
	}
	s.values = updated.(map[string]any)
	return nil
}

// setIn returns container with value written at path. Slices may be
// reallocated, so callers store the returned container.
func setIn(container any, path schema.Path, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	seg, rest := path[0], path[1:]
	if seg.IsIndex {
		list, _ := container.([]any)
		if seg.Index < 0 {
			return nil, fmt.Errorf("tui: negative index in path %q", path.String())
		}
		if len(list) <= seg.Index {
			list = append(list, make([]any, seg.Index+1-len(list))...)
		}
		next, err := setIn(childContainer(list[seg.Index], rest), rest, value)
		if err != nil {
			return nil, err
		}
		list[seg.Index] = next
		return list, nil
	}
	obj, _ := container.(map[string]any)
	if obj == nil {
		obj = make(map[string]any)
	}
	next, err := setIn(childContainer(obj[seg.Name], rest), rest, value)
	if err != nil {
		return nil, err
	}
	obj[seg.Name] = next
	return obj, nil
}

func childContainer(current any, rest schema.Path) any {
	if len(rest) == 0 {
		return current
	}
	if rest[0].IsIndex {
		if list, ok := current.([]any); ok {
			return list
		}
		return []any{}
	}
	if obj, ok := current.(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return make(map[string][]string)
	}
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
