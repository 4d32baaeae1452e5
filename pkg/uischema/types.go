package uischema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/schema"
)

// Store keeps the parsed overlays keyed by contract type id. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	overlays map[string]Overlay
}

// Overlay holds the presentation overrides for one contract.
type Overlay struct {
	TypeID   string
	Source   string
	Contract ContractConfig
	Fields   map[string]FieldConfig
}

// ContractConfig overrides contract metadata and root field order.
type ContractConfig struct {
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Order       []string `json:"order,omitempty" yaml:"order,omitempty"`
}

// FieldConfig customises how one field is presented.
type FieldConfig struct {
	Widget       string `json:"widget,omitempty" yaml:"widget,omitempty"`
	Group        string `json:"group,omitempty" yaml:"group,omitempty"`
	Bucket       string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Help         string `json:"help,omitempty" yaml:"help,omitempty"`
	Placeholder  string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	OriginalPath string `json:"-" yaml:"-"`
}

// Hint converts the config into a schema hint.
func (c FieldConfig) Hint() schema.Hint {
	return schema.Hint{
		Widget:      strings.TrimSpace(c.Widget),
		Group:       strings.TrimSpace(c.Group),
		Bucket:      strings.TrimSpace(c.Bucket),
		Label:       strings.TrimSpace(c.Label),
		Help:        strings.TrimSpace(c.Help),
		Placeholder: strings.TrimSpace(c.Placeholder),
	}
}

// Step is one segment of an overlay field path: a field name, or a step into
// the elements of an array.
type Step struct {
	Name    string
	Element bool
}

// ParseFieldPath splits "plans[].features" style keys into steps. Numeric
// indexes are treated like "[]".
func ParseFieldPath(raw string) ([]Step, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("uischema: field path is empty")
	}
	var steps []Step
	for _, part := range strings.Split(trimmed, ".") {
		name := part
		elements := 0
		for strings.HasSuffix(name, "]") {
			open := strings.LastIndex(name, "[")
			if open < 0 {
				return nil, fmt.Errorf("uischema: unbalanced brackets in field path %q", raw)
			}
			index := name[open+1 : len(name)-1]
			if strings.Trim(index, "0123456789") != "" {
				return nil, fmt.Errorf("uischema: invalid index %q in field path %q", index, raw)
			}
			name = name[:open]
			elements++
		}
		if strings.ContainsAny(name, "[]") {
			return nil, fmt.Errorf("uischema: unbalanced brackets in field path %q", raw)
		}
		if name == "" {
			if elements == 0 || len(steps) == 0 {
				return nil, fmt.Errorf("uischema: empty segment in field path %q", raw)
			}
		} else {
			steps = append(steps, Step{Name: name})
		}
		for i := 0; i < elements; i++ {
			steps = append(steps, Step{Element: true})
		}
	}
	return steps, nil
}

// NormalizeFieldPath renders a field path with every index collapsed to "[]".
func NormalizeFieldPath(raw string) string {
	steps, err := ParseFieldPath(raw)
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, step := range steps {
		if step.Element {
			b.WriteString("[]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Name)
	}
	return b.String()
}
