package render

import (
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
)

// FieldSubset selects part of a form. Groups match root sections
// ("content", "media", ...); Paths match root field names. Both filters
// apply when both are set.
type FieldSubset struct {
	Groups []string
	Paths  []string
}

// Empty reports whether the subset selects everything.
func (s FieldSubset) Empty() bool {
	return len(normaliseTokens(s.Groups)) == 0 && len(normaliseTokens(s.Paths)) == 0
}

// ParseSubset reads comma separated group and path lists, as found in query
// strings.
func ParseSubset(groups, paths string) FieldSubset {
	return FieldSubset{
		Groups: splitList(groups),
		Paths:  splitList(paths),
	}
}

// ApplySubset drops root controls that do not match subset and prunes
// sections left empty. The form is modified in place; an empty subset or a
// nil form is a no-op.
func ApplySubset(f *form.Form, subset FieldSubset) {
	if f == nil || f.Root == nil || subset.Empty() {
		return
	}
	groups := normaliseTokens(subset.Groups)
	paths := normaliseTokens(subset.Paths)

	sections := make([]form.Section, 0, len(f.Root.Groups))
	for _, section := range f.Root.Groups {
		if len(groups) > 0 {
			if _, ok := groups[strings.ToLower(string(section.Group))]; !ok {
				continue
			}
		}
		if len(paths) > 0 {
			kept := make([]*form.Control, 0, len(section.Controls))
			for _, control := range section.Controls {
				if _, ok := paths[strings.ToLower(control.Name)]; ok {
					kept = append(kept, control)
				}
			}
			section.Controls = kept
		}
		if len(section.Controls) == 0 {
			continue
		}
		sections = append(sections, section)
	}
	f.Root.Groups = sections
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := strings.ToLower(strings.TrimSpace(value))
		if token == "" {
			continue
		}
		out[token] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
