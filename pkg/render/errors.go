package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
)

// ErrorMapping splits an error payload into control-level and form-level
// messages. Control keys use the control path notation ("plans[0].name").
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload attaches server error messages to the deepest control
// whose path prefixes the error key. Keys may be JSON pointers
// ("/plans/0/name"), go-errors style dotted paths ("body.plans.0.name") or
// control paths ("plans[0].name"). Unknown paths become form-level errors so
// messages are not lost.
func MapErrorPayload(f *form.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	fieldPaths := make(map[string]string)
	if f != nil {
		collectFieldPaths(f.Root, fieldPaths)
	}

	for rawPath, messages := range payload {
		normalizedMessages := normalizeMessages(messages)
		if len(normalizedMessages) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(rawPath, fieldPaths)
		if formLevel || mapped == "" {
			mapping.Form = append(mapping.Form, normalizedMessages...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], normalizedMessages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// FieldErrors maps error-severity diagnostics (typically the output of
// form.SubmissionError.Diagnostics) onto the form's controls.
func FieldErrors(f *form.Form, list diagnostics.List) ErrorMapping {
	payload := make(map[string][]string)
	for _, d := range list {
		if d.Severity != diagnostics.SeverityError {
			continue
		}
		payload[d.Path] = append(payload[d.Path], d.Message)
	}
	return MapErrorPayload(f, payload)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best, bestLen := "", 0
	for _, variant := range [][]string{segments, dropWrapperSegments(segments)} {
		if path, n := longestMatchingPath(variant, fieldPaths); n > bestLen {
			best, bestLen = path, n
		}
	}
	if best != "" {
		return best, false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func longestMatchingPath(segments []string, fieldPaths map[string]string) (string, int) {
	for end := len(segments); end > 0; end-- {
		if path, ok := fieldPaths[strings.Join(segments[:end], ".")]; ok {
			return path, end
		}
	}
	return "", 0
}

// collectFieldPaths indexes every control by its dotted segment key
// ("plans.0.name") and stores the display path ("plans[0].name").
func collectFieldPaths(c *form.Control, dest map[string]string) {
	if c == nil {
		return
	}
	if len(c.Path) > 0 {
		parts := make([]string, 0, len(c.Path))
		for _, seg := range c.Path {
			if seg.IsIndex {
				parts = append(parts, strconv.Itoa(seg.Index))
				continue
			}
			parts = append(parts, seg.Name)
		}
		dest[strings.Join(parts, ".")] = c.Path.String()
	}
	for _, section := range c.Groups {
		for _, child := range section.Controls {
			collectFieldPaths(child, dest)
		}
	}
	for _, item := range c.Items {
		collectFieldPaths(item.Control, dest)
	}
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
