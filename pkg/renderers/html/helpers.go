package html

import (
	"sort"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/render"
	"github.com/goliatone/go-sectionform/pkg/renderers/html/components"
)

func componentHandlesChrome(componentName string) bool {
	switch strings.TrimSpace(componentName) {
	case "group", "repeater", "list", "image-list":
		return true
	default:
		return false
	}
}

func labelSupportsFor(componentName string) bool {
	return componentName != components.Fallback
}

func hiddenViews(fields []render.HiddenField) []map[string]string {
	out := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]string{"name": field.Name, "value": field.Value})
	}
	return out
}

func noticeViews(f *form.Form) []map[string]string {
	var out []map[string]string
	if f.ReadOnly && f.Root == nil {
		out = append(out, map[string]string{"code": "closed", "message": closedNotice})
	}
	for _, d := range f.Diagnostics {
		out = append(out, map[string]string{
			"code":    string(d.Code),
			"path":    d.Path,
			"message": d.Message,
		})
	}
	return out
}

func scriptViews(scripts []components.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		typ := script.Type
		if script.Module {
			typ = "module"
		}
		out = append(out, map[string]any{
			"src":    script.Src,
			"type":   typ,
			"inline": script.Inline,
			"defer":  script.Defer,
			"async":  script.Async,
		})
	}
	return out
}

// themeView flattens the theme into template data. CSS variables are
// emitted as an inline style in key order.
func themeView(theme *render.ThemeConfig) map[string]any {
	if theme == nil {
		return map[string]any{}
	}
	keys := make([]string, 0, len(theme.CSSVars))
	for key := range theme.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var style strings.Builder
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		if style.Len() > 0 {
			style.WriteByte(' ')
		}
		style.WriteString(name)
		style.WriteString(": ")
		style.WriteString(theme.CSSVars[key])
		style.WriteByte(';')
	}
	return map[string]any{
		"name":    theme.Name,
		"variant": theme.Variant,
		"style":   style.String(),
	}
}
