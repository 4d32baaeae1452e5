package html

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/render/template"
	"github.com/goliatone/go-sectionform/pkg/renderers/html/components"
)

var actionLabels = map[form.ActionKind]string{
	form.ActionAdd:      "Add",
	form.ActionRemove:   "Remove",
	form.ActionMoveUp:   "Move up",
	form.ActionMoveDown: "Move down",
}

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	errors    map[string][]string
	config    map[string]any

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string, errors map[string][]string, config map[string]any) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		partials:       partials,
		errors:         errors,
		config:         config,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(control *form.Control) (string, error) {
	componentName := components.NameFor(control.Widget, control.Kind, control.ReadOnly)
	path := control.Path.String()

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, path)
	}

	data := components.ComponentData{
		Template:      r.templates,
		RenderChild:   r.render,
		ThemePartials: r.partials,
		Config:        r.config,
	}

	var markup bytes.Buffer
	if err := descriptor.Renderer(&markup, control, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, path, err)
	}
	r.usedComponents[componentName] = struct{}{}

	if len(control.Path) == 0 {
		return markup.String(), nil
	}
	readOnly, _ := r.config["read_only"].(bool)
	return buildFieldMarkup(control, componentName, markup.String(), r.errors[path], readOnly), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func buildFieldMarkup(control *form.Control, componentName, markup string, errors []string, readOnly bool) string {
	var builder strings.Builder
	builder.Grow(len(markup) + 256)

	builder.WriteString(`<div class="sf-field" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`" data-widget="`)
	builder.WriteString(html.EscapeString(string(control.Widget)))
	builder.WriteString(`" data-group="`)
	builder.WriteString(html.EscapeString(string(control.Group)))
	builder.WriteString(`" data-path="`)
	builder.WriteString(html.EscapeString(control.Path.String()))
	builder.WriteString(`"`)
	if control.Optional {
		builder.WriteString(` data-optional="true"`)
	}
	if len(errors) > 0 {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if shouldRenderLabel(control, componentName) {
		builder.WriteString(`    <label`)
		if labelSupportsFor(componentName) {
			builder.WriteString(` for="`)
			builder.WriteString(html.EscapeString(components.ControlID(control.Path)))
			builder.WriteString(`"`)
		}
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(control.Label))
		if control.Optional {
			builder.WriteString(` <span class="sf-optional">(optional)</span>`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(markup, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if !componentHandlesChrome(componentName) {
		if help := strings.TrimSpace(control.Help); help != "" {
			builder.WriteString(`    <small class="sf-help">`)
			builder.WriteString(html.EscapeString(help))
			builder.WriteString("</small>\n")
		}
	}

	if len(errors) > 0 {
		builder.WriteString(`    <ul class="sf-field-errors">`)
		for _, message := range errors {
			builder.WriteString(`<li>`)
			builder.WriteString(html.EscapeString(message))
			builder.WriteString(`</li>`)
		}
		builder.WriteString("</ul>\n")
	}

	if len(control.Actions) > 0 && !readOnly {
		builder.WriteString(`    <div class="sf-actions">`)
		for _, action := range control.Actions {
			writeActionButton(&builder, action)
		}
		builder.WriteString("</div>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func writeActionButton(builder *strings.Builder, action form.Action) {
	builder.WriteString(`<button type="button" class="sf-action" data-action="`)
	builder.WriteString(html.EscapeString(string(action.Kind)))
	builder.WriteString(`" data-path="`)
	builder.WriteString(html.EscapeString(action.Path.String()))
	builder.WriteString(`" data-index="`)
	builder.WriteString(strconv.Itoa(action.Index))
	builder.WriteString(`"`)
	if !action.Enabled {
		builder.WriteString(` disabled`)
	}
	builder.WriteString(`>`)
	label := actionLabels[action.Kind]
	if label == "" {
		label = string(action.Kind)
	}
	builder.WriteString(html.EscapeString(label))
	builder.WriteString(`</button>`)
}

func shouldRenderLabel(control *form.Control, componentName string) bool {
	if strings.TrimSpace(control.Label) == "" {
		return false
	}
	return !componentHandlesChrome(componentName)
}
