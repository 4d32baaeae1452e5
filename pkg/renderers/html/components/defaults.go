package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

const (
	templatePrefix = "templates/components/"
	partialPrefix  = "widgets."
)

// NewDefaultRegistry constructs a registry with a component for every
// built-in widget plus the read-only fallback.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, widget := range []widgets.Widget{
		widgets.WidgetText,
		widgets.WidgetTextarea,
		widgets.WidgetNumber,
		widgets.WidgetToggle,
		widgets.WidgetImage,
		widgets.WidgetIcon,
		widgets.WidgetLink,
	} {
		name := string(widget)
		registry.MustRegister(name, Descriptor{
			Renderer: templateComponentRenderer(partialPrefix+name, templatePrefix+name+".tmpl"),
		})
	}
	registry.MustRegister(Fallback, Descriptor{
		Renderer: templateComponentRenderer(partialPrefix+Fallback, templatePrefix+"fallback.tmpl"),
	})
	registry.MustRegister(string(widgets.WidgetGroup), Descriptor{
		Renderer: groupRenderer,
	})
	for _, widget := range []widgets.Widget{widgets.WidgetRepeater, widgets.WidgetList, widgets.WidgetImageList} {
		registry.MustRegister(string(widget), Descriptor{
			Renderer: arrayRenderer,
		})
	}
	return registry
}

// FieldView is the template-facing projection of a scalar control.
type FieldView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Widget      string `json:"widget"`
	Group       string `json:"group"`
	Kind        string `json:"kind"`
	Value       string `json:"value"`
	Checked     bool   `json:"checked"`
	Bucket      string `json:"bucket,omitempty"`
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Help        string `json:"help,omitempty"`
	ReadOnly    bool   `json:"read_only"`
	Optional    bool   `json:"optional"`
	Nullable    bool   `json:"nullable"`
	ListID      string `json:"list_id,omitempty"`
}

// ViewOf projects c into a FieldView.
func ViewOf(c *form.Control, config map[string]any) FieldView {
	view := FieldView{
		ID:          ControlID(c.Path),
		Name:        c.Path.String(),
		Label:       c.Label,
		Widget:      string(c.Widget),
		Group:       string(c.Group),
		Kind:        c.Kind.String(),
		Value:       FormatValue(c.Value),
		Bucket:      c.Bucket,
		URL:         c.URL,
		Placeholder: c.Placeholder,
		Help:        c.Help,
		ReadOnly:    c.ReadOnly || configBool(config, "read_only"),
		Optional:    c.Optional,
		Nullable:    c.Nullable,
	}
	if checked, ok := c.Value.(bool); ok {
		view.Checked = checked
	}
	if c.Widget == widgets.WidgetLink && configBool(config, "has_pages") {
		view.ListID = PagesListID
	}
	return view
}

// FormatValue renders a scalar document value as an input value.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(raw)
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, control *form.Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.ThemePartials != nil {
			if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		payload := map[string]any{
			"field":  ViewOf(control, data.Config),
			"config": data.Config,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func groupRenderer(buf *bytes.Buffer, control *form.Control, data ComponentData) error {
	var builder strings.Builder
	root := len(control.Path) == 0

	builder.WriteString(`<fieldset id="`)
	builder.WriteString(html.EscapeString(ControlID(control.Path)))
	builder.WriteString(`" class="sf-group`)
	if root {
		builder.WriteString(` sf-root`)
	}
	builder.WriteString(`"`)
	label := strings.TrimSpace(control.Label)
	if label != "" && !root {
		builder.WriteString(` aria-labelledby="`)
		builder.WriteString(html.EscapeString(LabelID(control.Path)))
		builder.WriteString(`">`)
		builder.WriteString(`<legend id="`)
		builder.WriteString(html.EscapeString(LabelID(control.Path)))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(label))
		builder.WriteString(`</legend>`)
	} else {
		builder.WriteString(`>`)
	}
	if help := strings.TrimSpace(control.Help); help != "" {
		builder.WriteString(`<p class="sf-help">`)
		builder.WriteString(html.EscapeString(help))
		builder.WriteString(`</p>`)
	}

	for _, section := range control.Groups {
		if len(section.Controls) == 0 {
			continue
		}
		if section.Group == widgets.GroupAdvanced {
			builder.WriteString(`<details class="sf-section" data-group="`)
			builder.WriteString(html.EscapeString(string(section.Group)))
			builder.WriteString(`" data-path="`)
			builder.WriteString(html.EscapeString(control.Path.String()))
			builder.WriteString(`"`)
			if !section.Collapsed {
				builder.WriteString(` open`)
			}
			builder.WriteString(`><summary>`)
			builder.WriteString(html.EscapeString(section.Label))
			builder.WriteString(`</summary>`)
		} else {
			builder.WriteString(`<section class="sf-section" data-group="`)
			builder.WriteString(html.EscapeString(string(section.Group)))
			builder.WriteString(`"><h3 class="sf-section-title">`)
			builder.WriteString(html.EscapeString(section.Label))
			builder.WriteString(`</h3>`)
		}

		if data.RenderChild != nil {
			for _, child := range section.Controls {
				rendered, err := data.RenderChild(child)
				if err != nil {
					return err
				}
				builder.WriteString(rendered)
			}
		}

		if section.Group == widgets.GroupAdvanced {
			builder.WriteString(`</details>`)
		} else {
			builder.WriteString(`</section>`)
		}
	}

	builder.WriteString(`</fieldset>`)
	buf.WriteString(builder.String())
	return nil
}

func arrayRenderer(buf *bytes.Buffer, control *form.Control, data ComponentData) error {
	var builder strings.Builder
	label := strings.TrimSpace(control.Label)

	builder.WriteString(`<div id="`)
	builder.WriteString(html.EscapeString(ControlID(control.Path)))
	builder.WriteString(`" class="sf-array" role="group" data-path="`)
	builder.WriteString(html.EscapeString(control.Path.String()))
	builder.WriteString(`"`)
	if label != "" {
		builder.WriteString(` aria-labelledby="`)
		builder.WriteString(html.EscapeString(LabelID(control.Path)))
		builder.WriteString(`"`)
	}
	builder.WriteString(`>`)
	if label != "" {
		builder.WriteString(`<div id="`)
		builder.WriteString(html.EscapeString(LabelID(control.Path)))
		builder.WriteString(`" class="sf-array-label">`)
		builder.WriteString(html.EscapeString(label))
		builder.WriteString(`</div>`)
	}
	if help := strings.TrimSpace(control.Help); help != "" {
		builder.WriteString(`<p class="sf-help">`)
		builder.WriteString(html.EscapeString(help))
		builder.WriteString(`</p>`)
	}

	if len(control.Items) == 0 {
		builder.WriteString(`<p class="sf-empty">No entries yet.</p>`)
	} else {
		builder.WriteString(`<ol class="sf-items">`)
		for _, item := range control.Items {
			builder.WriteString(`<li class="sf-item" data-index="`)
			builder.WriteString(strconv.Itoa(item.Index))
			builder.WriteString(`">`)
			if data.RenderChild != nil && item.Control != nil {
				rendered, err := data.RenderChild(item.Control)
				if err != nil {
					return err
				}
				builder.WriteString(rendered)
			}
			builder.WriteString(`</li>`)
		}
		builder.WriteString(`</ol>`)
	}

	builder.WriteString(`</div>`)
	buf.WriteString(builder.String())
	return nil
}

func configBool(config map[string]any, key string) bool {
	if config == nil {
		return false
	}
	value, _ := config[key].(bool)
	return value
}
