package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/render"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
)

// Name is the registry key of the TUI renderer.
const Name = "tui"

const enterURLOption = "Enter a URL"

// Renderer prompts for every control of a form on the terminal and
// serializes the collected document. Edit drives a live session instead,
// applying each answer as a mutation.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for each control of f and returns the collected document.
// Arrays keep their current length; structural edits need Edit.
func (r *Renderer) Render(ctx context.Context, f *form.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if f == nil {
		return nil, errors.New("tui: form is nil")
	}
	if f.Root == nil {
		return nil, ErrSessionClosed
	}

	render.LocalizeForm(f, opts)
	render.ApplySubset(f, opts.Subset)

	if err := r.info(ctx, f.Label); err != nil {
		return nil, err
	}
	for _, message := range opts.FormErrors {
		if err := r.errorf(ctx, "%s", message); err != nil {
			return nil, err
		}
	}

	state := NewState(opts.Errors)
	if err := r.collect(ctx, f, f.Root, state); err != nil {
		return nil, err
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) collect(ctx context.Context, f *form.Form, c *form.Control, state *State) error {
	switch c.Kind {
	case schema.KindObject:
		if len(c.Path) > 0 {
			if err := state.SetValue(c.Path, map[string]any{}); err != nil {
				return err
			}
		}
		for _, section := range c.Groups {
			if section.Collapsed {
				expand, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Edit %s fields?", section.Label)})
				if err != nil {
					return err
				}
				if !expand {
					for _, child := range section.Controls {
						if err := copyValues(child, state); err != nil {
							return err
						}
					}
					continue
				}
			}
			for _, child := range section.Controls {
				if err := r.collect(ctx, f, child, state); err != nil {
					return err
				}
			}
		}
		return nil
	case schema.KindArray:
		if err := state.SetValue(c.Path, []any{}); err != nil {
			return err
		}
		for _, item := range c.Items {
			if err := r.collect(ctx, f, item.Control, state); err != nil {
				return err
			}
		}
		return nil
	}

	if len(c.Path) == 0 {
		return r.info(ctx, fmt.Sprint(c.Value))
	}
	if c.ReadOnly {
		if err := r.info(ctx, fmt.Sprintf("%s: %s", displayLabel(c), formatValue(c.Value))); err != nil {
			return err
		}
		return state.SetValue(c.Path, c.Value)
	}
	value, err := r.prompt(ctx, f.Pages, c, state.ErrorsFor(c.Path))
	if err != nil {
		return err
	}
	return state.SetValue(c.Path, value)
}

// copyValues stores the current values of c without prompting.
func copyValues(c *form.Control, state *State) error {
	switch c.Kind {
	case schema.KindObject:
		if err := state.SetValue(c.Path, map[string]any{}); err != nil {
			return err
		}
		for _, section := range c.Groups {
			for _, child := range section.Controls {
				if err := copyValues(child, state); err != nil {
					return err
				}
			}
		}
		return nil
	case schema.KindArray:
		if err := state.SetValue(c.Path, []any{}); err != nil {
			return err
		}
		for _, item := range c.Items {
			if err := copyValues(item.Control, state); err != nil {
				return err
			}
		}
		return nil
	}
	return state.SetValue(c.Path, c.Value)
}

// prompt asks for one scalar value using the prompt that fits the widget.
func (r *Renderer) prompt(ctx context.Context, pages []links.Page, c *form.Control, errs []string) (any, error) {
	label := displayLabel(c)
	for _, message := range errs {
		if err := r.errorf(ctx, "%s: %s", label, message); err != nil {
			return nil, err
		}
	}

	switch c.Widget {
	case widgets.WidgetToggle:
		current, _ := c.Value.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current, Help: c.Help})
	case widgets.WidgetNumber:
		return r.promptNumber(ctx, c, label)
	case widgets.WidgetTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: formatValue(c.Value), Help: c.Help})
		if err != nil {
			return nil, err
		}
		return emptyAsNull(c, value), nil
	case widgets.WidgetLink:
		if len(pages) > 0 {
			return r.promptLink(ctx, pages, c, label)
		}
	}

	help := c.Help
	if c.Bucket != "" && (c.Widget == widgets.WidgetImage || c.Widget == widgets.WidgetIcon) {
		help = strings.TrimSpace(help + fmt.Sprintf(" (stored in bucket %q)", c.Bucket))
	}
	value, err := r.driver.Input(ctx, InputConfig{
		Message:     label,
		Default:     formatValue(c.Value),
		Help:        help,
		Placeholder: c.Placeholder,
	})
	if err != nil {
		return nil, err
	}
	return emptyAsNull(c, value), nil
}

func (r *Renderer) promptNumber(ctx context.Context, c *form.Control, label string) (any, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     formatValue(c.Value),
			Help:        c.Help,
			Placeholder: c.Placeholder,
			Validator:   numberValidator(c.Nullable || c.Optional),
		})
		if err != nil {
			return nil, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			if c.Nullable || c.Optional {
				return nil, nil
			}
			if err := r.errorf(ctx, "Invalid %s: required", label); err != nil {
				return nil, err
			}
			continue
		}
		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil {
			if err := r.errorf(ctx, "Invalid %s: %q is not a number", label, input); err != nil {
				return nil, err
			}
			continue
		}
		return parsed, nil
	}
}

// numberValidator lets the terminal reject non-numeric answers in place.
// Drivers without validation fall back to the re-prompt loop.
func numberValidator(allowEmpty bool) func(string) error {
	return func(input string) error {
		input = strings.TrimSpace(input)
		if input == "" {
			if allowEmpty {
				return nil
			}
			return errors.New("required")
		}
		if _, err := strconv.ParseFloat(input, 64); err != nil {
			return fmt.Errorf("%q is not a number", input)
		}
		return nil
	}
}

func (r *Renderer) promptLink(ctx context.Context, pages []links.Page, c *form.Control, label string) (any, error) {
	current := formatValue(c.Value)
	options := make([]string, 0, len(pages)+1)
	options = append(options, enterURLOption)
	defaultIdx := 0
	for idx, page := range pages {
		options = append(options, fmt.Sprintf("%s (%s)", page.Title, page.Slug))
		if page.Slug == current {
			defaultIdx = idx + 1
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      options,
		DefaultIndex: defaultIdx,
		Help:         c.Help,
	})
	if err != nil {
		return nil, err
	}
	if idx > 0 && idx <= len(pages) {
		return pages[idx-1].Slug, nil
	}
	value, err := r.driver.Input(ctx, InputConfig{Message: label, Default: current, Placeholder: c.Placeholder})
	if err != nil {
		return nil, err
	}
	return emptyAsNull(c, value), nil
}

func (r *Renderer) info(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(c *form.Control) string {
	if c.Label != "" {
		return c.Label
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Path.String()
}

func emptyAsNull(c *form.Control, value string) any {
	if value == "" && c.Nullable {
		return nil
	}
	return value
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for idx, val := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, idx), val, out)
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, formatValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, formatValue(v))
		}
	}
}
