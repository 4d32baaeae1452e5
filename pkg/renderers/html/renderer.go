package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/render"
	rendertemplate "github.com/goliatone/go-sectionform/pkg/render/template"
	gotemplate "github.com/goliatone/go-sectionform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sectionform/pkg/renderers/html/components"
)

// Name is the registry key of the HTML renderer.
const Name = "html"

const (
	defaultAssetPrefix = "/assets"
	defaultSubmitLabel = "Save section"
	closedNotice       = "This editor is closed."
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	templateFuncs    map[string]any
	registry         *components.Registry
	assetPrefix      string
	inlineStyles     bool
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFuncs registers template helpers such as the ones returned by
// render.TemplateI18nFuncs.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFuncs == nil {
			cfg.templateFuncs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFuncs[name] = fn
		}
	}
}

// WithComponentRegistry replaces the widget component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithAssetPrefix sets the URL prefix the runtime stylesheet and script are
// served under. Defaults to "/assets".
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithInlineStylesheet embeds the stylesheet in the output instead of
// linking it, for standalone documents.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// WithSubmitLabel overrides the submit button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label = strings.TrimSpace(label); label != "" {
			cfg.submitLabel = label
		}
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	assetPrefix  string
	inlineStyles bool
	submitLabel  string
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		assetPrefix: defaultAssetPrefix,
		submitLabel: defaultSubmitLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(cfg.templateFuncs),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		registry:     cfg.registry,
		assetPrefix:  cfg.assetPrefix,
		inlineStyles: cfg.inlineStyles,
		submitLabel:  cfg.submitLabel,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes f as an HTML form. Localisation and subsets from options are
// applied to f in place.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if f == nil {
		return nil, fmt.Errorf("html renderer: form is nil")
	}

	render.LocalizeForm(f, options)
	render.ApplySubset(f, options.Subset)

	var partials map[string]string
	if options.Theme != nil {
		partials = options.Theme.Partials
	}
	config := map[string]any{
		"read_only": f.ReadOnly,
		"has_pages": len(f.Pages) > 0,
	}
	controls := newComponentRenderer(r.templates, r.registry, partials, options.Errors, config)

	var body string
	if f.Root != nil {
		rendered, err := controls.render(f.Root)
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		body = rendered
	}

	method, override := render.MethodOverride(options.Method)
	hidden := options.Hidden
	if override != nil {
		hidden = append(slices.Clone(hidden), *override)
	}

	stylesheets, scripts := controls.assets()
	var inlineStyle string
	if r.inlineStyles {
		inlineStyle = defaultStylesheet()
	} else {
		stylesheets = append([]string{r.assetURL(StylesheetName)}, stylesheets...)
	}
	if !f.ReadOnly {
		scripts = append(scripts, components.Script{Src: r.assetURL(RuntimeScriptName), Defer: true})
	}

	payload := map[string]any{
		"form": map[string]any{
			"type_id":    f.TypeID,
			"label":      f.Label,
			"section_id": f.SectionID,
			"read_only":  f.ReadOnly,
		},
		"method":        method,
		"action":        options.Action,
		"mutations_url": options.MutationsURL,
		"body":          body,
		"hidden":        hiddenViews(render.SortedHiddenFields(hidden...)),
		"errors":        render.MergeFormErrors(nil, options.FormErrors...),
		"notices":       noticeViews(f),
		"pages":         f.Pages,
		"pages_list_id": components.PagesListID,
		"theme":         themeView(options.Theme),
		"stylesheets":   stylesheets,
		"inline_style":  inlineStyle,
		"scripts":       scriptViews(scripts),
		"submit_label":  r.submitLabel,
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", payload)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) assetURL(name string) string {
	return r.assetPrefix + "/" + name
}
