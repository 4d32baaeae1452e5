package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/pkg/catalog"
	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/render"
	"github.com/goliatone/go-sectionform/pkg/renderers/html"
	"github.com/goliatone/go-sectionform/pkg/uischema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
	"github.com/google/uuid"
)

const defaultRendererName = html.Name

var (
	// ErrNoSectionStore is returned by operations that need persistence when
	// none was configured.
	ErrNoSectionStore = errors.New("orchestrator: section store is not configured")
	// ErrUnsupportedSection is returned when a structural edit targets a
	// section whose type has no contract.
	ErrUnsupportedSection = errors.New("orchestrator: section type has no contract")
)

// SectionStore persists sections and reads them back.
type SectionStore interface {
	content.Actions
	Get(ctx context.Context, id uuid.UUID) (content.Section, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithContracts injects a pre-populated contract registry. Catalog sources
// configured with WithContractsFS are registered into it.
func WithContracts(registry *contracts.Registry) Option {
	return func(o *Orchestrator) {
		o.contracts = registry
	}
}

// WithCatalog replaces the catalog used to decode contract documents.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// WithContractsFS registers every contract document found under root.
func WithContractsFS(fsys fs.FS, root string) Option {
	return func(o *Orchestrator) {
		if fsys == nil {
			return
		}
		o.contractSources = append(o.contractSources, contractSource{fs: fsys, root: root})
	}
}

// WithDefinitions registers definitions built in code.
func WithDefinitions(defs ...contracts.Definition) Option {
	return func(o *Orchestrator) {
		o.definitions = append(o.definitions, defs...)
	}
}

// WithTransformers registers transformers that rewrite definitions after
// decoding but before overlays are applied.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		for _, t := range transformers {
			if t != nil {
				o.transformers = append(o.transformers, t)
			}
		}
	}
}

// WithOverlaysFS supplies an fs.FS holding presentation overlays. Pass nil
// to disable the embedded defaults.
func WithOverlaysFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.overlaysFS = fsys
		o.overlaysSpecified = true
	}
}

// WithClassifier overrides the widget registry used by the form walker.
func WithClassifier(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.classifier = registry
	}
}

// WithNormalizer overrides the data normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *Orchestrator) {
		o.normalizer = n
	}
}

// WithResolver sets the link and media resolver.
func WithResolver(resolver links.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = resolver
	}
}

// WithSectionStore sets the persistence collaborator.
func WithSectionStore(store SectionStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.renderers = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.OrNoOp(logger)
	}
}

// WithLoggerProvider derives the orchestrator and session loggers from
// provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *Orchestrator) {
		if provider == nil {
			return
		}
		o.logger = logging.OrchestratorLogger(provider)
		o.sessionLogger = logging.FormLogger(provider)
	}
}

// WithDiagnosticSink forwards every diagnostic produced by sessions and
// previews.
func WithDiagnosticSink(sink diagnostics.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

type contractSource struct {
	fs   fs.FS
	root string
}

// Orchestrator coordinates contracts, editing sessions, persistence and
// rendering. Missing collaborators are initialised with the built-in
// implementations so callers can start with a single constructor call.
type Orchestrator struct {
	contracts         *contracts.Registry
	catalog           *catalog.Catalog
	contractSources   []contractSource
	definitions       []contracts.Definition
	transformers      []Transformer
	overlaysFS        fs.FS
	overlaysSpecified bool

	classifier *widgets.Registry
	normalizer *normalize.Normalizer
	resolver   links.Resolver
	walker     *form.Walker
	store      SectionStore

	renderers       *render.Registry
	defaultRenderer string
	themes          ThemeSelector
	themeName       string
	themeVariant    string
	themeFallbacks  map[string]string

	logger        interfaces.Logger
	sessionLogger interfaces.Logger
	sink          diagnostics.Sink

	initialiseErr   error
	defaultsApplied bool

	mu       sync.Mutex
	sessions map[uuid.UUID]*form.Session
}

// New constructs an Orchestrator applying any provided options. Contract
// sources are loaded eagerly; failures surface from every later call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		sessions:        make(map[uuid.UUID]*form.Session),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Err reports the initialisation error, if any.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Contracts exposes the contract registry.
func (o *Orchestrator) Contracts() *contracts.Registry {
	return o.contracts
}

// Renderers exposes the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.renderers
}

// Resolver exposes the link resolver.
func (o *Orchestrator) Resolver() links.Resolver {
	return o.resolver
}

// Pages lists the known link targets.
func (o *Orchestrator) Pages() []links.Page {
	if o.resolver == nil {
		return nil
	}
	return o.resolver.ListKnownPages()
}

// Request describes one render call.
type Request struct {
	// Form is the synthesized form to render. Use Session.Form or
	// Editor.Form to build it.
	Form *form.Form

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as method overrides
	// or server-side errors that renderers can surface.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant select a theme when a selector is
	// configured and RenderOptions.Theme is empty.
	ThemeName    string
	ThemeVariant string
}

// Render resolves the renderer and theme for req and renders its form.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	if req.Form == nil {
		return nil, errors.New("orchestrator: form is required")
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		options.Theme = cfg
	}

	output, err := renderer.Render(ctx, req.Form, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// ContentType returns the content type of the named renderer.
func (o *Orchestrator) ContentType(name string) (string, error) {
	renderer, err := o.rendererFor(name)
	if err != nil {
		return "", err
	}
	return renderer.ContentType(), nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.initialiseErr; err != nil {
		return err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.renderers == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.renderers.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.renderers.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.renderers.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}
	o.defaultsApplied = true

	if o.logger == nil {
		o.logger = logging.NoOp()
	}
	if o.sessionLogger == nil {
		o.sessionLogger = o.logger
	}
	if o.sink == nil {
		o.sink = diagnostics.Discard()
	}
	if o.contracts == nil {
		o.contracts = contracts.NewRegistry(contracts.WithSink(o.sink))
	}
	if o.catalog == nil {
		o.catalog = DefaultCatalog(o.logger)
	}
	if o.classifier == nil {
		o.classifier = widgets.Default()
	}
	if o.normalizer == nil {
		o.normalizer = normalize.New(normalize.WithSink(o.sink))
	}

	walkerOpts := []form.WalkerOption{
		form.WithClassifier(o.classifier),
		form.WithNormalizer(o.normalizer),
	}
	if o.resolver != nil {
		walkerOpts = append(walkerOpts, form.WithResolver(o.resolver))
	}
	o.walker = form.NewWalker(walkerOpts...)

	if o.renderers == nil {
		o.renderers = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.renderers.MustRegister(renderer)
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	if err := o.loadContracts(); err != nil {
		o.initialiseErr = err
	}
}

func (o *Orchestrator) overlayDecorator() (*uischema.Decorator, error) {
	if !o.overlaysSpecified && o.overlaysFS == nil {
		o.overlaysFS = uischema.EmbeddedFS()
	}
	if o.overlaysFS == nil {
		return nil, nil
	}
	store, err := uischema.LoadFS(o.overlaysFS)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load overlays: %w", err)
	}
	if store.Empty() {
		return nil, nil
	}
	return uischema.NewDecorator(store), nil
}
