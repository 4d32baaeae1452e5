package sectionform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/internal/logging/gologger"
	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/render"
	"github.com/goliatone/go-sectionform/pkg/renderers/html"
	"github.com/goliatone/go-sectionform/pkg/renderers/tui"
)

const inlineThemeVersion = "1.0.0"

// Runtime is an orchestrator assembled from a Config together with the
// resources it owns.
type Runtime struct {
	Config       Config
	Orchestrator *orchestrator.Orchestrator
	Content      *content.Service
	Resolver     *links.URLKitResolver
	Logger       interfaces.Logger
	Provider     interfaces.LoggerProvider

	db *bun.DB
}

// NewRuntime validates cfg and wires storage, links, theme, logging and
// contracts into an orchestrator. Extra options are applied last.
func NewRuntime(ctx context.Context, cfg Config, extra ...orchestrator.Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sectionform: invalid config: %w", err)
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("sectionform: logger: %w", err)
	}
	rt := &Runtime{
		Config:   cfg,
		Provider: provider,
		Logger:   logging.ModuleLogger(provider, "sectionform"),
	}

	store, db, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.Content = content.NewService(store, content.WithLogger(logging.ContentLogger(provider)))

	rt.Resolver, err = links.NewResolver(links.Options{
		BaseURL:  cfg.Links.BaseURL,
		PagePath: cfg.Links.PagePath,
		Buckets:  cfg.Links.Buckets,
		Pages:    cfg.Links.Pages,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("sectionform: links: %w", err)
	}

	renderers, err := defaultRenderers()
	if err != nil {
		rt.Close()
		return nil, err
	}

	sink := diagnostics.LoggerSink(logging.ModuleLogger(provider, "diagnostics"))
	options := []orchestrator.Option{
		orchestrator.WithLoggerProvider(provider),
		orchestrator.WithDiagnosticSink(sink),
		orchestrator.WithCatalog(orchestrator.DefaultCatalog(logging.CatalogLogger(provider))),
		orchestrator.WithSectionStore(rt.Content),
		orchestrator.WithResolver(rt.Resolver),
		orchestrator.WithRegistry(renderers),
		orchestrator.WithNormalizer(normalize.New(
			normalize.WithWrapScalars(cfg.Normalizer.WrapScalars),
			normalize.WithSink(sink),
		)),
	}

	if dir := strings.TrimSpace(cfg.Contracts.Dir); dir != "" {
		options = append(options, orchestrator.WithContractsFS(os.DirFS(dir), "."))
	} else {
		options = append(options, orchestrator.WithContractsFS(BuiltinContractsFS(), "."))
	}
	if dir := strings.TrimSpace(cfg.Contracts.Overlays); dir != "" {
		options = append(options, orchestrator.WithOverlaysFS(os.DirFS(dir)))
	}

	themeOpt, err := themeOption(cfg.Theme)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if themeOpt != nil {
		options = append(options, themeOpt)
	}

	rt.Orchestrator = orchestrator.New(append(options, extra...)...)
	if err := rt.Orchestrator.Err(); err != nil {
		rt.Close()
		return nil, fmt.Errorf("sectionform: %w", err)
	}
	rt.Logger.Info("runtime ready",
		"storage", cfg.Storage.Driver,
		"contracts", rt.Orchestrator.Contracts().List(),
		"pages", len(rt.Resolver.ListKnownPages()),
	)
	return rt, nil
}

// Close releases the database handle, if any.
func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func openStore(ctx context.Context, cfg StorageConfig) (content.Store, *bun.DB, error) {
	switch cfg.Driver {
	case "", StorageMemory:
		return content.NewMemoryStore(), nil, nil
	case StorageSQLite:
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sectionform: open sqlite: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		store := content.NewBunStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("sectionform: sqlite schema: %w", err)
		}
		return store, db, nil
	}
	return nil, nil, fmt.Errorf("sectionform: unsupported storage driver %q", cfg.Driver)
}

func defaultRenderers() (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("sectionform: html renderer: %w", err)
	}
	tuiRenderer, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("sectionform: tui renderer: %w", err)
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := registry.Register(tuiRenderer); err != nil {
		return nil, err
	}
	return registry, nil
}

func themeOption(cfg ThemeConfig) (orchestrator.Option, error) {
	var manifest *theme.Manifest
	switch {
	case strings.TrimSpace(cfg.Dir) != "":
		loaded, err := orchestrator.LoadThemeManifest(os.DirFS(cfg.Dir), ".")
		if err != nil {
			return nil, fmt.Errorf("sectionform: %w", err)
		}
		manifest = loaded
	case len(cfg.Tokens) > 0:
		manifest = &theme.Manifest{
			Name:    strings.TrimSpace(cfg.Name),
			Version: inlineThemeVersion,
			Tokens:  cfg.Tokens,
		}
	default:
		return nil, nil
	}
	if manifest == nil {
		return nil, errors.New("sectionform: theme manifest is empty")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = manifest.Name
	}
	return orchestrator.WithThemeManifests(name, cfg.Variant, manifest), nil
}
