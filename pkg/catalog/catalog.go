package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
)

// ErrNoAdapter is returned when no adapter recognises a document.
var ErrNoAdapter = errors.New("catalog: no adapter recognises document")

// Adapter turns one document syntax into contract definitions.
type Adapter interface {
	Name() string
	Detect(doc Document) bool
	Definitions(ctx context.Context, doc Document) ([]contracts.Definition, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithAdapters registers adapters ahead of the native format. Detection runs
// in registration order.
func WithAdapters(adapters ...Adapter) Option {
	return func(c *Catalog) {
		for _, adapter := range adapters {
			if adapter != nil {
				c.adapters = append(c.adapters, adapter)
			}
		}
	}
}

// WithLogger attaches a logger for load progress.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Catalog) {
		c.logger = logging.OrNoOp(logger)
	}
}

// Catalog loads contract definitions from documents, dispatching each one to
// the first adapter that recognises it.
type Catalog struct {
	loader   Loader
	adapters []Adapter
	logger   interfaces.Logger
}

// New constructs a catalog. loader may be nil when only LoadFS is used.
func New(loader Loader, opts ...Option) *Catalog {
	c := &Catalog{loader: loader, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.adapters = append(c.adapters, NativeAdapter())
	return c
}

// Adapters lists adapter names in detection order.
func (c *Catalog) Adapters() []string {
	out := make([]string, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		out = append(out, adapter.Name())
	}
	return out
}

// Detect returns the adapter that handles doc.
func (c *Catalog) Detect(doc Document) (Adapter, error) {
	for _, adapter := range c.adapters {
		if adapter.Detect(doc) {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAdapter, doc.Location())
}

// Load fetches src and decodes its definitions.
func (c *Catalog) Load(ctx context.Context, src Source) ([]contracts.Definition, error) {
	if c.loader == nil {
		return nil, errors.New("catalog: loader is nil")
	}
	doc, err := c.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return c.LoadDocument(ctx, doc)
}

// LoadDocument decodes the definitions held in doc.
func (c *Catalog) LoadDocument(ctx context.Context, doc Document) ([]contracts.Definition, error) {
	adapter, err := c.Detect(doc)
	if err != nil {
		return nil, err
	}
	defs, err := adapter.Definitions(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	c.logger.Debug("contracts decoded",
		"location", doc.Location(),
		"adapter", adapter.Name(),
		"count", len(defs),
	)
	return defs, nil
}

// LoadFS decodes every contract document under root, in lexical path order.
// Files with unknown extensions are skipped.
func (c *Catalog) LoadFS(ctx context.Context, files fs.FS, root string) ([]contracts.Definition, error) {
	if files == nil {
		return nil, errors.New("catalog: fs is nil")
	}
	if root == "" {
		root = "."
	}

	var paths []string
	err := fs.WalkDir(files, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if FormatOf(p) != FormatUnknown {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var out []contracts.Definition
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := fs.ReadFile(files, p)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", p, err)
		}
		doc, err := NewDocument(SourceFromFS(p), raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		defs, err := c.LoadDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, defs...)
	}
	c.logger.Info("contract catalog loaded", "root", root, "files", len(paths), "contracts", len(out))
	return out, nil
}

// Register adds every definition to reg, collecting all failures.
func Register(reg *contracts.Registry, defs []contracts.Definition) error {
	if reg == nil {
		return errors.New("catalog: registry is nil")
	}
	var errs []error
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
