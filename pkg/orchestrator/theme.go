package orchestrator

import (
	"fmt"
	"io/fs"
	"maps"
	"strings"

	"github.com/goliatone/go-sectionform/pkg/render"
	theme "github.com/goliatone/go-theme"
)

// ThemeSelector resolves a theme and variant into a selection.
type ThemeSelector = theme.ThemeSelector

// WithThemeSelector registers a selector consulted by Render when the
// request carries no explicit theme configuration.
func WithThemeSelector(selector ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themes = selector
	}
}

// WithThemeManifests registers manifests in a memory registry and selects
// from it, defaulting to defaultTheme and defaultVariant.
func WithThemeManifests(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		selector, err := NewThemeSelector(defaultTheme, defaultVariant, manifests...)
		if err != nil {
			o.initialiseErr = err
			return
		}
		o.themes = selector
		o.themeName = strings.TrimSpace(defaultTheme)
		o.themeVariant = strings.TrimSpace(defaultVariant)
	}
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		o.themeFallbacks = maps.Clone(fallbacks)
	}
}

// NewThemeSelector builds a go-theme selector over the given manifests.
func NewThemeSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (ThemeSelector, error) {
	registry := theme.NewRegistry()
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("orchestrator: register theme %q: %w", manifest.Name, err)
		}
	}
	return &theme.Selector{
		Registry:       registry,
		DefaultTheme:   strings.TrimSpace(defaultTheme),
		DefaultVariant: strings.TrimSpace(defaultVariant),
	}, nil
}

// LoadThemeManifest reads a theme manifest from dir inside fsys.
func LoadThemeManifest(fsys fs.FS, dir string) (*theme.Manifest, error) {
	if fsys == nil {
		return nil, fmt.Errorf("orchestrator: theme fs is nil")
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	manifest, err := theme.LoadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load theme manifest: %w", err)
	}
	return manifest, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*render.ThemeConfig, error) {
	if o.themes == nil {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		name = o.themeName
	}
	if strings.TrimSpace(variant) == "" {
		variant = o.themeVariant
	}
	selection, err := o.themes.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	return ThemeConfig(selection, o.themeFallbacks), nil
}

// ThemeConfig converts a go-theme selection into the renderer-facing view.
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *render.ThemeConfig {
	if selection == nil {
		return nil
	}
	return &render.ThemeConfig{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Tokens:   selection.Tokens(),
		CSSVars:  selection.CSSVariables(""),
		Partials: themePartials(selection, fallbacks),
	}
}

// themePartials resolves every template key the manifest or the selected
// variant declares, plus the fallback keys. selection.Partials alone only
// covers the fallbacks.
func themePartials(selection *theme.Selection, fallbacks map[string]string) map[string]string {
	keys := maps.Clone(fallbacks)
	if keys == nil {
		keys = map[string]string{}
	}
	if manifest := selection.Manifest; manifest != nil {
		for key := range manifest.Templates {
			if _, ok := keys[key]; !ok {
				keys[key] = ""
			}
		}
		for key := range manifest.Variants[selection.Variant].Templates {
			if _, ok := keys[key]; !ok {
				keys[key] = ""
			}
		}
	}
	return selection.Partials(keys)
}
