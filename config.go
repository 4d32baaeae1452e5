package sectionform

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/pkg/links"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// ErrConfigPathRequired is returned by LoadConfig for an empty path.
var ErrConfigPathRequired = errors.New("sectionform config: path is required")

// Config aggregates everything needed to assemble an editor runtime.
type Config struct {
	Contracts  ContractsConfig  `yaml:"contracts"`
	Storage    StorageConfig    `yaml:"storage"`
	Links      LinksConfig      `yaml:"links"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Theme      ThemeConfig      `yaml:"theme"`
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// ContractsConfig points at contract documents and presentation overlays.
// An empty Dir loads the built-in contracts.
type ContractsConfig struct {
	Dir      string `yaml:"dir"`
	Overlays string `yaml:"overlays"`
}

// StorageConfig selects the section store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LinksConfig configures page links and media buckets.
type LinksConfig struct {
	BaseURL  string            `yaml:"base_url"`
	PagePath string            `yaml:"page_path"`
	Pages    []links.Page      `yaml:"pages"`
	Buckets  map[string]string `yaml:"buckets"`
}

// NormalizerConfig toggles optional repairs.
type NormalizerConfig struct {
	WrapScalars bool `yaml:"wrap_scalars"`
}

// ThemeConfig selects a go-theme manifest. Dir loads a manifest from disk;
// otherwise Tokens build an inline theme called Name.
type ThemeConfig struct {
	Dir     string            `yaml:"dir"`
	Name    string            `yaml:"name"`
	Variant string            `yaml:"variant"`
	Tokens  map[string]string `yaml:"tokens"`
}

// LoggingConfig configures the go-logger provider.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// HTTPConfig configures the admin API listener.
type HTTPConfig struct {
	Addr string     `yaml:"addr"`
	CSRF CSRFConfig `yaml:"csrf"`
}

// CSRFConfig echoes the token found in Cookie as a hidden input named Field
// on every rendered form. An empty Field disables it.
type CSRFConfig struct {
	Field  string `yaml:"field"`
	Cookie string `yaml:"cookie"`
}

// DefaultConfig returns an in-memory setup serving the built-in contracts.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Links: LinksConfig{
			PagePath: "/:slug",
			Buckets:  map[string]string{},
		},
		Normalizer: NormalizerConfig{
			WrapScalars: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Validate performs consistency checks across every section.
func (cfg Config) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Storage),
		validation.Field(&cfg.Links),
		validation.Field(&cfg.Theme),
		validation.Field(&cfg.Logging),
		validation.Field(&cfg.HTTP),
	)
}

func (s StorageConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(StorageMemory, StorageSQLite)),
		validation.Field(&s.DSN, validation.When(s.Driver == StorageSQLite, validation.Required)),
	)
}

func (l LinksConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.PagePath, validation.By(func(value any) error {
			path, _ := value.(string)
			if strings.TrimSpace(path) != "" && !strings.Contains(path, ":slug") {
				return validation.NewError("sectionform.page_path", "must contain :slug")
			}
			return nil
		})),
		validation.Field(&l.Pages, validation.Each(validation.By(func(value any) error {
			page, _ := value.(links.Page)
			if strings.TrimSpace(page.Slug) == "" && strings.TrimSpace(page.Title) == "" {
				return validation.NewError("sectionform.page", "slug or title is required")
			}
			return nil
		}))),
	)
}

func (t ThemeConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.When(len(t.Tokens) > 0 && strings.TrimSpace(t.Dir) == "", validation.Required)),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")),
		validation.Field(&l.Format, validation.In("json", "console", "pretty")),
	)
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Addr, validation.Required),
		validation.Field(&h.CSRF),
	)
}

func (c CSRFConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Cookie, validation.When(c.Field != "", validation.Required)),
	)
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, ErrConfigPathRequired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sectionform config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sectionform config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("sectionform config: %w", err)
	}
	return cfg, nil
}
