package uischema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML overlay files.
// When fsys is nil or no overlay files are present, the returned store is
// empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{overlays: make(map[string]Overlay)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != "." && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !isOverlayFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for typeID, raw := range doc.Contracts {
			id := strings.TrimSpace(typeID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty contract type", path)
			}
			if existing, exists := store.overlays[id]; exists {
				return fmt.Errorf("uischema: duplicate overlay for %q (files %s and %s)", id, existing.Source, path)
			}
			overlay, err := normaliseOverlay(raw, id, path)
			if err != nil {
				return err
			}
			store.overlays[id] = overlay
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadDir reads overlays from a directory on disk. An empty dir yields an
// empty store.
func LoadDir(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return LoadFS(nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("uischema: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("uischema: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// Overlay returns the overlay for the supplied contract type.
func (s *Store) Overlay(typeID string) (Overlay, bool) {
	if s == nil {
		return Overlay{}, false
	}
	overlay, ok := s.overlays[typeID]
	return overlay, ok
}

// TypeIDs lists the contract types with an overlay, sorted.
func (s *Store) TypeIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.overlays))
	for id := range s.overlays {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds any overlays.
func (s *Store) Empty() bool {
	return s == nil || len(s.overlays) == 0
}

type documentFile struct {
	Contracts map[string]overlayFile `json:"contracts" yaml:"contracts"`
}

type overlayFile struct {
	ContractConfig `yaml:",inline"`
	Fields         map[string]FieldConfig `json:"fields" yaml:"fields"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(bytes.TrimSpace(data)) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return documentFile{}, fmt.Errorf("uischema: parse %s: %w", source, err)
		}
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return documentFile{}, fmt.Errorf("uischema: parse %s: %w", source, err)
	}
	return doc, nil
}

// UnmarshalJSON flattens the contract-level keys the way the yaml inline tag
// does.
func (o *overlayFile) UnmarshalJSON(data []byte) error {
	type plain struct {
		ContractConfig
		Fields map[string]FieldConfig `json:"fields"`
	}
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	o.ContractConfig = p.ContractConfig
	o.Fields = p.Fields
	return nil
}

func normaliseOverlay(raw overlayFile, id, source string) (Overlay, error) {
	overlay := Overlay{
		TypeID:   id,
		Source:   source,
		Contract: raw.ContractConfig,
		Fields:   make(map[string]FieldConfig, len(raw.Fields)),
	}
	overlay.Contract.Order = append([]string(nil), raw.Order...)
	icon, err := normalizeIcon(raw.Icon)
	if err != nil {
		return Overlay{}, fmt.Errorf("uischema: contract %q (file %s): %w", id, source, err)
	}
	overlay.Contract.Icon = icon

	for key, cfg := range raw.Fields {
		if _, err := ParseFieldPath(key); err != nil {
			return Overlay{}, fmt.Errorf("uischema: contract %q (file %s): %w", id, source, err)
		}
		normalised := NormalizeFieldPath(key)
		if _, exists := overlay.Fields[normalised]; exists {
			return Overlay{}, fmt.Errorf("uischema: contract %q (file %s) defines duplicate field path %q", id, source, normalised)
		}
		cfg.OriginalPath = key
		overlay.Fields[normalised] = cfg
	}
	return overlay, nil
}

func isOverlayFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
