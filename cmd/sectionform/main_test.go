package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	sectionform "github.com/goliatone/go-sectionform"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/renderers/tui"
)

func useRuntime(t *testing.T) {
	t.Helper()
	logLevel = "error"
	runtime, err := openRuntime(context.Background())
	if err != nil {
		t.Fatalf("openRuntime failed: %v", err)
	}
	rt = runtime
	t.Cleanup(func() {
		_ = closeRuntime()
		configPath = ""
		logLevel = ""
		dataFile = ""
		rendererName = ""
		editPageID = ""
	})
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd, stdout, stderr
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigAppliesLogLevelOverride(t *testing.T) {
	configPath = writeFile(t, "sectionform.yaml", "logging:\n  level: debug\nhttp:\n  addr: \":9090\"\n")
	logLevel = "warn"
	defer func() {
		configPath = ""
		logLevel = ""
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level override, got %q", cfg.Logging.Level)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected addr from file, got %q", cfg.HTTP.Addr)
	}
}

func TestCommandsRequireRuntime(t *testing.T) {
	rt = nil
	cmd, _, _ := newTestCommand()
	if err := listContracts(cmd, nil); err == nil {
		t.Fatal("expected an error without a runtime")
	}
}

func TestListContracts(t *testing.T) {
	useRuntime(t)
	cmd, stdout, _ := newTestCommand()

	if err := listContracts(cmd, nil); err != nil {
		t.Fatalf("listContracts failed: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"TYPE", "faq", "gallery", "hero", "pricing", "commerce"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintSchema(t *testing.T) {
	useRuntime(t)
	cmd, stdout, _ := newTestCommand()

	if err := printSchema(cmd, []string{"faq"}); err != nil {
		t.Fatalf("printSchema failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	props, _ := doc["properties"].(map[string]any)
	if _, ok := props["items"]; !ok {
		t.Errorf("expected items property, got %v", doc["properties"])
	}

	err := printSchema(cmd, []string{"carousel"})
	if !errors.Is(err, contracts.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestRenderSectionDefaults(t *testing.T) {
	useRuntime(t)
	cmd, stdout, _ := newTestCommand()

	if err := renderSection(cmd, []string{"hero"}); err != nil {
		t.Fatalf("renderSection failed: %v", err)
	}
	if !strings.Contains(stdout.String(), `data-section-type="hero"`) {
		t.Errorf("expected hero form, got:\n%s", stdout.String())
	}
}

func TestRenderSectionFromYAMLData(t *testing.T) {
	useRuntime(t)
	dataFile = writeFile(t, "hero.yaml", "title: Launch week\nheroImages: one.png\n")
	cmd, stdout, stderr := newTestCommand()

	if err := renderSection(cmd, []string{"hero"}); err != nil {
		t.Fatalf("renderSection failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Launch week") {
		t.Errorf("expected stored title in form")
	}
	if !strings.Contains(stderr.String(), "repaired") {
		t.Errorf("expected repairs on stderr, got %q", stderr.String())
	}
}

func TestRenderSectionUnknownRenderer(t *testing.T) {
	useRuntime(t)
	rendererName = "pdf"
	cmd, _, _ := newTestCommand()

	if err := renderSection(cmd, []string{"hero"}); err == nil {
		t.Fatal("expected unknown renderer error")
	}
}

func TestNormalizeSection(t *testing.T) {
	useRuntime(t)
	dataFile = writeFile(t, "faq.json", `{"title": "Help", "items": [{"question": "Why?", "answer": "Because."}]}`)
	cmd, stdout, _ := newTestCommand()

	if err := normalizeSection(cmd, []string{"faq"}); err != nil {
		t.Fatalf("normalizeSection failed: %v", err)
	}
	var preview struct {
		Valid bool           `json:"valid"`
		Value map[string]any `json:"value"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if !preview.Valid {
		t.Errorf("expected valid preview, got %s", stdout.String())
	}
	if preview.Value["title"] != "Help" {
		t.Errorf("expected title Help, got %v", preview.Value["title"])
	}
}

func TestReadDataNormalizesYAMLNumbers(t *testing.T) {
	path := writeFile(t, "plan.yml", "name: Pro\nprice: 12\nfeatures:\n  - sso\n")
	got, err := readData(path)
	if err != nil {
		t.Fatalf("readData failed: %v", err)
	}
	want := map[string]any{
		"name":     "Pro",
		"price":    float64(12),
		"features": []any{"sso"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("readData mismatch (-want +got):\n%s", diff)
	}

	if _, err := readData(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

// scriptedDriver answers prompts by label and adds a fixed number of items
// to every list it is offered.
type scriptedDriver struct {
	answers  map[string]string
	addItems int
}

func (d *scriptedDriver) answer(label, fallback string) string {
	if value, ok := d.answers[strings.ToLower(label)]; ok {
		return value
	}
	return fallback
}

func (d *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	return d.answer(cfg.Message, cfg.Default), nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	if strings.HasPrefix(cfg.Message, "Add an item") && d.addItems > 0 {
		d.addItems--
		return true, nil
	}
	return cfg.Default, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.answer(cfg.Message, cfg.Default), nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestEditSectionPrintsDocument(t *testing.T) {
	useRuntime(t)
	driver := &scriptedDriver{
		answers: map[string]string{
			"title":    "Help",
			"question": "How do I sign in?",
			"answer":   "Use your email.",
		},
		addItems: 1,
	}
	previous := newEditor
	newEditor = func(io.Writer) (*tui.Renderer, error) {
		return tui.New(tui.WithPromptDriver(driver))
	}
	defer func() { newEditor = previous }()

	cmd, stdout, _ := newTestCommand()
	if err := editSection(cmd, []string{"faq"}); err != nil {
		t.Fatalf("editSection failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	want := map[string]any{
		"title": "Help",
		"items": []any{
			map[string]any{"question": "How do I sign in?", "answer": "Use your email."},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestEditSectionRejectsBadPageID(t *testing.T) {
	useRuntime(t)
	editPageID = "not-a-uuid"
	cmd, _, _ := newTestCommand()

	if err := editSection(cmd, []string{"faq"}); err == nil {
		t.Fatal("expected invalid page id error")
	}
}

func TestServeRouter(t *testing.T) {
	useRuntime(t)
	router, err := newRouter()
	if err != nil {
		t.Fatalf("newRouter failed: %v", err)
	}
	srv := httptest.NewServer(router)
	defer srv.Close()

	for _, path := range []string{"/healthz", "/contracts", "/assets/sectionform.css"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestServeRouterEchoesCSRFCookie(t *testing.T) {
	useRuntime(t)
	rt.Config.HTTP.CSRF = sectionform.CSRFConfig{Field: "_csrf", Cookie: "csrf_token"}
	router, err := newRouter()
	if err != nil {
		t.Fatalf("newRouter failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/contracts/faq/form", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc123"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `<input type="hidden" name="_csrf" value="abc123">`) {
		t.Errorf("expected csrf input in form")
	}
}

func TestCSRFOptionDisabledWithoutField(t *testing.T) {
	if opt := csrfOption(sectionform.CSRFConfig{Cookie: "csrf_token"}); opt != nil {
		t.Error("expected no option without a field")
	}
}
