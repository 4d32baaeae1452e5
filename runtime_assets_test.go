package sectionform

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "sectionform.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".sf-form") {
		t.Fatalf("expected stylesheet to style the form root")
	}
}

func TestRuntimeAssetsFSScriptPostsMutations(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "sectionform.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-mutations-url") {
		t.Fatalf("expected runtime script to read the mutations endpoint")
	}
}

func TestEmbeddedTemplatesExposeFormTemplate(t *testing.T) {
	matches, err := fs.Glob(EmbeddedTemplates(), "templates/*.tmpl")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected embedded templates")
	}
}
