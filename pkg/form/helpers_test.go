package form

import (
	"testing"

	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

func testRegistry(t *testing.T) *contracts.Registry {
	t.Helper()
	r := contracts.NewRegistry()
	r.MustRegister(contracts.Definition{TypeID: "hero", Schema: testsupport.HeroDef(), Metadata: contracts.Metadata{Label: "Hero"}})
	r.MustRegister(contracts.Definition{TypeID: "gallery", Schema: testsupport.GalleryDef()})
	r.MustRegister(contracts.Definition{TypeID: "faq", Schema: testsupport.FAQDef()})
	r.MustRegister(contracts.Definition{TypeID: "pricing", Schema: testsupport.PricingDef()})
	return r
}

func mustContract(t *testing.T, typeID string) contracts.Contract {
	t.Helper()
	c, ok := testRegistry(t).Get(typeID)
	if !ok {
		t.Fatalf("contract %q missing", typeID)
	}
	return c
}

func path(raw string) schema.Path {
	return schema.MustParsePath(raw)
}
