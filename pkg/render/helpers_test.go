package render_test

import (
	"testing"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/testsupport"
)

func pricingForm(t *testing.T) *form.Form {
	t.Helper()
	reg := contracts.NewRegistry()
	reg.MustRegister(contracts.Definition{TypeID: "pricing", Schema: testsupport.PricingDef()})
	contract, ok := reg.Get("pricing")
	if !ok {
		t.Fatalf("pricing contract missing")
	}
	session, err := form.OpenSession(contract, content.Section{
		SectionType: "pricing",
		Data: map[string]any{
			"title": "Plans",
			"plans": []any{
				map[string]any{"name": "Starter", "price": 0.0, "features": []any{"1 site"}},
				map[string]any{"name": "Pro", "price": 12.0, "features": []any{"10 sites"}, "highlighted": true},
			},
		},
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session.Form()
}
