package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sectionform "github.com/goliatone/go-sectionform"
	"github.com/goliatone/go-sectionform/internal/httpapi"
	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
)

type fixture struct {
	handler http.Handler
	service *content.Service
	orch    *orchestrator.Orchestrator
	pageID  uuid.UUID
}

func newFixture(t *testing.T, opts ...httpapi.Option) *fixture {
	t.Helper()
	resolver, err := links.NewResolver(links.Options{
		BaseURL: "https://example.com",
		Pages:   []links.Page{{Title: "About Us"}, {Slug: "pricing", Title: "Pricing"}},
	})
	require.NoError(t, err)

	service := content.NewService(content.NewMemoryStore())
	orch := orchestrator.New(
		orchestrator.WithContractsFS(sectionform.BuiltinContractsFS(), "."),
		orchestrator.WithSectionStore(service),
		orchestrator.WithResolver(resolver),
	)
	require.NoError(t, orch.Err())

	return &fixture{
		handler: httpapi.New(orch, opts...).Routes(),
		service: service,
		orch:    orch,
		pageID:  uuid.New(),
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case url.Values:
		reader = bytes.NewReader([]byte(v.Encode()))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	switch body.(type) {
	case nil:
	case url.Values:
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) createHero(t *testing.T, title string) uuid.UUID {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/sections", map[string]any{
		"section_type": "hero",
		"page_id":      f.pageID,
		"data":         map[string]any{"title": title},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	id, err := uuid.Parse(body["id"].(string))
	require.NoError(t, err)
	return id
}

func TestListContracts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/contracts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[[]map[string]any](t, rec)
	require.Len(t, body, 4)
	types := make([]string, 0, len(body))
	for _, entry := range body {
		types = append(types, entry["type"].(string))
	}
	assert.Equal(t, []string{"faq", "gallery", "hero", "pricing"}, types)
	assert.Equal(t, "Hero", body[2]["label"])
	assert.Equal(t, "layout", body[2]["category"])
}

func TestGetContract(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/contracts/faq", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "faq", body["type"])
	assert.Equal(t, map[string]any{"title": "Frequently asked questions", "items": []any{}}, body["defaults"])

	rec = f.do(t, http.MethodGet, "/contracts/carousel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CONTRACT_NOT_FOUND", decode[map[string]any](t, rec)["code"])
}

func TestContractSchema(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/contracts/pricing/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/schema+json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	props, ok := body["properties"].(map[string]any)
	require.True(t, ok, "expected properties in %v", body)
	assert.Contains(t, props, "plans")
}

func TestContractFormAndFormCreate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/contracts/hero/form?page_id="+f.pageID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	assert.Contains(t, html, `action="/sections"`)
	assert.Contains(t, html, `name="_section_type"`)
	assert.Contains(t, html, f.pageID.String())
	assert.Contains(t, html, `<datalist`)

	form := url.Values{
		"_section_type":       {"hero"},
		"_page_id":            {f.pageID.String()},
		"title":               {"From the form"},
		"showScrollIndicator": {"false", "on"},
	}
	rec = f.do(t, http.MethodPost, "/sections", form)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/sections/"), location)

	id, err := uuid.Parse(strings.Split(location, "/")[2])
	require.NoError(t, err)
	stored, err := f.service.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "From the form", stored.Data["title"])
	assert.Equal(t, true, stored.Data["showScrollIndicator"])
}

func TestFormCreateRejectsBadPage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/sections", url.Values{"_section_type": {"hero"}, "_page_id": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PAGE_ID", decode[map[string]any](t, rec)["code"])
}

func TestNormalize(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/contracts/hero/normalize", map[string]any{
		"title":      "Welcome",
		"heroImages": "one.png",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["valid"])
	value := body["value"].(map[string]any)
	assert.Equal(t, []any{"one.png"}, value["heroImages"])
	assert.NotEmpty(t, body["diagnostics"])
}

func TestNormalizeRejectsBadJSON(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/contracts/hero/normalize", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPages(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	pages := decode[[]links.Page](t, rec)
	assert.Equal(t, []links.Page{
		{Slug: "about-us", Title: "About Us", URL: "https://example.com/about-us"},
		{Slug: "pricing", Title: "Pricing", URL: "https://example.com/pricing"},
	}, pages)
}

func TestCreateGetUpdateSection(t *testing.T) {
	f := newFixture(t)
	id := f.createHero(t, "Welcome")

	rec := f.do(t, http.MethodGet, "/sections/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "hero", body["section_type"])
	assert.Equal(t, true, body["supported"])
	assert.Equal(t, "Welcome", body["data"].(map[string]any)["title"])

	rec = f.do(t, http.MethodPut, "/sections/"+id.String(), map[string]any{
		"data":      map[string]any{"title": "Updated"},
		"published": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode[map[string]any](t, rec)
	assert.Equal(t, true, body["published"])
	assert.Equal(t, "Updated", body["data"].(map[string]any)["title"])

	stored, err := f.service.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Updated", stored.Data["title"])
	assert.True(t, stored.Published)
}

func TestCreateSectionErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/sections", map[string]any{"section_type": "carousel", "page_id": f.pageID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/sections", map[string]any{"section_type": "hero"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[map[string]any](t, rec)["code"])
}

func TestSectionLookupErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/sections/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", decode[map[string]any](t, rec)["code"])

	rec = f.do(t, http.MethodGet, "/sections/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SECTION_NOT_FOUND", decode[map[string]any](t, rec)["code"])
}

func TestSectionFormAndFormUpdate(t *testing.T) {
	f := newFixture(t)
	id := f.createHero(t, "Welcome")
	base := "/sections/" + id.String()

	rec := f.do(t, http.MethodGet, base+"/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, `data-mutations-url="`+base+`/mutations"`)
	assert.Contains(t, html, `name="_method" value="PUT"`)
	assert.Contains(t, html, `value="Welcome"`)

	rec = f.do(t, http.MethodPost, base, url.Values{
		"_method": {"PUT"},
		"title":   {"Edited in the browser"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, base+"/form", rec.Header().Get("Location"))

	stored, err := f.service.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Edited in the browser", stored.Data["title"])
}

func TestFormsCarryCSRFToken(t *testing.T) {
	var calls int
	f := newFixture(t, httpapi.WithCSRF("_csrf", func(*http.Request) string {
		calls++
		return "tok"
	}))
	id := f.createHero(t, "Welcome")
	base := "/sections/" + id.String()

	rec := f.do(t, http.MethodGet, base+"/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<input type="hidden" name="_csrf" value="tok">`)

	rec = f.do(t, http.MethodGet, "/contracts/faq/form?page_id="+f.pageID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<input type="hidden" name="_csrf" value="tok">`)
	assert.Equal(t, 2, calls)

	rec = f.do(t, http.MethodPost, base, url.Values{
		"_method": {"PUT"},
		"_csrf":   {"tok"},
		"title":   {"Still editable"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func TestFormsOmitCSRFByDefault(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/contracts/faq/form?page_id="+f.pageID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `name="_csrf"`)
}

func TestMutations(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/sections", map[string]any{
		"section_type": "faq",
		"page_id":      f.pageID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)
	target := "/sections/" + id + "/mutations"

	rec = f.do(t, http.MethodPost, target, map[string]any{"kind": "add", "path": "items"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["applied"])
	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)

	rec = f.do(t, http.MethodPost, target, map[string]any{"kind": "set", "path": "items[0].question", "value": "Why?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, target, map[string]any{"kind": "add", "path": "items"}, "Accept", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `value="Why?"`)

	rec = f.do(t, http.MethodPost, target, map[string]any{"kind": "explode", "path": "items"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[map[string]any](t, rec)["code"])
}

func TestUnsupportedSection(t *testing.T) {
	f := newFixture(t)
	res, err := f.service.CreateContent(context.Background(), f.pageID, "carousel", map[string]any{"slides": []any{"a"}}, false, 0)
	require.NoError(t, err)
	base := "/sections/" + res.Section.ID.String()

	rec := f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, false, body["supported"])
	assert.NotEmpty(t, body["diagnostics"])

	rec = f.do(t, http.MethodGet, base+"/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-read-only="true"`)

	rec = f.do(t, http.MethodPost, base+"/mutations", map[string]any{"kind": "add", "path": "slides"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPut, base, map[string]any{"data": map[string]any{}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAssets(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/assets/sectionform.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-mutations-url")

	rec = f.do(t, http.MethodGet, "/assets/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
