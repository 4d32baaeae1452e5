package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/render"
)

type contractView struct {
	Type string `json:"type"`
	contracts.Metadata
}

type contractDetail struct {
	contractView
	Defaults    map[string]any   `json:"defaults"`
	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
}

func viewOf(c contracts.Contract) contractView {
	meta := c.Metadata
	meta.Label = c.Label()
	return contractView{Type: c.TypeID, Metadata: meta}
}

// HandleListContracts lists the registered section types.
// GET /contracts
func (s *Server) HandleListContracts(w http.ResponseWriter, r *http.Request) {
	registry := s.orch.Contracts()
	out := make([]contractView, 0, len(registry.List()))
	for _, typeID := range registry.List() {
		if c, ok := registry.Get(typeID); ok {
			out = append(out, viewOf(c))
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// HandleGetContract returns metadata, defaults and compile diagnostics.
// GET /contracts/{type}
func (s *Server) HandleGetContract(w http.ResponseWriter, r *http.Request) {
	c, err := s.orch.Contracts().Lookup(chi.URLParam(r, "type"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contractDetail{
		contractView: viewOf(c),
		Defaults:     c.DefaultData(),
		Diagnostics:  c.Diagnostics(),
	})
}

// HandleContractSchema exports the contract as JSON Schema.
// GET /contracts/{type}/schema
func (s *Server) HandleContractSchema(w http.ResponseWriter, r *http.Request) {
	c, err := s.orch.Contracts().Lookup(chi.URLParam(r, "type"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	s.writeJSON(w, http.StatusOK, c.JSONSchema())
}

// HandleContractForm renders a blank form seeded with the contract
// defaults. Submitting it creates a section.
// GET /contracts/{type}/form?page_id=...&renderer=...
func (s *Server) HandleContractForm(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "type")
	session, err := s.orch.NewSession(typeID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer session.Close()

	hidden := []render.HiddenField{render.Hidden(fieldSectionType, typeID)}
	if pageID := r.URL.Query().Get("page_id"); pageID != "" {
		hidden = append(hidden, render.Hidden(fieldPageID, pageID))
	}
	s.renderForm(w, r, http.StatusOK, session.Form(), render.RenderOptions{
		Action: s.url("sections"),
		Hidden: hidden,
	})
}

// HandleNormalize repairs a raw payload against the contract and reports
// what changed, without persisting.
// POST /contracts/{type}/normalize
func (s *Server) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	var raw any
	if err := decodeJSON(r, &raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	preview, err := s.orch.Preview(chi.URLParam(r, "type"), raw)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, preview)
}

// HandleListPages returns the known link targets.
// GET /pages
func (s *Server) HandleListPages(w http.ResponseWriter, r *http.Request) {
	pages := s.orch.Pages()
	if pages == nil {
		s.writeJSON(w, http.StatusOK, []any{})
		return
	}
	s.writeJSON(w, http.StatusOK, pages)
}

// renderForm writes f through the renderer named by ?renderer, falling back
// to the orchestrator default.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, f *form.Form, opts render.RenderOptions) {
	query := r.URL.Query()
	name := query.Get("renderer")
	if s.csrfToken != nil && s.csrfField != "" {
		opts.Hidden = append(opts.Hidden, render.CSRFToken(s.csrfField, s.csrfToken(r)))
	}
	out, err := s.orch.Render(r.Context(), orchestrator.Request{
		Form:          f,
		Renderer:      name,
		RenderOptions: opts,
		ThemeName:     query.Get("theme"),
		ThemeVariant:  query.Get("variant"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	contentType, err := s.orch.ContentType(name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		s.logger.Error("write form", "error", err)
	}
}
