package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/render"
)

// Hidden inputs carried by the create form.
const (
	fieldSectionType = "_section_type"
	fieldPageID      = "_page_id"
	fieldOrderIndex  = "_order_index"
)

type sectionView struct {
	content.Section
	Supported   bool             `json:"supported"`
	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
}

type mutationView struct {
	Applied     bool             `json:"applied"`
	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
	Data        map[string]any   `json:"data"`
}

func sectionViewOf(editor *orchestrator.Editor) sectionView {
	view := sectionView{Section: editor.Section, Supported: editor.Supported()}
	if editor.Session != nil {
		view.Section.Data = editor.Session.Document()
		view.Diagnostics = editor.Session.LoadDiagnostics()
	} else if f := editor.Form(); f != nil {
		view.Diagnostics = f.Diagnostics
	}
	return view
}

// HandleCreateSection creates a section from JSON, or from a posted create
// form.
// POST /sections
func (s *Server) HandleCreateSection(w http.ResponseWriter, r *http.Request) {
	if isFormPost(r) {
		s.createFromForm(w, r)
		return
	}
	var req orchestrator.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	editor, err := s.orch.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", s.url("sections", editor.Section.ID.String()))
	s.writeJSON(w, http.StatusCreated, sectionViewOf(editor))
}

func (s *Server) createFromForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	values := r.PostForm
	typeID := strings.TrimSpace(values.Get(fieldSectionType))
	pageID, err := uuid.Parse(strings.TrimSpace(values.Get(fieldPageID)))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PAGE_ID", "invalid page id: "+values.Get(fieldPageID))
		return
	}
	order, _ := strconv.Atoi(values.Get(fieldOrderIndex))

	session, err := s.orch.NewSession(typeID, form.WithPlacement(pageID, order))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	orchestrator.ApplyValues(session, values)
	section, err := s.orch.Submit(r.Context(), session)
	if err != nil {
		defer session.Close()
		s.renderRejected(w, r, session, err, render.RenderOptions{
			Action: s.url("sections"),
			Hidden: carryHidden(values, fieldSectionType, fieldPageID, fieldOrderIndex),
		})
		return
	}
	http.Redirect(w, r, s.url("sections", section.ID.String(), "form"), http.StatusSeeOther)
}

// HandleGetSection returns the stored section with its repaired document.
// GET /sections/{id}
func (s *Server) HandleGetSection(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseUUID(w, r, "id")
	if !ok {
		return
	}
	editor, err := s.orch.OpenSection(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sectionViewOf(editor))
}

// HandleUpdateSection replaces the section document from JSON, or applies a
// posted edit form onto the open session.
// PUT /sections/{id}
func (s *Server) HandleUpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseUUID(w, r, "id")
	if !ok {
		return
	}
	if isFormPost(r) {
		s.updateFromForm(w, r, id)
		return
	}
	var req orchestrator.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	editor, err := s.orch.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sectionViewOf(editor))
}

func (s *Server) updateFromForm(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	editor, err := s.orch.OpenSection(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !editor.Supported() {
		s.writeServiceError(w, orchestrator.ErrUnsupportedSection)
		return
	}
	orchestrator.ApplyValues(editor.Session, r.PostForm)
	if _, err := s.orch.Submit(r.Context(), editor.Session); err != nil {
		s.renderRejected(w, r, editor.Session, err, s.editOptions(id))
		return
	}
	http.Redirect(w, r, s.url("sections", id.String(), "form"), http.StatusSeeOther)
}

// HandleSectionForm renders the edit form of a stored section. Sections
// without a contract get the read-only fallback.
// GET /sections/{id}/form
func (s *Server) HandleSectionForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseUUID(w, r, "id")
	if !ok {
		return
	}
	editor, err := s.orch.OpenSection(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	opts := render.RenderOptions{}
	if editor.Supported() {
		opts = s.editOptions(id)
	}
	s.renderForm(w, r, http.StatusOK, editor.Form(), opts)
}

// HandleMutation applies one edit to the open session. Clients asking for
// HTML get the re-rendered form back; others get the mutation outcome.
// POST /sections/{id}/mutations
func (s *Server) HandleMutation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseUUID(w, r, "id")
	if !ok {
		return
	}
	var m orchestrator.Mutation
	if err := decodeJSON(r, &m); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	editor, result, err := s.orch.Apply(r.Context(), id, m)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if wantsHTML(r) {
		s.renderForm(w, r, http.StatusOK, editor.Form(), s.editOptions(id))
		return
	}
	s.writeJSON(w, http.StatusOK, mutationView{
		Applied:     result.Applied,
		Diagnostics: result.Diagnostics,
		Data:        editor.Session.Document(),
	})
}

func (s *Server) editOptions(id uuid.UUID) render.RenderOptions {
	return render.RenderOptions{
		Action:       s.url("sections", id.String()),
		Method:       http.MethodPut,
		MutationsURL: s.url("sections", id.String(), "mutations"),
	}
}

// renderRejected re-renders a form whose submission failed validation with
// the issues attached to their controls. Other errors go to writeServiceError.
func (s *Server) renderRejected(w http.ResponseWriter, r *http.Request, session *form.Session, err error, opts render.RenderOptions) {
	var invalid *form.SubmissionError
	if !errors.As(err, &invalid) {
		s.writeServiceError(w, err)
		return
	}
	f := session.Form()
	mapping := render.FieldErrors(f, invalid.Diagnostics())
	opts.Errors = mapping.Fields
	opts.FormErrors = mapping.Form
	s.renderForm(w, r, http.StatusUnprocessableEntity, f, opts)
}

func carryHidden(values url.Values, names ...string) []render.HiddenField {
	var out []render.HiddenField
	for _, name := range names {
		if value := values.Get(name); value != "" {
			out = append(out, render.Hidden(name, value))
		}
	}
	return out
}
