package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
	"github.com/goliatone/go-sectionform/pkg/render"
	"github.com/goliatone/go-sectionform/pkg/validation"
)

const maxBodyBytes = 1 << 20

// writeJSON marshals v as JSON and writes it with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json", "error", err)
	}
}

// writeError writes a structured JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: message, Code: code})
}

type errorBody struct {
	Error  string                   `json:"error"`
	Code   string                   `json:"code"`
	Issues []validation.SchemaIssue `json:"issues,omitempty"`
}

// writeServiceError maps orchestrator, registry and store errors onto HTTP
// responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		invalid *form.SubmissionError
		persist *form.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  err.Error(),
			Code:   "SECTION_VALIDATION_FAILED",
			Issues: invalid.Issues,
		})
	case errors.As(err, &persist) && goerrors.IsCategory(persist.Cause, goerrors.CategoryValidation):
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", persist.Cause.Error())
	case errors.Is(err, contracts.ErrContractNotFound):
		s.writeError(w, http.StatusNotFound, "CONTRACT_NOT_FOUND", err.Error())
	case errors.Is(err, content.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "SECTION_NOT_FOUND", err.Error())
	case errors.Is(err, orchestrator.ErrUnsupportedSection):
		s.writeError(w, http.StatusConflict, "UNSUPPORTED_SECTION", err.Error())
	case errors.Is(err, render.ErrRendererNotFound):
		s.writeError(w, http.StatusBadRequest, "RENDERER_NOT_FOUND", err.Error())
	case errors.Is(err, orchestrator.ErrNoSectionStore):
		s.writeError(w, http.StatusNotImplemented, "NO_SECTION_STORE", err.Error())
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		s.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case persist != nil:
		s.logger.Error("persistence failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "SECTION_PERSISTENCE_FAILED", "section could not be saved")
	default:
		s.logger.Error("internal error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}

// parseUUID extracts and validates a UUID path parameter.
func (s *Server) parseUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, paramName)
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid UUID: "+raw)
		return uuid.Nil, false
	}
	return id, true
}

func isFormPost(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/html")
}

// methodOverride turns a form POST carrying _method=PUT|PATCH into that
// method, matching what the HTML renderer emits.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isFormPost(r) {
			if err := r.ParseForm(); err == nil {
				switch method := strings.ToUpper(strings.TrimSpace(r.PostForm.Get("_method"))); method {
				case http.MethodPut, http.MethodPatch, http.MethodDelete:
					r.Method = method
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
