package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/validation"
	"github.com/google/uuid"
)

const (
	validationFailedCode  = "SECTION_VALIDATION_FAILED"
	persistenceFailedCode = "SECTION_PERSISTENCE_FAILED"
)

var (
	ErrSubmissionPending = errors.New("form: submission already in progress")
	ErrSubmissionInvalid = errors.New("form: section failed validation")
	ErrPersistence       = errors.New("form: section could not be saved")
	ErrSessionClosed     = errors.New("form: session is closed")
)

// Submitter persists section documents.
type Submitter = content.Actions

// SubmissionError reports field-level validation failures. The session
// document is left untouched and stays editable.
type SubmissionError struct {
	TypeID  string
	Issues  []validation.SchemaIssue
	wrapped error
}

func newSubmissionError(typeID string, result validation.SchemaValidationResult) *SubmissionError {
	return &SubmissionError{
		TypeID: typeID,
		Issues: result.Issues,
		wrapped: goerrors.Wrap(result.Err(), goerrors.CategoryValidation, "section validation failed").
			WithTextCode(validationFailedCode),
	}
}

func (e *SubmissionError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		field := issue.Field
		if field == "" {
			field = "#"
		}
		parts = append(parts, field+": "+issue.Message)
	}
	return fmt.Sprintf("form: %s failed validation: %s", e.TypeID, strings.Join(parts, "; "))
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionInvalid, e.wrapped}
}

// Diagnostics renders the issues as SubmissionValidationFailure entries.
func (e *SubmissionError) Diagnostics() diagnostics.List {
	out := make(diagnostics.List, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, diagnostics.Diagnostic{
			Code:     diagnostics.SubmissionValidationFailure,
			Severity: diagnostics.SeverityError,
			Path:     issue.Field,
			Message:  issue.Message,
		})
	}
	return out
}

// PersistenceError wraps a failed create or update. The session keeps its
// in-memory document; nothing is retried.
type PersistenceError struct {
	TypeID    string
	SectionID uuid.UUID
	Cause     error
	wrapped   error
}

func newPersistenceError(typeID string, id uuid.UUID, cause error) *PersistenceError {
	return &PersistenceError{
		TypeID:    typeID,
		SectionID: id,
		Cause:     cause,
		wrapped: goerrors.Wrap(cause, goerrors.CategoryCommand, "section persistence failed").
			WithTextCode(persistenceFailedCode),
	}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("form: saving %s failed: %v", e.TypeID, e.Cause)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.wrapped, e.Cause}
}

// Diagnostic renders the failure as a PersistenceFailure entry.
func (e *PersistenceError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Code:     diagnostics.PersistenceFailure,
		Severity: diagnostics.SeverityError,
		Message:  e.Cause.Error(),
	}
}

// SubmitResult is delivered by SubmitAsync.
type SubmitResult struct {
	Section content.Section
	Err     error
}

type submission struct {
	section  content.Section
	revision int
}

// Submit validates the document and persists it, creating the section when
// it has no id yet and updating it otherwise. Only one submission may be in
// flight per session; a concurrent call fails with ErrSubmissionPending.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (content.Section, error) {
	snap, err := s.begin()
	if err != nil {
		return content.Section{}, err
	}
	return s.finish(ctx, submitter, snap)
}

// SubmitAsync runs Submit in the background. The pending check happens
// before it returns, so a second call made right after fails immediately.
// The channel receives exactly one result and is then closed.
func (s *Session) SubmitAsync(ctx context.Context, submitter Submitter) <-chan SubmitResult {
	out := make(chan SubmitResult, 1)
	snap, err := s.begin()
	if err != nil {
		out <- SubmitResult{Err: err}
		close(out)
		return out
	}
	go func() {
		defer close(out)
		section, err := s.finish(ctx, submitter, snap)
		out <- SubmitResult{Section: section, Err: err}
	}()
	return out
}

// Pending reports whether a submission is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) begin() (submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return submission{}, ErrSessionClosed
	}
	if s.pending {
		return submission{}, ErrSubmissionPending
	}
	s.pending = true
	return submission{section: s.section.Clone(), revision: s.revision}, nil
}

func (s *Session) finish(ctx context.Context, submitter Submitter, snap submission) (content.Section, error) {
	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	section := snap.section
	if check := s.contract.Validate(section.Data); !check.Valid {
		err := newSubmissionError(s.contract.TypeID, check)
		s.forward(err.Diagnostics())
		s.logger.Warn("form.submit.invalid", "type", s.contract.TypeID, "issues", len(err.Issues))
		return content.Section{}, err
	}
	if submitter == nil {
		return content.Section{}, newPersistenceError(s.contract.TypeID, section.ID, errors.New("no persistence actions configured"))
	}

	var (
		result content.Result
		err    error
	)
	if section.IsNew() {
		result, err = submitter.CreateContent(ctx, section.PageID, section.SectionType, section.Data, section.Published, section.OrderIndex)
	} else {
		result, err = submitter.UpdateContent(ctx, section.ID, section.Data, section.Published, section.OrderIndex)
	}
	if err != nil {
		perr := newPersistenceError(s.contract.TypeID, section.ID, err)
		s.sink.Report(perr.Diagnostic())
		s.logger.Error("form.submit.failed", "type", s.contract.TypeID, "section", section.ID, "error", err)
		return content.Section{}, perr
	}

	persisted := result.Section.Clone()
	if persisted.SectionType == "" {
		persisted.SectionType = s.contract.TypeID
	}
	normalized := s.normalizer.Normalize(s.contract.Node, persisted.Data)
	if data, ok := normalized.Value.(map[string]any); ok {
		persisted.Data = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		edited := s.section.Data
		s.section = persisted.Clone()
		if s.revision != snap.revision {
			// Edits made while the request was in flight stay local.
			s.section.Data = edited
		}
	}
	s.logger.Debug("form.submit", "type", s.contract.TypeID, "section", persisted.ID, "created", result.Created)
	return persisted, nil
}
