package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/validation"
	"github.com/google/uuid"
)

// Editor is an opened section. Sections whose type has no contract get a
// read-only fallback form and no session.
type Editor struct {
	Section  content.Section
	Session  *form.Session
	fallback *form.Form
}

// Supported reports whether the section can be edited.
func (e *Editor) Supported() bool {
	return e != nil && e.Session != nil
}

// Form synthesizes the current form, or returns the fallback dump.
func (e *Editor) Form() *form.Form {
	if e == nil {
		return nil
	}
	if e.Session != nil {
		return e.Session.Form()
	}
	return e.fallback
}

// CreateRequest describes a new section.
type CreateRequest struct {
	TypeID     string         `json:"section_type"`
	PageID     uuid.UUID      `json:"page_id"`
	OrderIndex int            `json:"order_index"`
	Published  bool           `json:"published"`
	Data       map[string]any `json:"data,omitempty"`
}

// UpdateRequest replaces the document of a stored section. Nil fields keep
// their stored value.
type UpdateRequest struct {
	Data       map[string]any `json:"data"`
	Published  *bool          `json:"published,omitempty"`
	OrderIndex *int           `json:"order_index,omitempty"`
}

// Preview is the outcome of normalizing and validating a raw payload.
type Preview struct {
	TypeID      string                   `json:"section_type"`
	Value       any                      `json:"value"`
	Diagnostics diagnostics.List         `json:"diagnostics,omitempty"`
	Valid       bool                     `json:"valid"`
	Issues      []validation.SchemaIssue `json:"issues,omitempty"`
}

// NewSession starts editing a new section of typeID seeded with the
// contract defaults. Nothing is persisted until Submit.
func (o *Orchestrator) NewSession(typeID string, opts ...form.SessionOption) (*form.Session, error) {
	contract, err := o.lookup(typeID)
	if err != nil {
		return nil, err
	}
	return form.NewSession(contract, append(o.sessionOptions(), opts...)...), nil
}

// OpenSection loads a stored section. Open sessions are reused so
// structural edits made through Apply survive between requests.
func (o *Orchestrator) OpenSection(ctx context.Context, id uuid.UUID) (*Editor, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	if session, ok := o.Session(id); ok {
		return &Editor{Section: session.Section(), Session: session}, nil
	}
	if o.store == nil {
		return nil, ErrNoSectionStore
	}
	section, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open section %s: %w", id, err)
	}
	return o.Load(section)
}

// Load opens section without touching the store. Unknown section types
// produce the fallback form; the stored data is never rewritten.
func (o *Orchestrator) Load(section content.Section) (*Editor, error) {
	contract, ok := o.contracts.Get(section.SectionType)
	if !ok {
		fallback := form.Fallback(section.SectionType, section.Data)
		if !section.IsNew() {
			fallback.SectionID = section.ID.String()
		}
		fallback.Pages = o.Pages()
		diagnostics.Forward(o.sink, fallback.Diagnostics)
		o.logger.Warn("section type has no contract",
			"section_type", section.SectionType,
			"section_id", section.ID.String(),
		)
		return &Editor{Section: section.Clone(), fallback: fallback}, nil
	}

	session, err := form.OpenSession(contract, section, o.sessionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if diags := session.LoadDiagnostics(); len(diags) > 0 {
		o.logger.Info("section repaired on load",
			"section_type", section.SectionType,
			"section_id", section.ID.String(),
			"repairs", len(diags),
		)
	}
	if !section.IsNew() {
		o.remember(section.ID, session)
	}
	return &Editor{Section: session.Section(), Session: session}, nil
}

// Create builds a section from req, normalizes its data and persists it.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*Editor, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	contract, err := o.lookup(req.TypeID)
	if err != nil {
		return nil, err
	}
	data := req.Data
	if data == nil {
		data = contract.DefaultData()
	}
	editor, err := o.Load(content.Section{
		PageID:      req.PageID,
		SectionType: contract.TypeID,
		OrderIndex:  req.OrderIndex,
		Published:   req.Published,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}
	section, err := o.Submit(ctx, editor.Session)
	if err != nil {
		return nil, err
	}
	editor.Section = section
	return editor, nil
}

// Update replaces the document of a stored section and persists it. The
// payload is normalized before validation.
func (o *Orchestrator) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Editor, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	if o.store == nil {
		return nil, ErrNoSectionStore
	}
	section, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open section %s: %w", id, err)
	}
	if !o.contracts.Has(section.SectionType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSection, section.SectionType)
	}
	if req.Data != nil {
		section.Data = req.Data
	}
	if req.Published != nil {
		section.Published = *req.Published
	}
	if req.OrderIndex != nil {
		section.OrderIndex = *req.OrderIndex
	}

	o.Forget(id)
	editor, err := o.Load(section)
	if err != nil {
		return nil, err
	}
	saved, err := o.Submit(ctx, editor.Session)
	if err != nil {
		return editor, err
	}
	editor.Section = saved
	return editor, nil
}

// Submit validates and persists the session document. On success the
// session is kept open under the section id.
func (o *Orchestrator) Submit(ctx context.Context, session *form.Session) (content.Section, error) {
	if err := o.ready(ctx); err != nil {
		return content.Section{}, err
	}
	if session == nil {
		return content.Section{}, errors.New("orchestrator: session is required")
	}
	if o.store == nil {
		return content.Section{}, ErrNoSectionStore
	}

	section, err := session.Submit(ctx, o.store)
	if err != nil {
		var invalid *form.SubmissionError
		if errors.As(err, &invalid) {
			diagnostics.Forward(o.sink, invalid.Diagnostics())
		}
		o.logger.Warn("section submission failed",
			"section_type", session.Contract().TypeID,
			"error", err,
		)
		return content.Section{}, err
	}
	o.remember(section.ID, session)
	o.logger.Info("section saved",
		"section_type", section.SectionType,
		"section_id", section.ID.String(),
	)
	return section, nil
}

// Preview normalizes raw against the contract of typeID and validates the
// result without persisting anything.
func (o *Orchestrator) Preview(typeID string, raw any) (Preview, error) {
	contract, err := o.lookup(typeID)
	if err != nil {
		return Preview{}, err
	}
	result := o.normalizer.Normalize(contract.Node, raw)
	check := contract.Validate(result.Value)
	return Preview{
		TypeID:      contract.TypeID,
		Value:       result.Value,
		Diagnostics: result.Diagnostics,
		Valid:       check.Valid,
		Issues:      check.Issues,
	}, nil
}

// Session returns the open session for id.
func (o *Orchestrator) Session(id uuid.UUID) (*form.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	session, ok := o.sessions[id]
	if ok && session.Closed() {
		delete(o.sessions, id)
		return nil, false
	}
	return session, ok
}

// Forget closes and drops the open session for id.
func (o *Orchestrator) Forget(id uuid.UUID) {
	o.mu.Lock()
	session, ok := o.sessions[id]
	delete(o.sessions, id)
	o.mu.Unlock()
	if ok {
		session.Close()
	}
}

func (o *Orchestrator) remember(id uuid.UUID, session *form.Session) {
	if id == uuid.Nil || session == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[id] = session
}

func (o *Orchestrator) lookup(typeID string) (contracts.Contract, error) {
	if err := o.initialiseErr; err != nil {
		return contracts.Contract{}, err
	}
	contract, err := o.contracts.Lookup(typeID)
	if err != nil {
		return contracts.Contract{}, fmt.Errorf("orchestrator: %w", err)
	}
	return contract, nil
}

func (o *Orchestrator) sessionOptions() []form.SessionOption {
	return []form.SessionOption{
		form.WithWalker(o.walker),
		form.WithSessionNormalizer(o.normalizer),
		form.WithPages(o.Pages()),
		form.WithDiagnosticSink(o.sink),
		form.WithSessionLogger(o.sessionLogger),
	}
}
