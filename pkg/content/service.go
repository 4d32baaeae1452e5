package content

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	commandValidationCode = "SECTION_COMMAND_INVALID"
	storeFailureCode      = "SECTION_STORE_FAILED"
)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new section ids are minted.
func WithIDGenerator(next func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.OrNoOp(logger)
	}
}

// Service implements Actions over a Store.
type Service struct {
	store  Store
	now    func() time.Time
	newID  func() uuid.UUID
	logger interfaces.Logger
}

var _ Actions = (*Service)(nil)

// NewService builds the persistence actions for store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Store exposes the underlying store for reads.
func (s *Service) Store() Store {
	return s.store
}

// CreateContent stores a new section on pageID.
func (s *Service) CreateContent(ctx context.Context, pageID uuid.UUID, typeID string, data map[string]any, published bool, orderIndex int) (Result, error) {
	cmd := CreateCommand{PageID: pageID, SectionType: typeID, Data: data, Published: published, OrderIndex: orderIndex}
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapValidationError(err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := s.now()
	record, err := s.store.Create(ctx, &Section{
		ID:          s.newID(),
		PageID:      cmd.PageID,
		SectionType: cmd.SectionType,
		OrderIndex:  cmd.OrderIndex,
		Published:   cmd.Published,
		Data:        cloneData(cmd.Data),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error("content.create.failed", "page_id", pageID, "type", typeID, "error", err)
		return Result{}, wrapStoreError(err, "create section failed")
	}
	s.logger.Debug("content.create", "id", record.ID, "type", record.SectionType)
	return Result{Section: *record, Created: true}, nil
}

// UpdateContent replaces the data and placement of an existing section.
func (s *Service) UpdateContent(ctx context.Context, contentID uuid.UUID, data map[string]any, published bool, orderIndex int) (Result, error) {
	cmd := UpdateCommand{ID: contentID, Data: data, Published: published, OrderIndex: orderIndex}
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapValidationError(err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	existing, err := s.store.Get(ctx, contentID)
	if err != nil {
		return Result{}, wrapStoreError(err, "load section failed")
	}
	existing.Data = cloneData(cmd.Data)
	existing.Published = cmd.Published
	existing.OrderIndex = cmd.OrderIndex
	existing.UpdatedAt = s.now()

	record, err := s.store.Update(ctx, existing)
	if err != nil {
		s.logger.Error("content.update.failed", "id", contentID, "error", err)
		return Result{}, wrapStoreError(err, "update section failed")
	}
	s.logger.Debug("content.update", "id", record.ID, "type", record.SectionType)
	return Result{Section: *record}, nil
}

// Get loads a section by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Section, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return Section{}, err
	}
	return *record, nil
}

func wrapValidationError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "section command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapStoreError(err error, message string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).
		WithTextCode(storeFailureCode)
}
