package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("content: section not found")

// Section is one persisted section document on a page.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID      uuid.UUID      `bun:"page_id,notnull,type:uuid" json:"page_id"`
	SectionType string         `bun:"section_type,notnull" json:"section_type"`
	OrderIndex  int            `bun:"order_index,notnull,default:0" json:"order_index"`
	Published   bool           `bun:"published,notnull,default:false" json:"published"`
	Data        map[string]any `bun:"data,type:jsonb,notnull" json:"data"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsNew reports whether the section has never been persisted.
func (s Section) IsNew() bool {
	return s.ID == uuid.Nil
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.BaseModel = bun.BaseModel{}
	out.Data = cloneData(s.Data)
	return out
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out, _ := normalize.Clone(data).(map[string]any)
	return out
}

func cloneSection(s *Section) *Section {
	if s == nil {
		return nil
	}
	out := s.Clone()
	return &out
}

// Result is returned by the persistence actions.
type Result struct {
	Section Section
	Created bool
}

// Actions are the persistence operations the form engine calls on submit.
type Actions interface {
	CreateContent(ctx context.Context, pageID uuid.UUID, typeID string, data map[string]any, published bool, orderIndex int) (Result, error)
	UpdateContent(ctx context.Context, contentID uuid.UUID, data map[string]any, published bool, orderIndex int) (Result, error)
}

// Store persists sections.
type Store interface {
	Create(ctx context.Context, section *Section) (*Section, error)
	Get(ctx context.Context, id uuid.UUID) (*Section, error)
	Update(ctx context.Context, section *Section) (*Section, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a section lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(id uuid.UUID) error {
	return &NotFoundError{Resource: "section", Key: id.String()}
}
