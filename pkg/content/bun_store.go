package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore persists sections through bun.
type BunStore struct {
	db bun.IDB
}

// NewBunStore wraps db. Call EnsureSchema before first use on a fresh
// database.
func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db}
}

// EnsureSchema creates the sections table when missing.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Section)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("content: create sections table: %w", err)
	}
	return nil
}

func (s *BunStore) Create(ctx context.Context, section *Section) (*Section, error) {
	record := cloneSection(section)
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("content: insert section: %w", err)
	}
	return s.Get(ctx, record.ID)
}

func (s *BunStore) Get(ctx context.Context, id uuid.UUID) (*Section, error) {
	record := new(Section)
	err := s.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("content: select section: %w", err)
	}
	return record, nil
}

func (s *BunStore) Update(ctx context.Context, section *Section) (*Section, error) {
	record := cloneSection(section)
	res, err := s.db.NewUpdate().
		Model(record).
		Column("data", "published", "order_index", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: update section: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, notFound(section.ID)
	}
	return s.Get(ctx, record.ID)
}

func (s *BunStore) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error) {
	var records []*Section
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.page_id = ?", pageID).
		Order("order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: list sections: %w", err)
	}
	sortSections(records)
	return records, nil
}

func (s *BunStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*Section)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("content: delete section: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFound(id)
	}
	return nil
}
