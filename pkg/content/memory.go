package content

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryStore constructs an in-memory section store.
func NewMemoryStore() Store {
	return &memoryStore{
		byID: make(map[uuid.UUID]*Section),
	}
}

type memoryStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Section
}

func (m *memoryStore) Create(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneSection(section)
	m.byID[cloned.ID] = cloned
	return cloneSection(cloned), nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneSection(record), nil
}

func (m *memoryStore) Update(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[section.ID]
	if !ok {
		return nil, notFound(section.ID)
	}
	cloned := cloneSection(section)
	cloned.CreatedAt = existing.CreatedAt
	m.byID[cloned.ID] = cloned
	return cloneSection(cloned), nil
}

func (m *memoryStore) ListByPage(_ context.Context, pageID uuid.UUID) ([]*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Section, 0)
	for _, record := range m.byID {
		if record.PageID == pageID {
			out = append(out, cloneSection(record))
		}
	}
	sortSections(out)
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return notFound(id)
	}
	delete(m.byID, id)
	return nil
}

func sortSections(sections []*Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].OrderIndex != sections[j].OrderIndex {
			return sections[i].OrderIndex < sections[j].OrderIndex
		}
		return sections[i].ID.String() < sections[j].ID.String()
	})
}
