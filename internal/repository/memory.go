// internal/repository/memory.go
package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryRepository keeps listings in process. Reads return copies.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]Property
	nextID int64
	now    func() time.Time
}

func NewMemoryRepository(seed ...Property) *MemoryRepository {
	m := &MemoryRepository{byID: make(map[int64]Property), now: time.Now}
	_ = m.Save(context.Background(), seed)
	return m
}

func (m *MemoryRepository) List(ctx context.Context) ([]Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(Property) bool { return true }), nil
}

func (m *MemoryRepository) ListByAgent(ctx context.Context, agentID int64) ([]Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(p Property) bool { return p.AgentID == agentID }), nil
}

// sorted returns matching properties newest first, like the SQL store.
func (m *MemoryRepository) sorted(keep func(Property) bool) []Property {
	out := make([]Property, 0, len(m.byID))
	for _, p := range m.byID {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	slices.SortFunc(out, func(a, b Property) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c := clone(p)
	return &c, nil
}

func (m *MemoryRepository) Create(ctx context.Context, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	p.ID = m.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now().UTC()
	}
	m.byID[p.ID] = clone(*p)
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, agentID int64, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[p.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, p.ID)
	}
	if existing.AgentID != agentID {
		return fmt.Errorf("%w: listing %d belongs to another agent", ErrForbidden, p.ID)
	}
	p.AgentID = existing.AgentID
	p.CreatedAt = existing.CreatedAt
	m.byID[p.ID] = clone(*p)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, agentID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if existing.AgentID != agentID {
		return fmt.Errorf("%w: listing %d belongs to another agent", ErrForbidden, id)
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryRepository) Save(ctx context.Context, props []Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range props {
		if p.ID == 0 {
			m.nextID++
			p.ID = m.nextID
		}
		m.nextID = max(m.nextID, p.ID)
		m.byID[p.ID] = clone(p)
	}
	return nil
}

func clone(p Property) Property {
	p.Photos = slices.Clone(p.Photos)
	return p
}
