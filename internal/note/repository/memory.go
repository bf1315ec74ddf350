package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noteshare/noteshare/internal/note"
)

// MemoryStore is an in-memory note store used by unit tests and by the
// standalone notes binary when no MongoDB is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]*note.Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]*note.Note)}
}

func (m *MemoryStore) Create(ctx context.Context, n *note.Note) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = fmt.Sprintf("note_%d", time.Now().UnixNano())
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	m.notes[n.ID] = &cp
	return n.ID, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*note.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*note.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*note.Note, 0, len(m.notes))
	for _, n := range m.notes {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, upd Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return ErrNotFound
	}
	next := *n
	if upd.Title != nil {
		next.Title = *upd.Title
	}
	if upd.Content != nil {
		next.Content = *upd.Content
	}
	if upd.Visibility != nil {
		next.Visibility = *upd.Visibility
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	m.notes[id] = &next
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
