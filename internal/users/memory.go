package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noteshare/noteshare/internal/models"
)

// MemoryRepository is an in-memory Repository used by unit tests and by the
// standalone notes binary. The map is keyed by subject, so it enforces the
// same one-row-per-subject constraint as the Mongo unique index.
type MemoryRepository struct {
	mu     sync.Mutex
	bySub  map[string]*models.User
	nextID int

	// beforeInsert, when set, runs after the duplicate check but before the
	// row is stored. Tests use it to interleave a competing insert.
	beforeInsert func()
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySub: make(map[string]*models.User)}
}

func (r *MemoryRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.bySub[sub]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	hook := r.beforeInsert
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySub[u.Sub]; ok {
		return nil, ErrDuplicateSubject
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("usr_%d", r.nextID)
	}
	cp := *u
	r.bySub[u.Sub] = &cp
	return u, nil
}

// Len reports the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySub)
}

var _ Repository = (*MemoryRepository)(nil)
