package repository

import (
	"context"
	"errors"

	"github.com/noteshare/noteshare/internal/note"
)

// ErrNotFound is returned when the requested note does not exist.
var ErrNotFound = errors.New("note not found")

// Loader is the narrow read interface the access guard depends on. It only
// needs ownerId/visibility of the target note, so the guard never takes a
// dependency on a specific storage engine.
type Loader interface {
	FindByID(ctx context.Context, id string) (*note.Note, error)
}

// Store is the full persistence interface consumed by the HTTP handlers.
type Store interface {
	Loader
	Create(ctx context.Context, n *note.Note) (string, error)
	List(ctx context.Context) ([]*note.Note, error)
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
}

// Update carries the mutable note fields; nil fields are left unchanged.
// Ownership is immutable and deliberately absent here.
type Update struct {
	Title      *string
	Content    *string
	Visibility *string
}
