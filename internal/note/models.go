package note

import (
	"errors"
	"time"
)

// Visibility values for a note.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

var (
	// ErrInvalidVisibility is returned for visibility values outside
	// public/private.
	ErrInvalidVisibility = errors.New("invalid visibility")

	// ErrOwnerlessPrivate is returned when a note without an owner is
	// marked private. Ownerless notes are always public.
	ErrOwnerlessPrivate = errors.New("ownerless note cannot be private")
)

// Note is the persistent note model. OwnerID is the local user id of the
// creator; an empty OwnerID marks an ownerless (anonymous) note, which is
// always public. Ownership never changes after creation.
type Note struct {
	ID         string    `json:"id" bson:"id"`
	OwnerID    string    `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	Visibility string    `json:"visibility" bson:"visibility"`
	Title      string    `json:"title" bson:"title"`
	Content    string    `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Ownerless reports whether the note has no owning user.
func (n *Note) Ownerless() bool { return n.OwnerID == "" }

// Validate checks the visibility invariants before a write.
func (n *Note) Validate() error {
	switch n.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return ErrInvalidVisibility
	}
	if n.Ownerless() && n.Visibility != VisibilityPublic {
		return ErrOwnerlessPrivate
	}
	return nil
}
