package repository

import (
	"context"
	"testing"

	"github.com/noteshare/noteshare/internal/note"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, &note.Note{Title: "t", Content: "hello", Visibility: note.VisibilityPublic})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Content)
	require.True(t, got.Ownerless())

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	newContent := "edited"
	require.NoError(t, s.Update(ctx, id, Update{Content: &newContent}))
	got2, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "edited", got2.Content)
	require.False(t, got2.UpdatedAt.Before(got.UpdatedAt))

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.FindByID(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestMemoryStoreRejectsOwnerlessPrivate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, &note.Note{Title: "x", Visibility: note.VisibilityPrivate})
	require.ErrorIs(t, err, note.ErrOwnerlessPrivate)

	// an ownerless note cannot be flipped private after the fact either
	id, err := s.Create(ctx, &note.Note{Title: "x", Visibility: note.VisibilityPublic})
	require.NoError(t, err)
	private := note.VisibilityPrivate
	require.ErrorIs(t, s.Update(ctx, id, Update{Visibility: &private}), note.ErrOwnerlessPrivate)
}

func TestMemoryStoreRejectsUnknownVisibility(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Create(context.Background(), &note.Note{Title: "x", Visibility: "secret"})
	require.ErrorIs(t, err, note.ErrInvalidVisibility)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, err := s.Create(ctx, &note.Note{OwnerID: "usr_1", Title: "t", Visibility: note.VisibilityPrivate})
	require.NoError(t, err)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "t", again.Title, "callers must not reach the stored note")
}
