package repository

import (
	"context"

	"github.com/and161185/notes-keeper/internal/model"
)

// NoteRepository provides owner-scoped access to notes. A note that exists but
// belongs to another user is reported as errs.ErrNotFound, same as a missing one.
type NoteRepository interface {
	// List returns the owner's notes matching f, newest first.
	List(ctx context.Context, ownerID int64, f model.NoteFilter) ([]model.Note, error)
	// Get loads one of the owner's notes.
	Get(ctx context.Context, ownerID, id int64) (*model.Note, error)
	// Create inserts n for n.UserID and sets n.ID.
	Create(ctx context.Context, n *model.Note) error
	// Update rewrites title/content/updated_at of a note owned by n.UserID.
	// On success n.CreatedAt is set to the stored creation time; the other
	// fields already hold what was written.
	Update(ctx context.Context, n *model.Note) error
	// Delete removes one of the owner's notes.
	Delete(ctx context.Context, ownerID, id int64) error
}
