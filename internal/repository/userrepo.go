// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/notes-keeper/internal/model"
)

// UserRepository provides access to the user directory.
type UserRepository interface {
	// Create inserts a new user and sets u.ID. Duplicate username or email
	// yields *errs.ConflictError.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users ordered by id.
	List(ctx context.Context) ([]model.User, error)
}
