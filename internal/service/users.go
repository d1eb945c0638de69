package service

import (
	"context"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/repository"
)

// UserService exposes the public view of the user directory.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
}

type UserServiceImpl struct {
	users repository.UserRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// List returns all users with credential material stripped.
func (s *UserServiceImpl) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = public(users[i])
	}
	return users, nil
}

// Get returns one user with credential material stripped.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := public(*u)
	return &p, nil
}

func public(u model.User) model.User {
	u.PwdHash = nil
	u.PwdSalt = nil
	return u
}
