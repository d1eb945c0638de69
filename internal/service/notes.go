package service

import (
	"context"
	"strings"
	"time"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/repository"
)

// NoteService defines owner-scoped note operations. The owner always comes
// from the authenticated identity, never from client input.
type NoteService interface {
	List(ctx context.Context, owner model.Identity, titleFilter string) ([]model.Note, error)
	Search(ctx context.Context, owner model.Identity, query string) ([]model.Note, error)
	Get(ctx context.Context, owner model.Identity, id int64) (*model.Note, error)
	Create(ctx context.Context, owner model.Identity, title, content string) (*model.Note, error)
	Update(ctx context.Context, owner model.Identity, id int64, title, content string) (*model.Note, error)
	Delete(ctx context.Context, owner model.Identity, id int64) error
}

type NoteServiceImpl struct {
	repo repository.NoteRepository
	now  func() time.Time
}

// NewNoteService constructs NoteService. A nil clock means time.Now.
func NewNoteService(repo repository.NoteRepository, now func() time.Time) *NoteServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &NoteServiceImpl{repo: repo, now: now}
}

// List returns the owner's notes, optionally narrowed by title substring.
func (s *NoteServiceImpl) List(ctx context.Context, owner model.Identity, titleFilter string) ([]model.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, owner.UserID, model.NoteFilter{Title: strings.TrimSpace(titleFilter)})
}

// Search returns the owner's notes whose title or content contains query.
func (s *NoteServiceImpl) Search(ctx context.Context, owner model.Identity, query string) ([]model.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.Invalid("query", "is required")
	}
	return s.repo.List(ctx, owner.UserID, model.NoteFilter{Query: query})
}

// Get returns one of the owner's notes.
func (s *NoteServiceImpl) Get(ctx context.Context, owner model.Identity, id int64) (*model.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.Get(ctx, owner.UserID, id)
}

// Create stores a new note for the owner. CreatedAt equals UpdatedAt.
func (s *NoteServiceImpl) Create(ctx context.Context, owner model.Identity, title, content string) (*model.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.Invalid("title", "is required")
	}
	now := s.stamp()
	n := &model.Note{
		UserID:    owner.UserID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update rewrites title and content of an owned note and refreshes UpdatedAt.
func (s *NoteServiceImpl) Update(ctx context.Context, owner model.Identity, id int64, title, content string) (*model.Note, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.Invalid("title", "is required")
	}
	n := &model.Note{
		ID:        id,
		UserID:    owner.UserID,
		Title:     title,
		Content:   content,
		UpdatedAt: s.stamp(),
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes an owned note.
func (s *NoteServiceImpl) Delete(ctx context.Context, owner model.Identity, id int64) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	if id <= 0 {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, owner.UserID, id)
}

// stamp is the current time at the precision storage keeps (timestamptz is
// microseconds), so returned notes equal what a later read yields.
func (s *NoteServiceImpl) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func checkOwner(owner model.Identity) error {
	if owner.UserID <= 0 {
		return &errs.AuthError{Reason: errs.AuthMissingToken}
	}
	return nil
}
