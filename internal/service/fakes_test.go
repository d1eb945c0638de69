package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*model.User

	createErr error
	getErr    error
	listErr   error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return &errs.ConflictError{Field: "username"}
	}
	for _, other := range f.byName {
		if other.Email == u.Email {
			return &errs.ConflictError{Field: "email"}
		}
	}
	f.nextID++
	u.ID = f.nextID
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.User, 0, len(f.byName))
	for _, u := range f.byName {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotes struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Note

	err error
}

var _ repository.NoteRepository = (*fakeNotes)(nil)

func newFakeNotes() *fakeNotes { return &fakeNotes{rows: map[int64]model.Note{}} }

func (f *fakeNotes) List(_ context.Context, ownerID int64, flt model.NoteFilter) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Note, 0)
	for _, n := range f.rows {
		if n.UserID != ownerID {
			continue
		}
		if flt.Title != "" && !contains(n.Title, flt.Title) {
			continue
		}
		if flt.Query != "" && !contains(n.Title, flt.Query) && !contains(n.Content, flt.Query) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeNotes) Get(_ context.Context, ownerID, id int64) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.rows[id]
	if !ok || n.UserID != ownerID {
		return nil, errs.ErrNotFound
	}
	return &n, nil
}

func (f *fakeNotes) Create(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	n.ID = f.nextID
	f.rows[n.ID] = *n
	return nil
}

func (f *fakeNotes) Update(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cur, ok := f.rows[n.ID]
	if !ok || cur.UserID != n.UserID {
		return errs.ErrNotFound
	}
	cur.Title, cur.Content, cur.UpdatedAt = n.Title, n.Content, n.UpdatedAt
	f.rows[n.ID] = cur
	n.CreatedAt = cur.CreatedAt
	return nil
}

func (f *fakeNotes) Delete(_ context.Context, ownerID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cur, ok := f.rows[id]
	if !ok || cur.UserID != ownerID {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// countingHasher records Verify calls so tests can assert the hashing work done.
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(password string, hash, salt []byte) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(password, hash, salt)
}
