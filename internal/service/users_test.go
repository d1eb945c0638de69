package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
)

func TestUsers_PublicViewStripsCredentials(t *testing.T) {
	t.Parallel()
	repo := &fakeUsers{}
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		require.NoError(t, repo.Create(ctx, &model.User{
			Username: name, Email: name + "@x.io", PwdHash: []byte("h"), PwdSalt: []byte("s"),
		}))
	}
	s := NewUserService(repo)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		require.Nil(t, u.PwdHash)
		require.Nil(t, u.PwdSalt)
	}

	u, err := s.Get(ctx, list[0].ID)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Nil(t, u.PwdHash)

	// The repository copy keeps its credentials.
	require.NotNil(t, repo.byName["alice"].PwdHash)

	_, err = s.Get(ctx, 99)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = s.Get(ctx, 0)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
