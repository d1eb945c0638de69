package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"auth", &AuthError{Reason: AuthExpired}, ErrUnauthorized},
		{"validation", Invalid("title", "is required"), ErrValidation},
		{"conflict", &ConflictError{Field: "email"}, ErrAlreadyExists},
		{"config", &ConfigError{Key: "JWT_SECRET", Reason: "is required"}, ErrConfig},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("layer: %w", tc.err)
		require.ErrorIs(t, wrapped, tc.want, tc.name)
		require.NotErrorIs(t, wrapped, ErrNotFound, tc.name)
	}
}

func TestTypedErrors_AsKeepsDetails(t *testing.T) {
	t.Parallel()

	var ae *AuthError
	require.True(t, errors.As(fmt.Errorf("x: %w", &AuthError{Reason: AuthIssuerMismatch}), &ae))
	require.Equal(t, AuthIssuerMismatch, ae.Reason)

	var ce *ConflictError
	require.True(t, errors.As(&ConflictError{Field: "username"}, &ce))
	require.Equal(t, "username already exists", ce.Error())

	require.Equal(t, "validation: title is required", Invalid("title", "is required").Error())
	require.Equal(t, "validation: empty query", (&ValidationError{Reason: "empty query"}).Error())
}
