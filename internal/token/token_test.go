package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/notes-keeper/internal/errs"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newManager(t *testing.T, secret string, c *clock) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:   []byte(secret),
		Issuer:   "NotesAppBackend",
		Audience: "NotesAppBackendUsers",
		Now:      c.Now,
	})
	require.NoError(t, err)
	return m
}

func requireReason(t *testing.T, err error, want errs.AuthReason) {
	t.Helper()
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	var ae *errs.AuthError
	require.True(t, errors.As(err, &ae), "want *errs.AuthError, got %T", err)
	require.Equal(t, want, ae.Reason)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	c := &clock{now: t0}
	m := newManager(t, "0123456789abcdef-secret", c)

	tok, exp, err := m.Issue("alice", 42)
	require.NoError(t, err)
	require.Equal(t, t0.Add(TTL), exp)
	require.Len(t, strings.Split(tok, "."), 3)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "NotesAppBackend", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{"NotesAppBackendUsers"}, claims.Audience)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, t0, claims.IssuedAt.Time.UTC())
}

func TestIssue_FreshJTI(t *testing.T) {
	t.Parallel()

	m := newManager(t, "0123456789abcdef-secret", &clock{now: t0})
	a, _, err := m.Issue("alice", 1)
	require.NoError(t, err)
	b, _, err := m.Issue("alice", 1)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ca, err := m.Validate(a)
	require.NoError(t, err)
	cb, err := m.Validate(b)
	require.NoError(t, err)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestValidate_ExpiresAfterOneHour(t *testing.T) {
	t.Parallel()

	c := &clock{now: t0}
	m := newManager(t, "0123456789abcdef-secret", c)
	tok, _, err := m.Issue("alice", 1)
	require.NoError(t, err)

	c.now = t0.Add(TTL - time.Second)
	_, err = m.Validate(tok)
	require.NoError(t, err)

	c.now = t0.Add(TTL)
	_, err = m.Validate(tok)
	requireReason(t, err, errs.AuthExpired)

	c.now = t0.Add(TTL + time.Minute)
	_, err = m.Validate(tok)
	requireReason(t, err, errs.AuthExpired)
}

func TestValidate_OneBitSecretChange(t *testing.T) {
	t.Parallel()

	c := &clock{now: t0}
	secret := []byte("0123456789abcdef-secret")
	m := newManager(t, string(secret), c)
	tok, _, err := m.Issue("alice", 1)
	require.NoError(t, err)

	flipped := append([]byte(nil), secret...)
	flipped[0] ^= 0x01
	other := newManager(t, string(flipped), c)

	_, err = other.Validate(tok)
	requireReason(t, err, errs.AuthInvalidSignature)
}

func TestValidate_SignatureCheckedBeforeExpiry(t *testing.T) {
	t.Parallel()

	c := &clock{now: t0}
	m := newManager(t, "0123456789abcdef-secret", c)
	other := newManager(t, "fedcba9876543210-secret", c)
	tok, _, err := m.Issue("alice", 1)
	require.NoError(t, err)

	c.now = t0.Add(2 * TTL)
	_, err = other.Validate(tok)
	requireReason(t, err, errs.AuthInvalidSignature)
}

func TestValidate_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	secret := "0123456789abcdef-secret"
	m := newManager(t, secret, &clock{now: t0})

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "NotesAppBackend",
			Audience:  jwt.ClaimStrings{"NotesAppBackendUsers"},
			ExpiresAt: jwt.NewNumericDate(t0.Add(TTL)),
		},
		UserID: 1,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = m.Validate(tok)
	requireReason(t, err, errs.AuthInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(none)
	requireReason(t, err, errs.AuthInvalidSignature)
}

func TestValidate_IssuerAndAudienceMismatch(t *testing.T) {
	t.Parallel()

	c := &clock{now: t0}
	secret := []byte("0123456789abcdef-secret")
	m := newManager(t, string(secret), c)

	otherIss, err := NewManager(Config{Secret: secret, Issuer: "SomeoneElse", Audience: "NotesAppBackendUsers", Now: c.Now})
	require.NoError(t, err)
	tok, _, err := otherIss.Issue("alice", 1)
	require.NoError(t, err)
	_, err = m.Validate(tok)
	requireReason(t, err, errs.AuthIssuerMismatch)

	otherAud, err := NewManager(Config{Secret: secret, Issuer: "NotesAppBackend", Audience: "Admins", Now: c.Now})
	require.NoError(t, err)
	tok, _, err = otherAud.Issue("alice", 1)
	require.NoError(t, err)
	_, err = m.Validate(tok)
	requireReason(t, err, errs.AuthAudienceMismatch)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	secret := "0123456789abcdef-secret"
	m := newManager(t, secret, &clock{now: t0})

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Validate(tok)
		requireReason(t, err, errs.AuthMalformed)
	}

	// Properly signed but missing the user id claim.
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "NotesAppBackend",
		Audience:  jwt.ClaimStrings{"NotesAppBackendUsers"},
		ExpiresAt: jwt.NewNumericDate(t0.Add(TTL)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = m.Validate(noUser)
	requireReason(t, err, errs.AuthMalformed)

	// Missing exp is rejected.
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "alice",
			Issuer:   "NotesAppBackend",
			Audience: jwt.ClaimStrings{"NotesAppBackendUsers"},
		},
		UserID: 1,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = m.Validate(noExp)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestNewManager_Config(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
		key  string
	}{
		{"short secret", Config{Secret: []byte("short"), Issuer: "i", Audience: "a"}, "JWT_SECRET"},
		{"fifteen bytes", Config{Secret: []byte("0123456789abcde"), Issuer: "i", Audience: "a"}, "JWT_SECRET"},
		{"no issuer", Config{Secret: []byte("0123456789abcdef"), Audience: "a"}, "JWT_ISSUER"},
		{"no audience", Config{Secret: []byte("0123456789abcdef"), Issuer: "i"}, "JWT_AUDIENCE"},
	}
	for _, tc := range cases {
		_, err := NewManager(tc.cfg)
		require.ErrorIs(t, err, errs.ErrConfig, tc.name)
		var ce *errs.ConfigError
		require.True(t, errors.As(err, &ce), tc.name)
		require.Equal(t, tc.key, ce.Key, tc.name)
	}

	_, err := NewManager(Config{Secret: []byte("0123456789abcdef"), Issuer: "i", Audience: "a"})
	require.NoError(t, err)
}
