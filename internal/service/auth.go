// Package service contains application services for authentication, users and notes.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/repository"
	"github.com/and161185/notes-keeper/internal/token"
)

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	Hash(password string) (hash, salt []byte, err error)
	Verify(password string, hash, salt []byte) bool
}

// TokenManager issues and validates session tokens.
type TokenManager interface {
	Issue(username string, userID int64) (string, time.Time, error)
	Validate(tok string) (*token.Claims, error)
}

// AuthService defines registration, login and token authentication.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, email, password string) (userID int64, err error)
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, username, password string) (tokens model.Tokens, user model.User, err error)
	// Authenticate resolves the caller identity from a bearer token.
	Authenticate(ctx context.Context, tok string) (model.Identity, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenManager
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
	dummySalt []byte
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenManager) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register validates input, hashes the password and stores the user.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	switch {
	case username == "":
		return 0, errs.Invalid("username", "is required")
	case email == "":
		return 0, errs.Invalid("email", "is required")
	case !strings.Contains(email, "@"):
		return 0, errs.Invalid("email", "is not a valid address")
	case password == "":
		return 0, errs.Invalid("password", "is required")
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	u := &model.User{
		Username:  username,
		Email:     email,
		PwdHash:   hash,
		PwdSalt:   salt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Login authenticates the user. Unknown user and wrong password produce the
// same error so the response does not reveal which part was wrong.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, model.User, error) {
	invalid := &errs.AuthError{Reason: errs.AuthInvalidCredentials}

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, model.User{}, fmt.Errorf("lookup user: %w", err)
		}
		// Spend the same hashing work as for an existing user.
		s.verifyDummy(password)
		return model.Tokens{}, model.User{}, invalid
	}
	if !s.hasher.Verify(password, u.PwdHash, u.PwdSalt) {
		return model.Tokens{}, model.User{}, invalid
	}

	access, exp, err := s.tokens.Issue(u.Username, u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// Authenticate validates tok and returns the identity it carries.
func (s *AuthServiceImpl) Authenticate(_ context.Context, tok string) (model.Identity, error) {
	if strings.TrimSpace(tok) == "" {
		return model.Identity{}, &errs.AuthError{Reason: errs.AuthMissingToken}
	}
	claims, err := s.tokens.Validate(tok)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UserID: claims.UserID, Username: claims.Subject}, nil
}

// fallbackDummySalt and fallbackDummyHash stand in when the dummy hash cannot
// be derived; empty values would skip the argon2 work in Verify.
var (
	fallbackDummySalt = []byte("notes-dummy-salt")
	fallbackDummyHash = make([]byte, 32)
)

func (s *AuthServiceImpl) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, salt, err := s.hasher.Hash("dummy-password")
		if err != nil || len(hash) == 0 || len(salt) == 0 {
			hash, salt = fallbackDummyHash, fallbackDummySalt
		}
		s.dummyHash, s.dummySalt = hash, salt
	})
	_ = s.hasher.Verify(password, s.dummyHash, s.dummySalt)
}
