// Package token issues and validates signed session tokens (HS256 JWT).
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/notes-keeper/internal/errs"
)

const (
	// MinSecretLen is the shortest accepted signing secret, in bytes.
	MinSecretLen = 16
	// TTL is the lifetime of an issued token.
	TTL = time.Hour
)

// Claims is the token payload: registered claims plus the numeric user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"userId"`
}

// Config is the explicit token configuration. The package never reads the environment.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Manager signs and verifies tokens. It holds no mutable state.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
}

// NewManager validates cfg and builds a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, &errs.ConfigError{Key: "JWT_SECRET", Reason: fmt.Sprintf("must be at least %d bytes", MinSecretLen)}
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, &errs.ConfigError{Key: "JWT_ISSUER", Reason: "is required"}
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, &errs.ConfigError{Key: "JWT_AUDIENCE", Reason: "is required"}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	m := &Manager{
		secret:   secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	return m, nil
}

// Issue signs a token for the user and returns it with its expiry.
func (m *Manager) Issue(username string, userID int64) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token id: %w", err)
	}
	// NumericDate has second precision; keep the returned expiry equal to the claim.
	iat := m.now().UTC().Truncate(time.Second)
	exp := iat.Add(TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        jti.String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate verifies signature, expiry, issuer and audience and returns the claims.
// Failures are *errs.AuthError.
func (m *Manager) Validate(tok string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, &errs.AuthError{Reason: reasonFor(err)}
	}
	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, &errs.AuthError{Reason: errs.AuthMalformed}
	}
	return claims, nil
}

// reasonFor maps jwt validation errors to a single reason.
// The signature is checked before claims, so a forged token never reports Expired.
func reasonFor(err error) errs.AuthReason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errs.AuthInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.AuthExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return errs.AuthIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return errs.AuthAudienceMismatch
	default:
		return errs.AuthMalformed
	}
}
