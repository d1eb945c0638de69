package errs

import "fmt"

// AuthReason names why a credential or token was rejected.
type AuthReason string

const (
	AuthInvalidCredentials AuthReason = "invalid_credentials"
	AuthMissingToken       AuthReason = "missing_token"
	AuthMalformed          AuthReason = "malformed"
	AuthInvalidSignature   AuthReason = "invalid_signature"
	AuthExpired            AuthReason = "expired"
	AuthIssuerMismatch     AuthReason = "issuer_mismatch"
	AuthAudienceMismatch   AuthReason = "audience_mismatch"
)

// AuthError is returned for bad credentials or bad/expired/mis-issued tokens.
// It matches ErrUnauthorized via errors.Is.
type AuthError struct {
	Reason AuthReason
}

func (e *AuthError) Error() string { return "unauthorized: " + string(e.Reason) }

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// ValidationError reports rejected caller input. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports which unique field collided. It matches ErrAlreadyExists.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string { return e.Field + " already exists" }

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// ConfigError is fatal at startup. It matches ErrConfig.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s %s", e.Key, e.Reason) }

func (e *ConfigError) Unwrap() error { return ErrConfig }

// Invalid is a shorthand for building a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
