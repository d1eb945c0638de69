// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID        int64  // PK, assigned by storage
	Username  string // unique
	Email     string // unique
	PwdHash   []byte // Argon2id(password, PwdSalt)
	PwdSalt   []byte // per-user salt
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note is a single user-owned record.
type Note struct {
	ID        int64
	UserID    int64 // FK -> users.id, immutable after create
	Title     string
	Content   string // empty means absent (NULL in storage)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteFilter narrows a note listing. Matching is case-insensitive substring.
type NoteFilter struct {
	Title string // match on title only
	Query string // match on title or content
}

// Identity is the caller resolved from a valid token.
type Identity struct {
	UserID   int64
	Username string
}

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
