// Package convert maps domain models to and from the JSON wire types of the HTTP API.
package convert

import (
	"time"

	"github.com/and161185/notes-keeper/internal/model"
)

// --- requests (client -> server) ---

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NoteRequest is the body of POST/PUT note endpoints. UserID and timestamps
// are not accepted from clients.
type NoteRequest struct {
	ID      *int64  `json:"id,omitempty"`
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// ContentValue returns the request content, empty when absent.
func (r NoteRequest) ContentValue() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// --- responses (server -> client) ---

// RegisterResponse acknowledges a new account.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
}

// UserResponse is the public view of a user. Credentials are never serialized.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteResponse is a note as returned to its owner.
type NoteResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ToLoginResponse converts issued tokens and the logged-in user.
func ToLoginResponse(t model.Tokens, u model.User) LoginResponse {
	return LoginResponse{Token: t.AccessToken, ExpiresAt: t.ExpiresAt, UserID: u.ID, Username: u.Username}
}

// ToUserResponse converts a domain user to its public view.
func ToUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users. Never returns nil.
func ToUserResponses(us []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for _, u := range us {
		out = append(out, ToUserResponse(u))
	}
	return out
}

// ToNoteResponse converts a domain note. Empty content becomes null.
func ToNoteResponse(n model.Note) NoteResponse {
	var content *string
	if n.Content != "" {
		c := n.Content
		content = &c
	}
	return NoteResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ToNoteResponses converts a slice of notes. Never returns nil, so an empty
// listing serializes as [].
func ToNoteResponses(ns []model.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, ToNoteResponse(n))
	}
	return out
}
