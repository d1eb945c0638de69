package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/convert"
	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/metrics"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/service"
)

// loginFailedMsg never says whether the username or the password was wrong.
const loginFailedMsg = "invalid username or password"

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler wires services into HTTP handlers.
type Handler struct {
	auth  service.AuthService
	users service.UserService
	notes service.NoteService
	db    Pinger
	rec   metrics.Recorder
	log   *zap.Logger
}

// --- Auth ---

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req convert.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.Info("user registered", zap.Int64("user_id", id))
	writeJSON(w, http.StatusCreated, convert.RegisterResponse{Message: "user registered", UserID: id})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req convert.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tok, u, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		var ae *errs.AuthError
		if errors.As(err, &ae) {
			h.rec.RecordAuthFailure(string(ae.Reason))
			writeJSON(w, http.StatusUnauthorized, errorBody(loginFailedMsg, ""))
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToLoginResponse(tok, u))
}

// --- Users ---

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserResponses(users))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserResponse(*u))
}

// --- Notes ---

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context(), identity(r), r.URL.Query().Get("titleFilter"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToNoteResponses(notes))
}

func (h *Handler) searchNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.Search(r.Context(), identity(r), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToNoteResponses(notes))
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.notes.Get(r.Context(), identity(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToNoteResponse(*n))
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req convert.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.notes.Create(r.Context(), identity(r), req.Title, req.ContentValue())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/notes/"+strconv.FormatInt(n.ID, 10))
	writeJSON(w, http.StatusCreated, convert.ToNoteResponse(*n))
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req convert.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.ID != nil && *req.ID != id {
		writeError(w, r, h.log, errs.Invalid("id", "does not match the path"))
		return
	}
	n, err := h.notes.Update(r.Context(), identity(r), id, req.Title, req.ContentValue())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToNoteResponse(*n))
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.notes.Delete(r.Context(), identity(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Health ---

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identity returns the caller set by Authenticate. Routes using it are
// mounted behind that middleware, so a zero value only reaches services as
// an unauthenticated owner and is rejected there.
func identity(r *http.Request) model.Identity {
	id, _ := IdentityFromCtx(r.Context())
	return id
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errs.Invalid("id", "must be an integer")
	}
	return id, nil
}
