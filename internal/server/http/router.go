// Package httpserver exposes the notes HTTP API.
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/metrics"
	"github.com/and161185/notes-keeper/internal/service"
)

// Deps collects everything NewRouter needs.
type Deps struct {
	Auth  service.AuthService
	Users service.UserService
	Notes service.NoteService

	// DB backs /healthz; nil reports healthy.
	DB Pinger
	// Metrics records request and auth metrics; nil disables recording.
	Metrics metrics.Recorder
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer

	CORSAllowedOrigin string
	Log               *zap.Logger
}

// NewRouter builds the API routes and middleware chain:
//
//	Logging -> Recover -> CORS -> [Authenticate on protected routes]
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	var rec metrics.Recorder = metrics.Nop{}
	if d.Metrics != nil {
		rec = d.Metrics
	}
	h := &Handler{auth: d.Auth, users: d.Users, notes: d.Notes, db: d.DB, rec: rec, log: log}

	r := chi.NewRouter()
	r.Use(Logging(log, rec))
	r.Use(Recover(log))
	r.Use(CORS(d.CORSAllowedOrigin))

	r.Get("/healthz", h.healthz)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(d.Auth, rec, log))

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Get("/{id}", h.getUser)
		})

		r.Route("/api/notes", func(r chi.Router) {
			r.Get("/", h.listNotes)
			r.Post("/", h.createNote)
			r.Get("/search", h.searchNotes)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getNote)
				r.Put("/", h.updateNote)
				r.Delete("/", h.deleteNote)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found", ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed", ""))
	})
	return r
}
