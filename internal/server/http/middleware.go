package httpserver

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/metrics"
	"github.com/and161185/notes-keeper/internal/service"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.status = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Logging logs request metadata and feeds request metrics. Headers, bodies
// and query strings are never logged.
func Logging(log *zap.Logger, rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			holder := &identityHolder{}

			next.ServeHTTP(sr, r.WithContext(withHolder(r.Context(), holder)))

			dur := time.Since(start)
			route := routePattern(r)
			rec.RecordRequest(r.Method, route, sr.status, dur)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", sr.status),
				zap.Duration("dur", dur),
				zap.String("peer", r.RemoteAddr),
			}
			if holder.id.UserID != 0 {
				fields = append(fields, zap.Int64("user_id", holder.id.UserID))
			}
			switch {
			case sr.status >= 500:
				log.Error("http", fields...)
			case sr.status >= 400:
				log.Warn("http", fields...)
			default:
				log.Info("http", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Recover turns panics into a 500 response.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rv := recover(); rv != nil {
					if rv == http.ErrAbortHandler {
						panic(rv)
					}
					log.Error("panic",
						zap.Any("reason", rv),
						zap.ByteString("stack", debug.Stack()),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody("internal error", ""))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows a single frontend origin. An empty origin disables CORS headers.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate requires a valid bearer token and stores the caller identity
// in the request context.
func Authenticate(auth service.AuthService, rec metrics.Recorder, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				rejectAuth(w, rec, log, &errs.AuthError{Reason: errs.AuthMissingToken})
				return
			}
			id, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				rejectAuth(w, rec, log, err)
				return
			}
			if h := holderFromCtx(r.Context()); h != nil {
				h.id = id
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func rejectAuth(w http.ResponseWriter, rec metrics.Recorder, log *zap.Logger, err error) {
	reason := "unknown"
	var ae *errs.AuthError
	if errors.As(err, &ae) {
		reason = string(ae.Reason)
	}
	rec.RecordAuthFailure(reason)
	log.Debug("token rejected", zap.String("reason", reason))
	w.Header().Set("WWW-Authenticate", `Bearer realm="notes"`)
	writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", ""))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	for _, v := range r.Header.Values("Authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			if t := strings.TrimSpace(v[7:]); t != "" {
				return t, true
			}
		}
	}
	return "", false
}
