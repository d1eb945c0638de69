package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
	"github.com/and161185/notes-keeper/internal/service"
)

// fakeAuth accepts exactly one token.
type fakeAuth struct {
	service.AuthService
	token string
	id    model.Identity
}

func (f *fakeAuth) Authenticate(_ context.Context, tok string) (model.Identity, error) {
	if tok != f.token {
		return model.Identity{}, &errs.AuthError{Reason: errs.AuthInvalidSignature}
	}
	return f.id, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []string
	failures []string
}

func (r *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, fmt.Sprintf("%s %s %d", method, route, status))
}

func (r *fakeRecorder) RecordAuthFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, reason)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  BEARER   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, ok := bearerToken(r)
		require.Equal(t, tc.ok, ok, "header %q", tc.header)
		require.Equal(t, tc.want, got, "header %q", tc.header)
	}
}

func protectedHandler(auth service.AuthService, rec *fakeRecorder, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(Logging(log, rec))
	r.With(Authenticate(auth, rec, log)).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromCtx(r.Context())
		_, _ = w.Write([]byte(id.Username))
	})
	return r
}

func TestAuthenticate_RejectsAndAccepts(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{token: "good-token", id: model.Identity{UserID: 7, Username: "alice"}}
	rec := &fakeRecorder{}
	h := protectedHandler(auth, rec, zaptest.NewLogger(t))

	apitest.Handler(h).Get("/me").Expect(t).
		Status(http.StatusUnauthorized).
		Header("WWW-Authenticate", `Bearer realm="notes"`).
		End()
	apitest.Handler(h).Get("/me").Header("Authorization", "Bearer bad-token").Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.Handler(h).Get("/me").Header("Authorization", "Bearer good-token").Expect(t).
		Status(http.StatusOK).
		Body("alice").
		End()

	require.Equal(t, []string{"missing_token", "invalid_signature"}, rec.failures)
	require.Equal(t, []string{"GET /me 401", "GET /me 401", "GET /me 200"}, rec.requests)
}

func TestLogging_NeverLogsToken(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	const secretToken = "eyJhbGciOiJIUzI1NiJ9.super-secret-payload.sig"
	auth := &fakeAuth{token: secretToken, id: model.Identity{UserID: 7, Username: "alice"}}
	h := protectedHandler(auth, &fakeRecorder{}, log)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+secretToken, nil)
	req.Header.Set("Authorization", "Bearer "+secretToken)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+secretToken+"-forged")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.NotEmpty(t, entries)
	var sawUser bool
	for _, e := range entries {
		require.NotContains(t, e.Message, "super-secret")
		for k, v := range e.ContextMap() {
			require.NotContains(t, fmt.Sprint(v), "super-secret", "field %s", k)
			if k == "user_id" && v == int64(7) {
				sawUser = true
			}
		}
	}
	require.True(t, sawUser, "authenticated request should log user_id")
}

func TestRecover_CatchesPanic(t *testing.T) {
	t.Parallel()

	h := Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("oh no")
	}))
	apitest.Handler(h).Get("/").Expect(t).
		Status(http.StatusInternalServerError).
		Body(`{"error":"internal error"}`).
		End()
}

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	h := CORS("http://localhost:3000")(next)
	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, httptest.NewRequest(http.MethodOptions, "/api/notes", nil))
	require.Equal(t, http.StatusNoContent, pre.Code)
	require.Equal(t, "http://localhost:3000", pre.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, pre.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	apitest.Handler(h).Get("/api/notes").Expect(t).
		Status(http.StatusTeapot).
		Header("Access-Control-Allow-Origin", "http://localhost:3000").
		End()

	rec := httptest.NewRecorder()
	CORS("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusRecorder_DefaultsTo200(t *testing.T) {
	t.Parallel()

	sr := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	_, _ = sr.Write([]byte("x"))
	sr.WriteHeader(http.StatusTeapot)
	require.Equal(t, http.StatusOK, sr.status)

	sr = &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	sr.WriteHeader(http.StatusCreated)
	require.Equal(t, http.StatusCreated, sr.status)
}
