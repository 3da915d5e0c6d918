// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	context.Context,
	string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorResponse {
	t.Helper()
	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthenticator(t *testing.T) {
	claims := &AccessTokenClaims{UserID: 42, Username: "alice", Role: "user"}

	tests := []struct {
		name       string
		header     string
		verifier   stubVerifier
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "expired",
			header:     "Bearer abc",
			verifier:   stubVerifier{err: core.ErrTokenExpired},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_EXPIRED",
		},
		{
			name:       "revoked",
			header:     "Bearer abc",
			verifier:   stubVerifier{err: core.ErrTokenRevoked},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_REVOKED",
		},
		{
			name:       "valid",
			header:     "bearer abc",
			verifier:   stubVerifier{claims: claims},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int64
			h := Authenticator(tt.verifier)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					gotID = GetUserID(r.Context())
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				body := decodeError(t, rec)
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantCode, body.Code)
				return
			}
			assert.Equal(t, int64(42), gotID)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: 1, Role: "user"}))
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: 1, Role: RoleAdmin}))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:    PerMinute(1, 1),
		KeyFunc:  KeyByIP,
		FailOpen: false,
	})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/withdrawal/request", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Code)
}

func TestKeyByUserAndEndpointNormalizesIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/17/complete", nil)
	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: 9}))

	assert.Equal(t,
		"ratelimit:user:9:endpoint:/api/tasks/{id}/complete",
		KeyByUserAndEndpoint(req),
	)
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	started  int
	finished []recordedRequest
}

func (f *fakeRecorder) RequestStarted() { f.started++ }

func (f *fakeRecorder) RequestFinished(method, route string, status int, _ time.Duration) {
	f.finished = append(f.finished, recordedRequest{method, route, status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Post("/api/tasks/{taskId}/complete", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	r.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/tasks/5/complete", nil))

	require.Len(t, rec.finished, 1)
	assert.Equal(t, 1, rec.started)
	assert.Equal(t, recordedRequest{
		method: http.MethodPost,
		route:  "/api/tasks/{taskId}/complete",
		status: http.StatusCreated,
	}, rec.finished[0])
}

func TestMaxBody(t *testing.T) {
	h := MaxBody(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"long"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
