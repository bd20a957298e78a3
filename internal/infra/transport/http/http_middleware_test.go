package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/shop/internal/domain"
	context_ "github.com/mkrupp/shop/internal/infra/context"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
)

type mockAuthenticator struct {
	sessions map[domain.SessionID]domain.Identity
	err      error
}

func (m *mockAuthenticator) IdentityOf(_ context.Context, id domain.SessionID) (domain.Identity, error) {
	if m.err != nil {
		return domain.Unauthenticated, m.err
	}

	identity, ok := m.sessions[id]
	if !ok {
		return domain.Unauthenticated, domain.ErrUnauthenticated
	}

	return identity, nil
}

func decodeMessage(t *testing.T, body io.Reader) string {
	t.Helper()

	var msg domain.MessageResponse
	require.NoError(t, json.NewDecoder(body).Decode(&msg))

	return msg.Message
}

func TestAuthorizingMiddleware(t *testing.T) {
	t.Parallel()

	alice := domain.Identity{UserID: 1, Username: "alice"}
	auth := &mockAuthenticator{sessions: map[domain.SessionID]domain.Identity{"s1": alice}}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		auth       http_.Authenticator
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "no session",
			prepare:    func(*http.Request) {},
			auth:       auth,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session_id", Value: "s1"})
			},
			auth:       auth,
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name: "bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer s1")
			},
			auth:       auth,
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name: "unknown session",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session_id", Value: "s2"})
			},
			auth:       auth,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "session store failure",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session_id", Value: "s1"})
			},
			auth:       &mockAuthenticator{err: errors.New("redis down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true

				assert.Equal(t, alice, context_.IdentityFromContext(r.Context()))

				id, ok := context_.SessionIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, domain.SessionID("s1"), id)
			})

			handler := http_.AuthorizingMiddleware(next, tt.auth, "session_id", logging.NewNopLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			tt.prepare(req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
		{domain.ErrEmptyCart, http.StatusBadRequest, "Cart is empty"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
		{fmt.Errorf("get product: %w", domain.ErrProductNotFound), http.StatusNotFound, "Product not found"},
		{errors.Join(domain.ErrItemNotInCart, errors.New("no rows")), http.StatusNotFound, "Item not in cart"},
		{errors.New("disk full"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			http_.WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMsg, decodeMessage(t, rec.Body))
		})
	}
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	handler := http_.RescueingMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), logging.NewNopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeMessage(t, rec.Body))
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	var seen string

	handler := http_.TracingMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = context_.TraceIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(http_.TraceIDHeader, "given-id")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rec.Header().Get(http_.TraceIDHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(http_.TraceIDHeader))
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := http_.NewRateLimiter(http_.RateLimitConfig{Rate: 0.001, Burst: 2}, logging.NewNopLogger())
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1001").Code)

	rec := send("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1000").Code)
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	metrics := http_.NewMetrics("shop")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := http_.MetricsMiddleware(mux, metrics)

	for _, path := range []string{"/api/products/1", "/api/products/2", "/nowhere"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `shop_http_requests_total{method="GET",route="GET /api/products/{id}",status="404"} 2`)
	assert.Contains(t, body, `shop_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.True(t, strings.Contains(body, "shop_http_requests_in_flight 0"))
}
