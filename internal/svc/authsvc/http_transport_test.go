package authsvc_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
	"github.com/mkrupp/shop/internal/svc/authsvc"
)

func setupTestServer(t *testing.T, limiter *http_.RateLimiter) (*httptest.Server, *fixture) {
	t.Helper()

	f := setupTestService(t)
	cfg := authsvc.HTTPTransportConfig{CookieName: "session_id", CookieSecure: true}
	gate := http_.Gate{Auth: f.svc, CookieName: cfg.CookieName, Log: logging.GetLogger("test.gate")}

	server := httptest.NewServer(http_.NewServeMux(authsvc.NewHTTPTransport(f.svc, cfg, gate, limiter)))
	t.Cleanup(server.Close)

	return server, f
}

func post(t *testing.T, server *httptest.Server, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+path, reader)
	require.NoError(t, err)

	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}

	return nil
}

func TestHTTPTransport_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "valid credentials",
			body:       `{"username":"alice","password":"pw1"}`,
			wantStatus: http.StatusOK,
			wantMsg:    "Login successful!",
		},
		{
			name:       "wrong password",
			body:       `{"username":"alice","password":"nope"}`,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid username or password",
		},
		{
			name:       "missing password",
			body:       `{"username":"alice"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Username and password are required",
		},
		{
			name:       "missing username",
			body:       `{"password":"pw1"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Username and password are required",
		},
		{
			name:       "malformed body",
			body:       `username=alice`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Username and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, f := setupTestServer(t, nil)

			resp := post(t, server, "/login", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body domain.LoginResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body.Message)

			cookie := sessionCookie(resp)

			if tt.wantStatus != http.StatusOK {
				assert.Nil(t, cookie)
				assert.Zero(t, body.UserID)

				return
			}

			assert.Equal(t, f.aliceID, body.UserID)
			require.NotNil(t, cookie)
			assert.NotEmpty(t, cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.True(t, cookie.Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
			assert.Positive(t, cookie.MaxAge)
		})
	}
}

func TestHTTPTransport_Logout(t *testing.T) {
	t.Parallel()

	server, _ := setupTestServer(t, nil)

	resp := post(t, server, "/logout", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, server, "/login", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp = post(t, server, "/logout", "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msg domain.MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, "Logged out successfully!", msg.Message)

	expired := sessionCookie(resp)
	require.NotNil(t, expired)
	assert.Negative(t, expired.MaxAge)

	resp = post(t, server, "/logout", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPTransport_LoginRateLimit(t *testing.T) {
	t.Parallel()

	limiter := http_.NewRateLimiter(http_.RateLimitConfig{Rate: 0.01, Burst: 2}, logging.GetLogger("test.ratelimit"))
	server, _ := setupTestServer(t, limiter)

	for range 2 {
		resp := post(t, server, "/login", `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := post(t, server, "/login", `{"username":"alice","password":"pw1"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
