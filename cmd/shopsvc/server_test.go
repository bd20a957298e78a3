package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
	"github.com/mkrupp/shop/internal/repo/session"
	"github.com/mkrupp/shop/internal/repo/user"
	"github.com/mkrupp/shop/internal/svc/authsvc"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	//nolint:exhaustruct
	return Config{
		DB: database.Config{
			Path:        filepath.Join(t.TempDir(), "shop.db"),
			BusyTimeout: 1000,
			Migrate:     true,
		},
		Session:    session.Config{Backend: session.BackendMemory, TTL: 3600},
		Cookie:     authsvc.HTTPTransportConfig{CookieName: "session_id"},
		LoginLimit: http_.RateLimitConfig{Rate: 100, Burst: 100},
		Metrics:    http_.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

type client struct {
	t      *testing.T
	http   *http.Client
	server *httptest.Server
}

func setupTestServer(t *testing.T) *client {
	t.Helper()

	ctx := context.Background()

	srv, err := newServer(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	_, err = user.NewSQLiteUserRepository(srv.db).CreateUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	server := httptest.NewServer(http_.WithMiddleware(srv, logging.GetLogger("test.shopsvc")))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	httpClient := server.Client()
	httpClient.Jar = jar

	return &client{t: t, http: httpClient, server: server}
}

func (c *client) do(method, path, body string) (int, string) {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.server.URL+path, reader)
	require.NoError(c.t, err)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return resp.StatusCode, string(data)
}

func TestShop_CheckoutScenario(t *testing.T) {
	t.Parallel()

	c := setupTestServer(t)

	status, body := c.do(http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Login successful!","user_id":1}`, body)

	status, _ = c.do(http.MethodPost, "/api/products/add", `{"name":"Widget","price":9.99}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = c.do(http.MethodPost, "/api/cart/add/1", "")
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"name":"Widget","price":9.99,"description":null}]`, body)

	status, _ = c.do(http.MethodPost, "/api/cart/checkout", "")
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)

	status, _ = c.do(http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestShop_UnauthenticatedAddCreatesNoProduct(t *testing.T) {
	t.Parallel()

	c := setupTestServer(t)

	status, body := c.do(http.MethodPost, "/api/products/add", `{"name":"Widget","price":9.99}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"message":"Authentication required"}`, body)

	status, body = c.do(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}

func TestShop_IndexAndMetrics(t *testing.T) {
	t.Parallel()

	c := setupTestServer(t)

	status, body := c.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, greeting, body)

	status, _ = c.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `shop_http_requests_total{method="GET",route="GET /{$}",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
}
