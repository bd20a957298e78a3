package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
	"github.com/mkrupp/shop/internal/repo/cart"
	"github.com/mkrupp/shop/internal/repo/product"
	"github.com/mkrupp/shop/internal/repo/session"
	"github.com/mkrupp/shop/internal/repo/user"
	"github.com/mkrupp/shop/internal/svc/authsvc"
	"github.com/mkrupp/shop/internal/svc/cartsvc"
	"github.com/mkrupp/shop/internal/svc/catalogsvc"
)

const greeting = "Hello World"

// server is the composed shop API: session gate, catalog and cart on one mux.
type server struct {
	http.Handler

	db      *sqlx.DB
	authSvc *authsvc.AuthService
}

var (
	_ http_.HTTPTransport = (*server)(nil)
	_ io.Closer           = (*server)(nil)
)

func newServer(ctx context.Context, cfg Config) (_ *server, err error) {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	authSvc, err := authsvc.NewAuthService(
		ctx,
		user.NewSQLiteUserRepository(db),
		session.NewRepositoryFactory(cfg.Session),
	)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	gate := http_.Gate{
		Auth:       authSvc,
		CookieName: cfg.Cookie.CookieName,
		Log:        logging.GetLogger("infra.transport.http.gate"),
	}
	loginLimiter := http_.NewRateLimiter(cfg.LoginLimit, logging.GetLogger("infra.transport.http.ratelimit"))

	productRepo := product.NewSQLiteProductRepository(db)

	mux := http_.NewServeMux(
		authsvc.NewHTTPTransport(authSvc, cfg.Cookie, gate, loginLimiter),
		catalogsvc.NewHTTPTransport(catalogsvc.NewCatalogService(productRepo), gate),
		cartsvc.NewHTTPTransport(cartsvc.NewCartService(cart.NewSQLiteCartRepository(db), productRepo), gate),
	)
	mux.HandleFunc("GET /{$}", handleIndex)

	var handler http.Handler = mux

	if cfg.Metrics.Enabled {
		metrics := http_.NewMetrics(appName)
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
		handler = http_.MetricsMiddleware(mux, metrics)
	}

	return &server{Handler: handler, db: db, authSvc: authSvc}, nil
}

// Close releases the session store and the database.
func (s *server) Close() error {
	return errors.Join(s.authSvc.Close(), s.db.Close())
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, greeting)
}
