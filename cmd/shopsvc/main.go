package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/shop/internal/infra/config"
	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/infra/logging"
	"github.com/mkrupp/shop/internal/infra/transport/http"
	"github.com/mkrupp/shop/internal/repo/session"
	"github.com/mkrupp/shop/internal/svc/authsvc"
)

const (
	appName = "shop"
	svcName = "shopsvc"
)

type Config struct {
	config.EnvConfig

	Log        logging.LoggerConfig        `envPrefix:"LOG_"`
	HTTP       http.HTTPTransportConfig    `envPrefix:"HTTP_"`
	DB         database.Config             `envPrefix:"DB_"`
	Session    session.Config              `envPrefix:"SESSION_"`
	Cookie     authsvc.HTTPTransportConfig `envPrefix:"SESSION_"`
	LoginLimit http.RateLimitConfig        `envPrefix:"LOGIN_LIMIT_"`
	Metrics    http.MetricsConfig          `envPrefix:"METRICS_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.shopsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", logging.Err(err))

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.ErrorContext(ctx, "close server", logging.Err(closeErr))
		}
	}()

	if err := http.ListenAndServe(ctx, srv, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
