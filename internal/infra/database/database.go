// Package database opens the SQLite store shared by the repositories and keeps its schema current.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkrupp/shop/internal/infra/logging"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrNoDatabasePath is returned when the database path is empty.
var ErrNoDatabasePath = errors.New("no database path")

// Config holds configuration for the SQLite database.
type Config struct {
	// Path is the filesystem path to the SQLite database file
	Path string `env:"PATH" default:"var/storage/shop.db"`

	// BusyTimeout is how long a connection waits for a lock, in milliseconds
	BusyTimeout int `env:"BUSY_TIMEOUT" default:"5000"`

	// Migrate applies pending schema migrations when the database is opened
	Migrate bool `env:"MIGRATE" default:"true"`
}

// Open connects to the SQLite database at cfg.Path, creating parent directories
// as needed, and applies migrations if cfg.Migrate is set.
//
// The pool is limited to a single connection: SQLite serializes writers anyway,
// and a single connection avoids SQLITE_BUSY between concurrent requests.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	log := logging.GetLogger("infra.database").With(
		logging.Group("db", "path", cfg.Path),
	)

	if cfg.Path == "" {
		return nil, ErrNoDatabasePath
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, DriverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout)); err != nil {
		db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if cfg.Migrate {
		if err := Migrate(ctx, db); err != nil {
			db.Close()

			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	log.DebugContext(ctx, "database opened")

	return db, nil
}
