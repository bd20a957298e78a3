package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/mkrupp/shop/internal/infra/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending up migrations to db.
// It is a no-op when the schema is already current.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	log := logging.GetLogger("infra.database.migrate")

	m, src, err := newMigrate(db)
	if err != nil {
		return err
	}
	// Closing m would close db as well, only the source is released here.
	defer src.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.DebugContext(ctx, "schema up to date")

			return nil
		}

		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}

	log.InfoContext(ctx, "schema migrated", "version", version)

	return nil
}

// Version returns the current schema version and whether the last migration failed half-way.
func Version(db *sqlx.DB) (uint, bool, error) {
	m, src, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	defer src.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("migrate version: %w", err)
	}

	return version, dirty, nil
}

func newMigrate(db *sqlx.DB) (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("open migrations: %w", err)
	}

	//nolint:exhaustruct
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		src.Close()

		return nil, nil, fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, DriverName, driver)
	if err != nil {
		src.Close()

		return nil, nil, fmt.Errorf("new migrate: %w", err)
	}

	return m, src, nil
}
