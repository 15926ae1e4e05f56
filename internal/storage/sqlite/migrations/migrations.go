// Package migrations manages the run history database schema.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/upkeep-sh/upkeep/internal/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Up applies every pending schema migration. An already migrated database is
// a no-op.
func Up(db *sql.DB, logger log.Logger) error {
	inst, err := newInstance(db)
	if err != nil {
		return err
	}
	defer func() { _, _ = inst.Close() }()

	if err := inst.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}

	logger.Debugf("Schema migrations applied")
	return nil
}

// Down reverts every applied schema migration.
func Down(db *sql.DB, logger log.Logger) error {
	inst, err := newInstance(db)
	if err != nil {
		return err
	}
	defer func() { _, _ = inst.Close() }()

	if err := inst.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not revert migrations: %w", err)
	}

	logger.Debugf("Schema migrations reverted")
	return nil
}

func newInstance(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("could not read embedded migrations: %w", err)
	}

	inst, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}

	return inst, nil
}
