// Package postgres implements the alternate snapshot backend from
// spec.md section 6.7/SPEC_FULL section 4.9: the same whole-world JSON
// document internal/ecs.World.SaveToFile/LoadFromFile round trip through
// a file, stored instead in a world_snapshots table. Grounded on the
// teacher's packages/com.r3e.services.*/store_postgres.go storage-layer
// style (a thin struct wrapping *sql.DB, ExecContext/QueryRowContext,
// error wrapping with %w) and on the teacher's own embedded-migrations
// layout (system/platform/migrations), but driven through golang-migrate
// instead of the teacher's hand-rolled sequential executor, since the
// teacher's go.mod already declares golang-migrate without ever
// importing it.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ApplyMigrations brings the world_snapshots schema up to date against
// db, an already-opened *sql.DB (see Open). It is idempotent: running it
// against an already-current schema returns no error.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("postgres: open migration source: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("postgres: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("postgres: new migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("postgres: apply migrations: %w", err)
	}
	return nil
}
