package postgres

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a *sql.DB against dsn using jackc/pgx/v5's database/sql
// driver (registered as "pgx" by the stdlib adapter), in place of the
// teacher's lib/pq + jmoiron/sqlx stack (see DESIGN.md).
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
