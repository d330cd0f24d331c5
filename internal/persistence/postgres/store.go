package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ashfall-games/simcore/internal/engineerr"
)

// Snapshot is one row of world_snapshots: the same whole-world JSON
// document World.SaveToFile writes to disk, addressed by id and stamped
// with the simulation turn it was captured at.
type Snapshot struct {
	ID         string
	Turn       int64
	CapturedAt time.Time
	Document   []byte
}

// SnapshotMeta is a Snapshot's identifying columns without its document
// body, returned by ListSnapshots.
type SnapshotMeta struct {
	ID         string
	Turn       int64
	CapturedAt time.Time
}

// Store is a pgx-backed alternative to the file-based snapshot round trip
// of World.SaveToFile/LoadFromFile, storing the identical JSON document in
// a world_snapshots table.
type Store struct {
	db *sql.DB
}

// NewStore wraps db, a *sql.DB opened against the pgx stdlib driver (see
// Open).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot upserts document under id, stamping it with turn and the
// current time.
func (s *Store) SaveSnapshot(ctx context.Context, id string, turn int64, document []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO world_snapshots (id, turn, captured_at, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET turn = $2, captured_at = $3, document = $4
	`, id, turn, time.Now().UTC(), document)
	if err != nil {
		return fmt.Errorf("postgres: save snapshot %q: %w", id, err)
	}
	return nil
}

// LoadSnapshot reads the snapshot stored under id.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, turn, captured_at, document
		FROM world_snapshots
		WHERE id = $1
	`, id)

	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.Turn, &snap.CapturedAt, &snap.Document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, engineerr.SnapshotNotFound(id)
		}
		return Snapshot{}, fmt.Errorf("postgres: load snapshot %q: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns every stored snapshot's metadata, most recently
// captured first.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, turn, captured_at
		FROM world_snapshots
		ORDER BY captured_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		var meta SnapshotMeta
		if err := rows.Scan(&meta.ID, &meta.Turn, &meta.CapturedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot meta: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes the snapshot stored under id.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM world_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete snapshot %q: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return engineerr.SnapshotNotFound(id)
	}
	return nil
}
