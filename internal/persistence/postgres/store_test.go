package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ashfall-games/simcore/internal/engineerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSnapshotUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO world_snapshots").
		WithArgs("colony-1", int64(42), sqlmock.AnyArg(), []byte(`{"a":1}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewStore(db)
	require.NoError(t, store.SaveSnapshot(context.Background(), "colony-1", 42, []byte(`{"a":1}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSnapshotReturnsDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "turn", "captured_at", "document"}).
		AddRow("colony-1", int64(7), now, []byte(`{"a":1}`))
	mock.ExpectQuery("SELECT id, turn, captured_at, document").
		WithArgs("colony-1").
		WillReturnRows(rows)

	store := NewStore(db)
	snap, err := store.LoadSnapshot(context.Background(), "colony-1")
	require.NoError(t, err)
	assert.Equal(t, "colony-1", snap.ID)
	assert.Equal(t, int64(7), snap.Turn)
	assert.Equal(t, []byte(`{"a":1}`), snap.Document)
}

func TestLoadSnapshotNotFoundReturnsEngineError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, turn, captured_at, document").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	_, err = store.LoadSnapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, engineerr.Is(err, engineerr.CodeSnapshotNotFound))
}

func TestListSnapshotsOrdersByCapturedAtDesc(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "turn", "captured_at"}).
		AddRow("colony-2", int64(9), now).
		AddRow("colony-1", int64(7), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, turn, captured_at").WillReturnRows(rows)

	store := NewStore(db)
	metas, err := store.ListSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "colony-2", metas[0].ID)
	assert.Equal(t, "colony-1", metas[1].ID)
}

func TestDeleteSnapshotNotFoundReturnsEngineError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM world_snapshots").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	err = store.DeleteSnapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, engineerr.Is(err, engineerr.CodeSnapshotNotFound))
}

func TestDeleteSnapshotRemovesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM world_snapshots").
		WithArgs("colony-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	require.NoError(t, store.DeleteSnapshot(context.Background(), "colony-1"))
}
