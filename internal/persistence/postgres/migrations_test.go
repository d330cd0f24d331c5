package postgres

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSourceHasCreateWorldSnapshotsUpMigration(t *testing.T) {
	source, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)

	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	r, identifier, err := source.ReadUp(version)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_world_snapshots", identifier)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS world_snapshots")
}

func TestMigrationSourceHasMatchingDownMigration(t *testing.T) {
	source, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)

	r, identifier, err := source.ReadDown(1)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_world_snapshots", identifier)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DROP TABLE IF EXISTS world_snapshots")
}
