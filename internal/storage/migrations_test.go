package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, s *SQLiteStorage, name string) bool {
	t.Helper()
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, storage.db))
	require.NoError(t, ApplyMigrations(ctx, storage.db))

	var count int
	require.NoError(t, storage.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, len(AllMigrations), count)

	for _, table := range []string{"projects", "tags", "schema_version", "catalog_revision"} {
		assert.True(t, tableExists(t, storage, table), table)
	}
}

func TestRollbackMigration(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, RollbackMigration(ctx, storage.db))

	assert.False(t, tableExists(t, storage, "catalog_revision"))
	assert.True(t, tableExists(t, storage, "projects"))

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", status.SchemaVersion)

	require.NoError(t, RollbackMigration(ctx, storage.db))

	assert.False(t, tableExists(t, storage, "projects"))
	assert.False(t, tableExists(t, storage, "tags"))

	// Nothing left to roll back
	assert.Error(t, RollbackMigration(ctx, storage.db))

	// Re-apply from scratch
	require.NoError(t, ApplyMigrations(ctx, storage.db))
	assert.True(t, tableExists(t, storage, "tags"))
	assert.True(t, tableExists(t, storage, "catalog_revision"))
}
