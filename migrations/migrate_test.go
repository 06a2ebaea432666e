package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SeedsSingleCursorRow(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	var lastSync int64
	var watermarks string
	err = db.QueryRow("SELECT last_sync_time, watermarks FROM sync_cursor WHERE id = 1").
		Scan(&lastSync, &watermarks)
	require.NoError(t, err)
	assert.Zero(t, lastSync)
	assert.JSONEq(t, "{}", watermarks)

	// Re-running is a no-op: the seed row is not duplicated.
	require.NoError(t, Migrate(db))
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sync_cursor").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrate_RecordsTableAcceptsBlobRow(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO records (collection, key, revision, updated_at, deleted, hash, payload, blob)
		VALUES ('book', 'b1', 1, 100, 0, 'h', '{}', '{"folder":"book","name":"b1.epub"}')`)
	require.NoError(t, err)

	// The (collection, key) primary key rejects duplicates.
	_, err = db.Exec(`INSERT INTO records (collection, key, revision, updated_at, deleted, hash, payload)
		VALUES ('book', 'b1', 2, 200, 0, 'h2', '{}')`)
	require.Error(t, err)
}

func TestMigrate_NilDB(t *testing.T) {
	err := Migrate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")
}
