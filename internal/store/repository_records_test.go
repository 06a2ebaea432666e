package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{DB: db, logger: logger.Nop()}
}

var recordRows = []string{"collection", "key", "revision", "updated_at", "deleted", "hash", "payload", "blob"}

func TestRecordRepository_Get(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT collection, key, revision, updated_at, deleted, hash, payload, blob FROM records WHERE collection = ? AND key = ?")).
		WithArgs("book", "42").
		WillReturnRows(sqlmock.NewRows(recordRows).
			AddRow("book", "42", int64(3), int64(2000), false, "abc", []byte(`{"title":"x"}`),
				[]byte(`{"folder":"book","name":"42.epub","size_bytes":1024}`)))

	rec, err := repo.Get(context.Background(), models.CollectionBook, "42")

	require.NoError(t, err)
	assert.Equal(t, models.CollectionBook, rec.Collection)
	assert.Equal(t, "42", rec.Key)
	assert.Equal(t, int64(3), rec.Revision)
	assert.Equal(t, int64(2000), rec.UpdatedAt)
	assert.Equal(t, "abc", rec.Hash)
	assert.JSONEq(t, `{"title":"x"}`, string(rec.Payload))
	require.NotNil(t, rec.Blob)
	assert.Equal(t, models.FolderBook, rec.Blob.Folder)
	assert.Equal(t, "42.epub", rec.Blob.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Get_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("SELECT").
		WithArgs("note", "missing").
		WillReturnRows(sqlmock.NewRows(recordRows))

	_, err := repo.Get(context.Background(), models.CollectionNote, "missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRepository_List(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE collection = ? ORDER BY key")).
		WithArgs("note").
		WillReturnRows(sqlmock.NewRows(recordRows).
			AddRow("note", "n1", int64(1), int64(100), false, "h1", []byte(`{}`), nil).
			AddRow("note", "n2", int64(5), int64(900), true, "", nil, nil))

	records, err := repo.List(context.Background(), models.CollectionNote)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "n1", records[0].Key)
	assert.True(t, records[1].Deleted)
	assert.Nil(t, records[1].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Put_Upsert(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WithArgs("bookmark", "b1", int64(2), int64(500), false, "h", []byte(`{"page":3}`), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Put(context.Background(), models.SyncRecord{
		Collection: models.CollectionBookmark,
		Key:        "b1",
		Revision:   2,
		UpdatedAt:  500,
		Hash:       "h",
		Payload:    []byte(`{"page":3}`),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Put_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec("INSERT INTO records").
		WillReturnError(assert.AnError)

	err := repo.Put(context.Background(), models.SyncRecord{
		Collection: models.CollectionBook,
		Key:        "42",
	})

	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestRecordRepository_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE collection = ? AND key = ?")).
		WithArgs("cover", "c9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), models.CollectionCover, "c9")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
