package store

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

func TestCursorRepository_Load(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCursorRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_sync_time, watermarks FROM sync_cursor WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"last_sync_time", "watermarks"}).
			AddRow(int64(12345), `{"book":7,"note":3}`))

	cursor, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12345), cursor.LastSyncTime)
	assert.Equal(t, int64(7), cursor.Watermark(models.CollectionBook))
	assert.Equal(t, int64(3), cursor.Watermark(models.CollectionNote))
	assert.Zero(t, cursor.Watermark(models.CollectionCover))
}

func TestCursorRepository_Load_EmptyWatermarks(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCursorRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("SELECT last_sync_time, watermarks").
		WillReturnRows(sqlmock.NewRows([]string{"last_sync_time", "watermarks"}).
			AddRow(int64(0), `{}`))

	cursor, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, cursor.Watermarks)
	assert.Zero(t, cursor.LastSyncTime)
}

func TestCursorRepository_Commit(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCursorRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sync_cursor SET last_sync_time = ?, watermarks = ? WHERE id = ?")).
		WithArgs(int64(99999), `{"book":9}`, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Commit(context.Background(), models.SyncCursor{
		LastSyncTime: 99999,
		Watermarks:   map[models.Collection]int64{models.CollectionBook: 9},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCursorRepository_Commit_Failure(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCursorRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec("UPDATE sync_cursor").
		WillReturnError(assert.AnError)

	err := repo.Commit(context.Background(), models.SyncCursor{LastSyncTime: 1})

	assert.ErrorIs(t, err, ErrCursorCommit)
}

func TestCursorRepository_Commit_RowMissing(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCursorRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec("UPDATE sync_cursor").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Commit(context.Background(), models.SyncCursor{LastSyncTime: 1})

	assert.ErrorIs(t, err, ErrCursorCommit)
}
