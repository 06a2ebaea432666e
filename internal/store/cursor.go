package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

// cursorRepository persists the single-row sync cursor. The row is
// created by the initial migration, so Load never observes an empty
// table and Commit is a plain single-statement update, which SQLite
// applies atomically.
type cursorRepository struct {
	*DB
	logger *logger.Logger
}

// NewCursorRepository constructs the SQLite-backed [CursorStore].
func NewCursorRepository(db *DB, logger *logger.Logger) CursorStore {
	return &cursorRepository{DB: db, logger: logger}
}

func (c *cursorRepository) Load(ctx context.Context) (models.SyncCursor, error) {
	query, args, err := sq.Select("last_sync_time", "watermarks").
		From("sync_cursor").
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return models.SyncCursor{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var cursor models.SyncCursor
	var watermarks string
	row := c.DB.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&cursor.LastSyncTime, &watermarks); err != nil {
		c.logger.Err(err).Msg("failed to load sync cursor")
		return models.SyncCursor{}, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	if err = json.Unmarshal([]byte(watermarks), &cursor.Watermarks); err != nil {
		return models.SyncCursor{}, fmt.Errorf("decode cursor watermarks: %w", err)
	}
	if cursor.Watermarks == nil {
		cursor.Watermarks = make(map[models.Collection]int64)
	}

	return cursor, nil
}

func (c *cursorRepository) Commit(ctx context.Context, cursor models.SyncCursor) error {
	watermarks, err := json.Marshal(cursor.Watermarks)
	if err != nil {
		return fmt.Errorf("%w: encode watermarks: %v", ErrCursorCommit, err)
	}

	query, args, err := sq.Update("sync_cursor").
		Set("last_sync_time", cursor.LastSyncTime).
		Set("watermarks", string(watermarks)).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCursorCommit, err)
	}

	res, err := c.DB.ExecContext(ctx, query, args...)
	if err != nil {
		c.logger.Err(err).
			Int64("last_sync_time", cursor.LastSyncTime).
			Msg("failed to commit sync cursor")
		return fmt.Errorf("%w: %v", ErrCursorCommit, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: cursor row missing", ErrCursorCommit)
	}

	return nil
}
