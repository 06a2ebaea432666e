package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mapxn/koodo-reader/internal/logger"
)

type syncLogRepository struct {
	*DB
	logger *logger.Logger
}

// NewSyncLogRepository constructs the SQLite-backed [SyncLog].
func NewSyncLogRepository(db *DB, logger *logger.Logger) SyncLog {
	return &syncLogRepository{DB: db, logger: logger}
}

func (s *syncLogRepository) Append(ctx context.Context, entry SyncLogEntry) error {
	query, args, err := sq.Insert("sync_log").
		Columns("at", "collection", "key", "op", "revision", "detail").
		Values(entry.At, entry.Collection, entry.Key, entry.Op, entry.Revision, entry.Detail).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).
			Str("op", entry.Op).
			Str("key", entry.Key).
			Msg("failed to append sync log entry")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}

	return nil
}

func (s *syncLogRepository) Recent(ctx context.Context, limit int) ([]SyncLogEntry, error) {
	query, args, err := sq.Select("at", "collection", "key", "op", "revision", "detail").
		From("sync_log").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []SyncLogEntry
	for rows.Next() {
		var e SyncLogEntry
		if err = rows.Scan(&e.At, &e.Collection, &e.Key, &e.Op, &e.Revision, &e.Detail); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	return entries, nil
}

func (s *syncLogRepository) Prune(ctx context.Context, before int64) error {
	query, args, err := sq.Delete("sync_log").
		Where(sq.Lt{"at": before}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}

	return nil
}
