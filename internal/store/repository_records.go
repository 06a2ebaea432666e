package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

var recordColumns = []string{"collection", "key", "revision", "updated_at", "deleted", "hash", "payload", "blob"}

type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository constructs the SQLite-backed [RecordStore].
func NewRecordRepository(db *DB, logger *logger.Logger) RecordStore {
	return &recordRepository{DB: db, logger: logger}
}

func (r *recordRepository) Get(ctx context.Context, collection models.Collection, key string) (models.SyncRecord, error) {
	query, args, err := sq.Select(recordColumns...).
		From("records").
		Where(sq.Eq{"collection": collection, "key": key}).
		ToSql()
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncRecord{}, ErrRecordNotFound
		}
		r.logger.Err(err).
			Str("collection", string(collection)).
			Str("key", key).
			Msg("failed to get sync record")
		return models.SyncRecord{}, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	return rec, nil
}

func (r *recordRepository) List(ctx context.Context, collection models.Collection) ([]models.SyncRecord, error) {
	query, args, err := sq.Select(recordColumns...).
		From("records").
		Where(sq.Eq{"collection": collection}).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("collection", string(collection)).
			Msg("failed to list sync records")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.SyncRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	return records, nil
}

func (r *recordRepository) Put(ctx context.Context, record models.SyncRecord) error {
	blob, err := marshalBlobRef(record.Blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Insert("records").
		Columns(recordColumns...).
		Values(record.Collection, record.Key, record.Revision, record.UpdatedAt,
			record.Deleted, record.Hash, []byte(record.Payload), blob).
		Suffix(`ON CONFLICT (collection, key) DO UPDATE SET
			revision   = excluded.revision,
			updated_at = excluded.updated_at,
			deleted    = excluded.deleted,
			hash       = excluded.hash,
			payload    = excluded.payload,
			blob       = excluded.blob`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("collection", string(record.Collection)).
			Str("key", record.Key).
			Msg("failed to upsert sync record")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}

	return nil
}

func (r *recordRepository) Delete(ctx context.Context, collection models.Collection, key string) error {
	query, args, err := sq.Delete("records").
		Where(sq.Eq{"collection": collection, "key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("collection", string(collection)).
			Str("key", key).
			Msg("failed to delete sync record")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.SyncRecord, error) {
	var rec models.SyncRecord
	var payload, blob []byte

	err := row.Scan(
		&rec.Collection,
		&rec.Key,
		&rec.Revision,
		&rec.UpdatedAt,
		&rec.Deleted,
		&rec.Hash,
		&payload,
		&blob,
	)
	if err != nil {
		return models.SyncRecord{}, err
	}

	if len(payload) > 0 {
		rec.Payload = payload
	}
	if len(blob) > 0 {
		var ref models.BlobRef
		if err = json.Unmarshal(blob, &ref); err != nil {
			return models.SyncRecord{}, err
		}
		rec.Blob = &ref
	}
	return rec, nil
}

// marshalBlobRef serializes a blob reference for the nullable blob column.
// A record without a blob is stored as SQL NULL.
func marshalBlobRef(ref *models.BlobRef) (any, error) {
	if ref == nil {
		return nil, nil
	}
	raw, err := json.Marshal(ref)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
