package store

import (
	"context"
	"fmt"

	"github.com/mapxn/koodo-reader/internal/config"
	"github.com/mapxn/koodo-reader/internal/logger"
)

// Storages groups every local storage repository into a single value that
// can be passed around the service layer.
type Storages struct {
	// Records is the SQLite-backed store for sync records.
	Records RecordStore

	// Cursor persists the sync high-water mark.
	Cursor CursorStore

	// Log is the append-only mutation log.
	Log SyncLog

	// Blobs is the filesystem drive holding book files and covers.
	Blobs Drive
}

// NewStorages initialises the local storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to cfg.DB.DSN, creating the database
//     file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Creates the blob library layout below cfg.Library.
//
// Returns an error if the database connection cannot be established,
// migration fails, or the library directory cannot be created.
func NewStorages(cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	blobs, err := NewLocalDrive(cfg.Library, logger)
	if err != nil {
		return nil, fmt.Errorf("library drive error: %w", err)
	}

	return &Storages{
		Records: NewRecordRepository(db, logger),
		Cursor:  NewCursorRepository(db, logger),
		Log:     NewSyncLogRepository(db, logger),
		Blobs:   blobs,
	}, nil
}
