package store

import (
	"context"

	"github.com/mapxn/koodo-reader/models"
)

// RecordStore is the typed key-value persistence for sync records.
// Implementations must provide read-your-writes consistency: a record
// put by one call is visible to every subsequent Get/List on the same
// store.
type RecordStore interface {
	// Get returns the record for (collection, key); ErrRecordNotFound
	// when absent.
	Get(ctx context.Context, collection models.Collection, key string) (models.SyncRecord, error)

	// List returns every record of the collection, tombstones included.
	List(ctx context.Context, collection models.Collection) ([]models.SyncRecord, error)

	// Put inserts or replaces the record addressed by its collection and
	// key as a single atomic write.
	Put(ctx context.Context, record models.SyncRecord) error

	// Delete removes the row entirely. Deleting an absent record is a
	// no-op. Tombstoning, by contrast, is a Put of a record with
	// Deleted set.
	Delete(ctx context.Context, collection models.Collection, key string) error
}

// Drive stores binary content addressed by name within a logical folder.
// Both the local library directory and every remote backend implement
// this interface with identical semantics; backend selection is an
// explicit construction-time choice, never a runtime type check.
type Drive interface {
	// List returns the object names present in folder.
	List(ctx context.Context, folder models.BlobFolder) ([]string, error)

	// Upload atomically writes data under name in folder, replacing any
	// previous content.
	Upload(ctx context.Context, name string, folder models.BlobFolder, data []byte) error

	// Download returns the content of name in folder; ErrBlobNotFound
	// when absent.
	Download(ctx context.Context, name string, folder models.BlobFolder) ([]byte, error)

	// Delete removes name from folder. Deleting an absent object is a
	// no-op so that retried plans stay idempotent.
	Delete(ctx context.Context, name string, folder models.BlobFolder) error
}

// CursorStore persists the sync cursor. Commit is all-or-nothing: either
// the whole cursor (timestamp plus every watermark) is replaced, or
// nothing is.
type CursorStore interface {
	Load(ctx context.Context) (models.SyncCursor, error)
	Commit(ctx context.Context, cursor models.SyncCursor) error
}

// SyncLogEntry is one diagnostics row recorded for every local mutation
// and sync transfer. The log is never consulted by the reconciler
// (snapshots are the source of truth); it exists for audit and debugging
// and is retained for at least one full sync cycle.
type SyncLogEntry struct {
	At         int64
	Collection models.Collection
	Key        string
	Op         string
	Revision   int64
	Detail     string
}

// SyncLog is the append-only mutation log.
type SyncLog interface {
	Append(ctx context.Context, entry SyncLogEntry) error
	Recent(ctx context.Context, limit int) ([]SyncLogEntry, error)

	// Prune drops entries older than the given epoch-millisecond
	// timestamp.
	Prune(ctx context.Context, before int64) error
}
