package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/internal/utils"
	"github.com/mapxn/koodo-reader/models"
)

// changeTracker stamps every local mutation with the sync metadata the
// reconciler relies on: a strictly increasing per-key revision, the
// wall-clock mutation time and a content hash. Every mutation also lands
// in the append-only sync log for diagnostics; the log is never read
// during reconciliation.
//
// Snapshots and mutations are serialized per collection: SnapshotLocal
// holds the read lock of every requested collection for the duration of
// the read, mutations take the write lock of theirs.
type changeTracker struct {
	records store.RecordStore
	log     store.SyncLog
	logger  *logger.Logger

	now func() int64

	mu    sync.Mutex // guards locks map
	locks map[models.Collection]*sync.RWMutex
}

// NewChangeTracker constructs a ChangeTracker over the local record
// store.
func NewChangeTracker(records store.RecordStore, log store.SyncLog, lg *logger.Logger) ChangeTracker {
	return &changeTracker{
		records: records,
		log:     log,
		logger:  lg,
		now:     func() int64 { return time.Now().UnixMilli() },
		locks:   make(map[models.Collection]*sync.RWMutex),
	}
}

func (t *changeTracker) collectionLock(c models.Collection) *sync.RWMutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[c]
	if !ok {
		l = &sync.RWMutex{}
		t.locks[c] = l
	}
	return l
}

func (t *changeTracker) Save(ctx context.Context, record models.SyncRecord) (models.SyncRecord, error) {
	if !record.Collection.Valid() {
		return models.SyncRecord{}, fmt.Errorf("save record %q: unknown collection %q", record.Key, record.Collection)
	}

	lock := t.collectionLock(record.Collection)
	lock.Lock()
	defer lock.Unlock()

	prev, err := t.records.Get(ctx, record.Collection, record.Key)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return models.SyncRecord{}, fmt.Errorf("load previous revision of %s/%s: %w", record.Collection, record.Key, err)
	}

	record.Revision = prev.Revision + 1
	record.UpdatedAt = t.now()
	record.Deleted = false
	record.Hash = utils.ContentHash(record.Payload)

	if err = t.records.Put(ctx, record); err != nil {
		return models.SyncRecord{}, fmt.Errorf("save record %s/%s: %w", record.Collection, record.Key, err)
	}

	t.appendLog(ctx, record, "save", "")
	return record, nil
}

func (t *changeTracker) Tombstone(ctx context.Context, collection models.Collection, key string) (models.SyncRecord, error) {
	lock := t.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	prev, err := t.records.Get(ctx, collection, key)
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("load record for tombstone %s/%s: %w", collection, key, err)
	}

	// The tombstone keeps the key so the deletion can propagate, but
	// drops everything else.
	rec := models.SyncRecord{
		Key:        key,
		Collection: collection,
		Revision:   prev.Revision + 1,
		UpdatedAt:  t.now(),
		Deleted:    true,
	}

	if err = t.records.Put(ctx, rec); err != nil {
		return models.SyncRecord{}, fmt.Errorf("tombstone record %s/%s: %w", collection, key, err)
	}

	t.appendLog(ctx, rec, "tombstone", "")
	return rec, nil
}

func (t *changeTracker) SnapshotLocal(ctx context.Context, collections []models.Collection) (models.SyncSnapshot, error) {
	var all []models.SyncRecord

	for _, c := range collections {
		if err := ctx.Err(); err != nil {
			return models.SyncSnapshot{}, err
		}

		lock := t.collectionLock(c)
		lock.RLock()
		records, err := t.records.List(ctx, c)
		lock.RUnlock()
		if err != nil {
			return models.SyncSnapshot{}, fmt.Errorf("snapshot collection %s: %w", c, err)
		}

		all = append(all, records...)
	}

	return models.NewSnapshot(all...), nil
}

// appendLog records the mutation for audit. Log failures are reported
// but never fail the mutation itself.
func (t *changeTracker) appendLog(ctx context.Context, rec models.SyncRecord, op, detail string) {
	entry := store.SyncLogEntry{
		At:         rec.UpdatedAt,
		Collection: rec.Collection,
		Key:        rec.Key,
		Op:         op,
		Revision:   rec.Revision,
		Detail:     detail,
	}
	if err := t.log.Append(ctx, entry); err != nil {
		t.logger.Err(err).
			Str("collection", string(rec.Collection)).
			Str("key", rec.Key).
			Msg("append sync log entry")
	}
}
