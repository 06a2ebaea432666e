package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/models"
)

// RemoteStore is the remote side's record persistence plus snapshot
// capture, layered on any [store.Drive].
type RemoteStore interface {
	store.RecordStore

	// Snapshot fetches every record of the given collections and
	// returns them as an immutable snapshot.
	Snapshot(ctx context.Context, collections []models.Collection) (models.SyncSnapshot, error)
}

// remoteRecordStore keeps each record as its own JSON object in the
// drive's config folder, named "<collection>.<key>.json". One record per
// object keeps remote writes single-object atomic, which the
// orchestrator's per-entry independence relies on.
type remoteRecordStore struct {
	drive  store.Drive
	logger *logger.Logger
}

// NewRemoteStore constructs a [RemoteStore] on top of drive.
func NewRemoteStore(drive store.Drive, log *logger.Logger) RemoteStore {
	return &remoteRecordStore{drive: drive, logger: log}
}

func recordObjectName(collection models.Collection, key string) string {
	return string(collection) + "." + key + ".json"
}

// parseRecordObjectName is the inverse of recordObjectName. ok is false
// for foreign objects in the config folder.
func parseRecordObjectName(name string) (collection models.Collection, key string, ok bool) {
	trimmed, found := strings.CutSuffix(name, ".json")
	if !found {
		return "", "", false
	}
	col, key, found := strings.Cut(trimmed, ".")
	if !found || key == "" {
		return "", "", false
	}
	collection = models.Collection(col)
	if !collection.Valid() {
		return "", "", false
	}
	return collection, key, true
}

func (r *remoteRecordStore) Get(ctx context.Context, collection models.Collection, key string) (models.SyncRecord, error) {
	data, err := r.drive.Download(ctx, recordObjectName(collection, key), models.FolderConfig)
	if err != nil {
		if errors.Is(err, store.ErrBlobNotFound) {
			return models.SyncRecord{}, store.ErrRecordNotFound
		}
		return models.SyncRecord{}, fmt.Errorf("download remote record: %w", err)
	}

	var rec models.SyncRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return models.SyncRecord{}, fmt.Errorf("decode remote record %s/%s: %w", collection, key, err)
	}
	return rec, nil
}

func (r *remoteRecordStore) List(ctx context.Context, collection models.Collection) ([]models.SyncRecord, error) {
	names, err := r.drive.List(ctx, models.FolderConfig)
	if err != nil {
		return nil, fmt.Errorf("list remote records: %w", err)
	}

	var records []models.SyncRecord
	for _, name := range names {
		col, _, ok := parseRecordObjectName(name)
		if !ok || col != collection {
			continue
		}

		data, err := r.drive.Download(ctx, name, models.FolderConfig)
		if err != nil {
			if errors.Is(err, store.ErrBlobNotFound) {
				// Deleted between list and download; treat as absent.
				continue
			}
			return nil, fmt.Errorf("download remote record %s: %w", name, err)
		}

		var rec models.SyncRecord
		if err = json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode remote record %s: %w", name, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *remoteRecordStore) Put(ctx context.Context, record models.SyncRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode remote record %s/%s: %w", record.Collection, record.Key, err)
	}

	name := recordObjectName(record.Collection, record.Key)
	if err = r.drive.Upload(ctx, name, models.FolderConfig, data); err != nil {
		return fmt.Errorf("upload remote record %s: %w", name, err)
	}
	return nil
}

func (r *remoteRecordStore) Delete(ctx context.Context, collection models.Collection, key string) error {
	name := recordObjectName(collection, key)
	if err := r.drive.Delete(ctx, name, models.FolderConfig); err != nil {
		return fmt.Errorf("delete remote record %s: %w", name, err)
	}
	return nil
}

func (r *remoteRecordStore) Snapshot(ctx context.Context, collections []models.Collection) (models.SyncSnapshot, error) {
	wanted := make(map[models.Collection]bool, len(collections))
	for _, c := range collections {
		wanted[c] = true
	}

	names, err := r.drive.List(ctx, models.FolderConfig)
	if err != nil {
		return models.SyncSnapshot{}, fmt.Errorf("list remote records: %w", err)
	}

	var records []models.SyncRecord
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return models.SyncSnapshot{}, err
		}

		col, _, ok := parseRecordObjectName(name)
		if !ok || !wanted[col] {
			continue
		}

		data, err := r.drive.Download(ctx, name, models.FolderConfig)
		if err != nil {
			if errors.Is(err, store.ErrBlobNotFound) {
				continue
			}
			return models.SyncSnapshot{}, fmt.Errorf("download remote record %s: %w", name, err)
		}

		var rec models.SyncRecord
		if err = json.Unmarshal(data, &rec); err != nil {
			return models.SyncSnapshot{}, fmt.Errorf("decode remote record %s: %w", name, err)
		}
		records = append(records, rec)
	}

	return models.NewSnapshot(records...), nil
}
