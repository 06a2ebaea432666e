package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mapxn/koodo-reader/internal/codec"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/models"
)

// coverPayload is the cover record's collection-specific content.
type coverPayload struct {
	Extension string `json:"extension"`
	SizeBytes int64  `json:"size_bytes"`
}

// coverService keeps cover records and their blobs in lockstep: every
// save writes the blob first and then records it, every delete
// tombstones the record and drops the blob.
type coverService struct {
	tracker ChangeTracker
	blobs   store.Drive
	logger  *logger.Logger
}

// NewCoverService constructs a CoverService over the local library
// drive.
func NewCoverService(tracker ChangeTracker, blobs store.Drive, lg *logger.Logger) CoverService {
	return &coverService{tracker: tracker, blobs: blobs, logger: lg}
}

func (s *coverService) SaveCover(ctx context.Context, key string, raw []byte) (models.SyncRecord, error) {
	data, ext, err := codec.Normalize(raw)
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("normalize cover for %q: %w", key, err)
	}

	name := codec.BlobName(key, ext)
	if err = s.blobs.Upload(ctx, name, models.FolderCover, data); err != nil {
		return models.SyncRecord{}, fmt.Errorf("store cover blob %s: %w", name, err)
	}

	payload, err := json.Marshal(coverPayload{Extension: ext, SizeBytes: int64(len(data))})
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("encode cover payload for %q: %w", key, err)
	}

	rec := models.SyncRecord{
		Key:        key,
		Collection: models.CollectionCover,
		Payload:    payload,
		Blob: &models.BlobRef{
			Folder:    models.FolderCover,
			Name:      name,
			SizeBytes: int64(len(data)),
		},
	}

	saved, err := s.tracker.Save(ctx, rec)
	if err != nil {
		return models.SyncRecord{}, err
	}
	return saved, nil
}

func (s *coverService) GetCover(ctx context.Context, key string) (string, error) {
	rec, ext, err := s.liveCover(ctx, key)
	if err != nil {
		return "", err
	}

	data, err := s.blobs.Download(ctx, rec.Blob.Name, models.FolderCover)
	if err != nil {
		if errors.Is(err, store.ErrBlobNotFound) {
			return "", ErrCoverNotFound
		}
		return "", fmt.Errorf("read cover blob %s: %w", rec.Blob.Name, err)
	}

	return codec.Materialize(data, ext), nil
}

func (s *coverService) HasCover(ctx context.Context, key string) (bool, error) {
	_, _, err := s.liveCover(ctx, key)
	if errors.Is(err, ErrCoverNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *coverService) DeleteCover(ctx context.Context, key string) error {
	rec, _, err := s.liveCover(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCoverNotFound) {
			return nil
		}
		return err
	}

	if _, err = s.tracker.Tombstone(ctx, models.CollectionCover, key); err != nil {
		return err
	}

	if err = s.blobs.Delete(ctx, rec.Blob.Name, models.FolderCover); err != nil {
		return fmt.Errorf("delete cover blob %s: %w", rec.Blob.Name, err)
	}
	return nil
}

// liveCover loads the cover record for key and decodes its payload,
// mapping absence and tombstones to ErrCoverNotFound.
func (s *coverService) liveCover(ctx context.Context, key string) (models.SyncRecord, string, error) {
	snap, err := s.tracker.SnapshotLocal(ctx, []models.Collection{models.CollectionCover})
	if err != nil {
		return models.SyncRecord{}, "", err
	}

	rec, ok := snap.Get(models.RecordID{Collection: models.CollectionCover, Key: key})
	if !ok || rec.Deleted || rec.Blob == nil {
		return models.SyncRecord{}, "", ErrCoverNotFound
	}

	var p coverPayload
	if err = json.Unmarshal(rec.Payload, &p); err != nil {
		return models.SyncRecord{}, "", fmt.Errorf("decode cover payload for %q: %w", key, err)
	}
	return rec, p.Extension, nil
}
