package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/internal/utils"
	"github.com/mapxn/koodo-reader/models"
)

// ── in-memory stores ─────────────────────────────────────────────────────

// memRecords is an in-memory store.RecordStore. failPut/failDelete
// inject an error for one key, for failure-path tests.
type memRecords struct {
	mu      sync.Mutex
	records map[models.RecordID]models.SyncRecord

	failPut    map[string]error // key -> error
	failDelete map[string]error
}

func newMemRecords() *memRecords {
	return &memRecords{
		records:    make(map[models.RecordID]models.SyncRecord),
		failPut:    make(map[string]error),
		failDelete: make(map[string]error),
	}
}

func (m *memRecords) Get(_ context.Context, collection models.Collection, key string) (models.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[models.RecordID{Collection: collection, Key: key}]
	if !ok {
		return models.SyncRecord{}, store.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memRecords) List(_ context.Context, collection models.Collection) ([]models.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.SyncRecord
	for id, rec := range m.records {
		if id.Collection == collection {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRecords) Put(_ context.Context, record models.SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failPut[record.Key]; ok {
		return err
	}
	m.records[models.RecordID{Collection: record.Collection, Key: record.Key}] = record
	return nil
}

func (m *memRecords) Delete(_ context.Context, collection models.Collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failDelete[key]; ok {
		return err
	}
	delete(m.records, models.RecordID{Collection: collection, Key: key})
	return nil
}

// Snapshot makes memRecords usable as the remote side in syncer tests.
func (m *memRecords) Snapshot(_ context.Context, collections []models.Collection) (models.SyncSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[models.Collection]bool, len(collections))
	for _, c := range collections {
		wanted[c] = true
	}

	var records []models.SyncRecord
	for id, rec := range m.records {
		if wanted[id.Collection] {
			records = append(records, rec)
		}
	}
	return models.NewSnapshot(records...), nil
}

func (m *memRecords) snapshotAll() models.SyncSnapshot {
	snap, _ := m.Snapshot(context.Background(), models.SyncCollections)
	return snap
}

// memDrive is an in-memory store.Drive.
type memDrive struct {
	mu      sync.Mutex
	objects map[models.BlobFolder]map[string][]byte

	failUpload map[string]error // name -> error
}

func newMemDrive() *memDrive {
	return &memDrive{
		objects:    make(map[models.BlobFolder]map[string][]byte),
		failUpload: make(map[string]error),
	}
}

func (m *memDrive) List(_ context.Context, folder models.BlobFolder) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for name := range m.objects[folder] {
		names = append(names, name)
	}
	return names, nil
}

func (m *memDrive) Upload(_ context.Context, name string, folder models.BlobFolder, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failUpload[name]; ok {
		return err
	}
	if m.objects[folder] == nil {
		m.objects[folder] = make(map[string][]byte)
	}
	m.objects[folder][name] = data
	return nil
}

func (m *memDrive) Download(_ context.Context, name string, folder models.BlobFolder) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[folder][name]
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return data, nil
}

func (m *memDrive) Delete(_ context.Context, name string, folder models.BlobFolder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects[folder], name)
	return nil
}

func (m *memDrive) has(folder models.BlobFolder, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[folder][name]
	return ok
}

// memCursor is an in-memory store.CursorStore.
type memCursor struct {
	mu      sync.Mutex
	cursor  models.SyncCursor
	commits int

	failCommit error
}

func (m *memCursor) Load(context.Context) (models.SyncCursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, nil
}

func (m *memCursor) Commit(_ context.Context, cursor models.SyncCursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommit != nil {
		return m.failCommit
	}
	m.cursor = cursor
	m.commits++
	return nil
}

// memLog is an in-memory store.SyncLog.
type memLog struct {
	mu      sync.Mutex
	entries []store.SyncLogEntry
}

func (m *memLog) Append(_ context.Context, entry store.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLog) Recent(_ context.Context, limit int) ([]store.SyncLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]store.SyncLogEntry, limit)
	copy(out, m.entries[len(m.entries)-limit:])
	return out, nil
}

func (m *memLog) Prune(_ context.Context, before int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.At >= before {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// stubAnswerer answers every conflict with a fixed decision.
type stubAnswerer struct {
	decision models.Decision
	ok       bool
}

func (s stubAnswerer) Answer(context.Context, models.DiffEntry) (models.Decision, bool) {
	return s.decision, s.ok
}

// ── record builders ──────────────────────────────────────────────────────

// rec builds a live record with a hash consistent with its payload.
func rec(collection models.Collection, key string, revision, updatedAt int64, content string) models.SyncRecord {
	payload := json.RawMessage(fmt.Sprintf(`{"v":%q}`, content))
	return models.SyncRecord{
		Key:        key,
		Collection: collection,
		Revision:   revision,
		UpdatedAt:  updatedAt,
		Hash:       utils.ContentHash(payload),
		Payload:    payload,
	}
}

// tombstone builds a deletion marker.
func tombstone(collection models.Collection, key string, revision, updatedAt int64) models.SyncRecord {
	return models.SyncRecord{
		Key:        key,
		Collection: collection,
		Revision:   revision,
		UpdatedAt:  updatedAt,
		Deleted:    true,
	}
}

// withBlob attaches a blob reference to r.
func withBlob(r models.SyncRecord, folder models.BlobFolder, name string) models.SyncRecord {
	r.Blob = &models.BlobRef{Folder: folder, Name: name}
	return r
}
