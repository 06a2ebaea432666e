package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/models"
)

// fakeDrive is an in-memory [store.Drive] for exercising the remote
// record store without a backend.
type fakeDrive struct {
	objects map[models.BlobFolder]map[string][]byte
	failOn  string // object name whose download fails
	failErr error
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{objects: map[models.BlobFolder]map[string][]byte{}}
}

func (f *fakeDrive) List(_ context.Context, folder models.BlobFolder) ([]string, error) {
	names := make([]string, 0, len(f.objects[folder]))
	for name := range f.objects[folder] {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeDrive) Upload(_ context.Context, name string, folder models.BlobFolder, data []byte) error {
	if f.objects[folder] == nil {
		f.objects[folder] = map[string][]byte{}
	}
	f.objects[folder][name] = data
	return nil
}

func (f *fakeDrive) Download(_ context.Context, name string, folder models.BlobFolder) ([]byte, error) {
	if name == f.failOn && f.failErr != nil {
		return nil, f.failErr
	}
	data, ok := f.objects[folder][name]
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return data, nil
}

func (f *fakeDrive) Delete(_ context.Context, name string, folder models.BlobFolder) error {
	delete(f.objects[folder], name)
	return nil
}

func testRecord(collection models.Collection, key string, updatedAt int64) models.SyncRecord {
	return models.SyncRecord{
		Key:        key,
		Collection: collection,
		Revision:   1,
		UpdatedAt:  updatedAt,
		Hash:       "deadbeef",
		Payload:    json.RawMessage(`{"title":"t"}`),
	}
}

func TestRemoteStore_PutGetRoundTrip(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	ctx := context.Background()

	want := testRecord(models.CollectionBook, "42", 1700000000000)
	require.NoError(t, rs.Put(ctx, want))

	// The record lands as one JSON object in the config folder under
	// the "<collection>.<key>.json" naming contract.
	_, ok := drive.objects[models.FolderConfig]["book.42.json"]
	assert.True(t, ok)

	got, err := rs.Get(ctx, models.CollectionBook, "42")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRemoteStore_GetMissing(t *testing.T) {
	rs := NewRemoteStore(newFakeDrive(), logger.Nop())

	_, err := rs.Get(context.Background(), models.CollectionNote, "nope")

	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRemoteStore_ListFiltersByCollection(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	ctx := context.Background()

	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionBook, "1", 10)))
	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionBook, "2", 20)))
	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionNote, "n1", 30)))
	// Foreign object in the same folder must be ignored.
	require.NoError(t, drive.Upload(ctx, "readme.txt", models.FolderConfig, []byte("hi")))

	books, err := rs.List(ctx, models.CollectionBook)
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, models.CollectionBook, b.Collection)
	}
}

func TestRemoteStore_Delete(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	ctx := context.Background()

	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionBookmark, "bm", 5)))
	require.NoError(t, rs.Delete(ctx, models.CollectionBookmark, "bm"))

	_, err := rs.Get(ctx, models.CollectionBookmark, "bm")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRemoteStore_Snapshot(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	ctx := context.Background()

	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionBook, "1", 10)))
	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionNote, "n1", 20)))
	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionCover, "1", 30)))

	snap, err := rs.Snapshot(ctx, []models.Collection{models.CollectionBook, models.CollectionNote})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	_, ok := snap.Get(models.RecordID{Collection: models.CollectionBook, Key: "1"})
	assert.True(t, ok)
	_, ok = snap.Get(models.RecordID{Collection: models.CollectionCover, Key: "1"})
	assert.False(t, ok)
}

func TestRemoteStore_SnapshotDownloadFailure(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	ctx := context.Background()

	require.NoError(t, rs.Put(ctx, testRecord(models.CollectionBook, "1", 10)))
	drive.failOn = "book.1.json"
	drive.failErr = ErrTransient

	_, err := rs.Snapshot(ctx, models.SyncCollections)
	assert.ErrorIs(t, err, ErrTransient)
}

func TestRemoteStore_SnapshotCancelled(t *testing.T) {
	drive := newFakeDrive()
	rs := NewRemoteStore(drive, logger.Nop())
	require.NoError(t, rs.Put(context.Background(), testRecord(models.CollectionBook, "1", 10)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rs.Snapshot(ctx, models.SyncCollections)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRecordObjectName(t *testing.T) {
	tests := []struct {
		name           string
		in             string
		wantCollection models.Collection
		wantKey        string
		wantOK         bool
	}{
		{name: "book record", in: "book.42.json", wantCollection: models.CollectionBook, wantKey: "42", wantOK: true},
		{name: "key with dots", in: "note.ch.1.sec.2.json", wantCollection: models.CollectionNote, wantKey: "ch.1.sec.2", wantOK: true},
		{name: "foreign extension", in: "book.42.txt", wantOK: false},
		{name: "unknown collection", in: "playlist.1.json", wantOK: false},
		{name: "no key", in: "book..json", wantOK: false},
		{name: "bare json", in: "settings.json", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, key, ok := parseRecordObjectName(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCollection, col)
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}
