package models

import "encoding/json"

// Collection identifies the logical record set a SyncRecord belongs to.
// The string values are part of the storage wire contract: they appear in
// remote object names and in the local database, so they must remain
// stable across versions.
type Collection string

const (
	CollectionBook     Collection = "book"
	CollectionNote     Collection = "note"
	CollectionBookmark Collection = "bookmark"
	CollectionConfig   Collection = "config"
	CollectionCover    Collection = "cover"
)

// SyncCollections lists every collection that participates in a full
// synchronization run, in the order snapshots are captured.
var SyncCollections = []Collection{
	CollectionBook,
	CollectionNote,
	CollectionBookmark,
	CollectionConfig,
	CollectionCover,
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	switch c {
	case CollectionBook, CollectionNote, CollectionBookmark, CollectionConfig, CollectionCover:
		return true
	}
	return false
}

// HasBlob reports whether records of this collection carry binary content
// in blob storage alongside the record itself.
func (c Collection) HasBlob() bool {
	return c == CollectionBook || c == CollectionCover
}

// SyncRecord is one logical library item tracked for synchronization:
// a book's metadata, a note, a bookmark, a config entry, or a cover.
//
// Revision increases strictly on every local mutation of a given key and
// never decreases. UpdatedAt is epoch milliseconds taken at mutation time
// and is the ordering signal between devices. Hash is a SHA-256 digest of
// Payload, used to detect divergent content when wall clocks tie.
type SyncRecord struct {
	// Key is the stable identifier of the item, unique per collection.
	Key string `json:"key"`

	// Collection names the record set this item belongs to.
	Collection Collection `json:"collection"`

	// Revision is the per-key local revision marker.
	Revision int64 `json:"revision"`

	// UpdatedAt is the wall-clock mutation time in epoch milliseconds.
	UpdatedAt int64 `json:"updated_at"`

	// Deleted marks the record as a tombstone. A tombstoned record keeps
	// its Key and UpdatedAt but its Payload is cleared.
	Deleted bool `json:"deleted"`

	// Hash is the hex-encoded SHA-256 digest of Payload. Empty for
	// tombstones.
	Hash string `json:"hash,omitempty"`

	// Payload holds the collection-specific fields, opaque to the sync
	// engine.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Blob references the binary content owned by this record, for
	// collections that carry one. Cleared together with Payload when the
	// record is tombstoned.
	Blob *BlobRef `json:"blob,omitempty"`
}

// BlobFolder names a logical folder in blob storage.
type BlobFolder string

const (
	FolderBook   BlobFolder = "book"
	FolderCover  BlobFolder = "cover"
	FolderConfig BlobFolder = "config"
)

// BlobRef identifies binary content owned by a SyncRecord. A BlobRef has
// no independent lifecycle: it is created and deleted in lockstep with the
// owning record's payload transitions.
type BlobRef struct {
	// Folder is the logical blob folder (book or cover).
	Folder BlobFolder `json:"folder"`

	// Name is the blob object name, derived as "<key>.<extension>".
	// This naming convention is part of the wire contract with every
	// drive backend.
	Name string `json:"name"`

	// SizeBytes is the content length, when known.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}
