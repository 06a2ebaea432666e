package service

import (
	"context"

	"github.com/mapxn/koodo-reader/models"
)

// ChangeTracker intercepts every local record mutation, stamping the
// sync metadata the reconciler relies on, and captures consistent local
// snapshots.
type ChangeTracker interface {
	// Save persists record with Revision bumped, UpdatedAt set to now
	// and Hash recomputed, and returns the stamped record.
	Save(ctx context.Context, record models.SyncRecord) (models.SyncRecord, error)

	// Tombstone marks the record deleted: Payload, Hash and Blob are
	// cleared, Deleted is set, Revision and UpdatedAt advance. The key
	// is retained so the deletion can propagate.
	Tombstone(ctx context.Context, collection models.Collection, key string) (models.SyncRecord, error)

	// SnapshotLocal returns a consistent point-in-time view of the
	// requested collections. It never interleaves with an in-flight
	// mutation.
	SnapshotLocal(ctx context.Context, collections []models.Collection) (models.SyncSnapshot, error)
}

// Reconciler compares two snapshots and produces the diff plan. The
// comparison is deterministic and side-effect free; conflicts are
// reported, never resolved here.
type Reconciler interface {
	Compare(ctx context.Context, local, remote models.SyncSnapshot) (models.DiffPlan, error)
}

// ConflictAnswerer resolves a single conflict entry under the ask
// policy. ok is false when no answer is available, in which case the
// orchestrator downgrades the entry to skip and reports it unresolved.
type ConflictAnswerer interface {
	Answer(ctx context.Context, entry models.DiffEntry) (decision models.Decision, ok bool)
}

// Orchestrator executes a diff plan against the local and remote
// stores. Per-entry errors are folded into the outcome; only failures
// that invalidate the whole run (run lock busy, cursor commit failure)
// come back as an error.
type Orchestrator interface {
	Execute(ctx context.Context, plan models.DiffPlan, policy models.ConflictPolicy) (models.SyncOutcome, error)
}

// Syncer is the caller-facing sync API.
type Syncer interface {
	// RunSync performs one full reconciliation against the target
	// selected by mode.
	RunSync(ctx context.Context, mode models.SyncMode, policy models.ConflictPolicy) (models.SyncOutcome, error)

	// CompareOnly builds the diff plan without executing it, for
	// preview. No side effects.
	CompareOnly(ctx context.Context) (models.DiffPlan, error)
}

// SyncJob runs periodic background syncs on a ticker.
type SyncJob interface {
	Start(ctx context.Context)
	Stop()
}

// CoverService stores, reads back and deletes cover images, keeping the
// cover record and its blob in lockstep.
type CoverService interface {
	// SaveCover normalizes raw image content, writes the blob to the
	// local library and records the cover for sync.
	SaveCover(ctx context.Context, key string, raw []byte) (models.SyncRecord, error)

	// GetCover reads the cover blob back as an inline displayable
	// payload.
	GetCover(ctx context.Context, key string) (string, error)

	// HasCover reports whether a cover blob exists for key.
	HasCover(ctx context.Context, key string) (bool, error)

	// DeleteCover tombstones the cover record and removes its blob.
	DeleteCover(ctx context.Context, key string) error
}
