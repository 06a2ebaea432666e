package models

// SyncMode selects the target of a sync run.
type SyncMode string

const (
	// ModeLocalOnly syncs against a folder drive on the same machine,
	// e.g. a mounted backup location.
	ModeLocalOnly SyncMode = "localOnly"

	// ModeRemote syncs against the configured remote drive backend.
	ModeRemote SyncMode = "remote"
)

// ConflictPolicy tells the orchestrator how to rewrite conflict entries
// before transfer. The policy is always an explicit parameter; conflicts
// are never resolved silently.
type ConflictPolicy string

const (
	// PreferLocal rewrites conflicts to push.
	PreferLocal ConflictPolicy = "prefer-local"

	// PreferRemote rewrites conflicts to pull.
	PreferRemote ConflictPolicy = "prefer-remote"

	// PolicyAsk defers to an external answerer. When no answer is
	// available the entry is downgraded to skip and reported unresolved.
	PolicyAsk ConflictPolicy = "ask"
)

// Valid reports whether p is a recognized policy.
func (p ConflictPolicy) Valid() bool {
	switch p {
	case PreferLocal, PreferRemote, PolicyAsk:
		return true
	}
	return false
}

// OutcomeStatus is the terminal state of one sync run.
type OutcomeStatus string

const (
	// StatusSuccess means every entry reached a terminal non-error state
	// and the cursor was advanced.
	StatusSuccess OutcomeStatus = "success"

	// StatusPartialFailure means at least one entry failed; the cursor
	// was not advanced, so the next run re-diffs the same set.
	StatusPartialFailure OutcomeStatus = "partialFailure"

	// StatusAborted means the run was cancelled or could not start; the
	// cursor was not advanced.
	StatusAborted OutcomeStatus = "aborted"
)

// EntryFailure records one entry that did not reach a clean terminal
// state, with the cause attached.
type EntryFailure struct {
	Entry DiffEntry `json:"entry"`
	Cause string    `json:"cause"`

	// Retryable marks transient transport failures that a later run is
	// expected to clear.
	Retryable bool `json:"retryable"`
}

// SyncOutcome is the caller-facing result of one orchestrated run.
type SyncOutcome struct {
	Status OutcomeStatus `json:"status"`

	// Failed enumerates exactly which entries remain unsynced; empty on
	// success.
	Failed []EntryFailure `json:"failed,omitempty"`

	// Unresolved lists conflict entries skipped under the ask policy.
	Unresolved []DiffEntry `json:"unresolved,omitempty"`

	// Reason describes why an aborted run stopped.
	Reason string `json:"reason,omitempty"`

	// Pulled, Pushed and Deleted count applied transfers, for reporting.
	Pulled  int `json:"pulled"`
	Pushed  int `json:"pushed"`
	Deleted int `json:"deleted"`
}

// Success is a convenience constructor for a clean outcome.
func Success(pulled, pushed, deleted int) SyncOutcome {
	return SyncOutcome{Status: StatusSuccess, Pulled: pulled, Pushed: pushed, Deleted: deleted}
}

// Aborted is a convenience constructor for a cancelled or rejected run.
func Aborted(reason string) SyncOutcome {
	return SyncOutcome{Status: StatusAborted, Reason: reason}
}
