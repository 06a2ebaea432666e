package models

// Decision is the per-record outcome of comparing two snapshots.
type Decision string

const (
	// DecisionPush sends the local record (and blob, if any) to the
	// remote side.
	DecisionPush Decision = "push"

	// DecisionPull fetches the remote record (and blob, if any) into the
	// local store.
	DecisionPull Decision = "pull"

	// DecisionSkip means both sides already agree; no transfer.
	DecisionSkip Decision = "skip"

	// DecisionConflict means the ordering signal cannot pick a winner:
	// equal timestamps with differing content. Never auto-resolved by the
	// reconciler.
	DecisionConflict Decision = "conflict"

	// DecisionDeleteLocal applies a remote tombstone to the local store.
	DecisionDeleteLocal Decision = "deleteLocal"

	// DecisionDeleteRemote applies a local tombstone to the remote side.
	DecisionDeleteRemote Decision = "deleteRemote"
)

// DiffEntry is the comparison result for one key across two snapshots.
// Local and Remote carry the records as observed at snapshot time; either
// may be nil when the key was absent on that side.
type DiffEntry struct {
	Key        string     `json:"key"`
	Collection Collection `json:"collection"`
	Decision   Decision   `json:"decision"`
	Local      *SyncRecord `json:"local,omitempty"`
	Remote     *SyncRecord `json:"remote,omitempty"`
}

// ID returns the record identifier the entry refers to.
func (e DiffEntry) ID() RecordID {
	return RecordID{Collection: e.Collection, Key: e.Key}
}

// DiffPlan is the ordered set of per-key decisions produced by one
// reconciliation. Entries are sorted by collection then key, so two runs
// over the same snapshots produce identical plans.
type DiffPlan struct {
	Entries []DiffEntry `json:"entries"`
}

// Count returns how many entries carry the given decision.
func (p DiffPlan) Count(d Decision) int {
	n := 0
	for _, e := range p.Entries {
		if e.Decision == d {
			n++
		}
	}
	return n
}

// Transfers returns how many entries require actual work, i.e. every
// decision except skip.
func (p DiffPlan) Transfers() int {
	return len(p.Entries) - p.Count(DecisionSkip)
}
