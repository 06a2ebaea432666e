package service

import (
	"context"
	"sort"

	"github.com/mapxn/koodo-reader/models"
)

// reconciler is the concrete implementation of Reconciler. The
// comparison is a purely in-memory walk over the union of both
// snapshots; no storage layer or logger is required because the
// operation is stateless and produces no side effects.
type reconciler struct{}

// NewReconciler constructs a Reconciler ready for use.
func NewReconciler() Reconciler {
	return &reconciler{}
}

// Compare implements Reconciler.
//
// It walks the union of both snapshots' keys in sorted order (collection,
// then key) so that two runs over the same snapshots produce identical
// plans, and classifies every key into exactly one decision:
//
//   - Present on one side only: live records transfer toward the absent
//     side; a one-sided tombstone means the other side never held (or
//     already dropped) the record, so there is nothing left to do.
//   - Present on both sides: last writer wins by UpdatedAt. Equal
//     timestamps with differing content hash escalate to conflict rather
//     than guessing, because wall clocks cannot be trusted to sub-second
//     precision across devices.
//   - Tombstone against a live record: the deletion applies when the
//     tombstone is at least as recent; a strictly newer live write wins
//     and resurrects the record on the deleting side.
//
// ctx cancellation is checked at the start of each iteration so that
// callers can abort early on large libraries.
func (r *reconciler) Compare(ctx context.Context, local, remote models.SyncSnapshot) (models.DiffPlan, error) {
	ids := unionIDs(local, remote)

	var plan models.DiffPlan
	plan.Entries = make([]models.DiffEntry, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return models.DiffPlan{}, err
		}

		l, onLocal := local.Get(id)
		rr, onRemote := remote.Get(id)

		entry := models.DiffEntry{Key: id.Key, Collection: id.Collection}
		if onLocal {
			lc := l
			entry.Local = &lc
		}
		if onRemote {
			rc := rr
			entry.Remote = &rc
		}

		switch {
		case onLocal && !onRemote:
			if l.Deleted {
				// Created and deleted locally before the remote ever
				// saw it; nothing to propagate.
				entry.Decision = models.DecisionSkip
			} else {
				entry.Decision = models.DecisionPush
			}

		case !onLocal && onRemote:
			if rr.Deleted {
				entry.Decision = models.DecisionSkip
			} else {
				entry.Decision = models.DecisionPull
			}

		default:
			entry.Decision = classifyBoth(l, rr)
		}

		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}

// classifyBoth decides for a key present in both snapshots.
func classifyBoth(local, remote models.SyncRecord) models.Decision {
	switch {
	case local.Deleted && remote.Deleted:
		// Both sides agree it is gone.
		return models.DecisionSkip

	case local.Deleted:
		if remote.UpdatedAt > local.UpdatedAt {
			// Remote wrote after the local deletion: the live write
			// wins and the record is resurrected locally.
			return models.DecisionPull
		}
		return models.DecisionDeleteRemote

	case remote.Deleted:
		if local.UpdatedAt > remote.UpdatedAt {
			return models.DecisionPush
		}
		return models.DecisionDeleteLocal

	case local.UpdatedAt > remote.UpdatedAt:
		return models.DecisionPush

	case remote.UpdatedAt > local.UpdatedAt:
		return models.DecisionPull

	case local.Hash != remote.Hash:
		// Equal timestamps, diverged content: the ordering signal
		// cannot pick a winner.
		return models.DecisionConflict

	default:
		return models.DecisionSkip
	}
}

// unionIDs returns every RecordID present in either snapshot, sorted by
// collection then key.
func unionIDs(local, remote models.SyncSnapshot) []models.RecordID {
	seen := make(map[models.RecordID]struct{}, local.Len()+remote.Len())
	ids := make([]models.RecordID, 0, local.Len()+remote.Len())

	for _, id := range local.IDs() {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range remote.IDs() {
		if _, ok := seen[id]; ok {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Collection != ids[j].Collection {
			return ids[i].Collection < ids[j].Collection
		}
		return ids[i].Key < ids[j].Key
	})
	return ids
}
