package models

import "sort"

// RecordID addresses one record across snapshots.
type RecordID struct {
	Collection Collection
	Key        string
}

// SyncSnapshot is an immutable point-in-time view of one side's full
// sync-relevant record set. Once captured a snapshot is never mutated;
// the reconciler and orchestrator treat it as read-only input.
type SyncSnapshot struct {
	records map[RecordID]SyncRecord
}

// NewSnapshot builds a snapshot from the given records. Later duplicates
// of the same (collection, key) pair overwrite earlier ones.
func NewSnapshot(records ...SyncRecord) SyncSnapshot {
	m := make(map[RecordID]SyncRecord, len(records))
	for _, r := range records {
		m[RecordID{Collection: r.Collection, Key: r.Key}] = r
	}
	return SyncSnapshot{records: m}
}

// Get returns the record for id and whether it is present.
func (s SyncSnapshot) Get(id RecordID) (SyncRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Len returns the number of records in the snapshot.
func (s SyncSnapshot) Len() int {
	return len(s.records)
}

// IDs returns every record identifier in the snapshot, sorted by
// collection then key so that iteration order is deterministic.
func (s SyncSnapshot) IDs() []RecordID {
	ids := make([]RecordID, 0, len(s.records))
	for id := range s.records {
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

// Records returns a copy of all records, sorted the same way as IDs.
func (s SyncSnapshot) Records() []SyncRecord {
	out := make([]SyncRecord, 0, len(s.records))
	for _, id := range s.IDs() {
		out = append(out, s.records[id])
	}
	return out
}
