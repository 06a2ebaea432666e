package models

// SyncCursor is the persisted high-water mark of the last successfully
// completed sync run. It is read at the start of a run and written exactly
// once, after the orchestrator reports success; it is never partially
// updated.
type SyncCursor struct {
	// LastSyncTime is the epoch-millisecond timestamp of the last
	// successful run.
	LastSyncTime int64 `json:"last_sync_time"`

	// Watermarks records, per collection, the highest local revision
	// already reconciled.
	Watermarks map[Collection]int64 `json:"watermarks"`
}

// Watermark returns the recorded revision watermark for c, or zero when
// the collection has never been synced.
func (c SyncCursor) Watermark(col Collection) int64 {
	if c.Watermarks == nil {
		return 0
	}
	return c.Watermarks[col]
}

// Advanced returns a copy of the cursor moved to syncTime with the given
// watermarks merged over the existing ones. The receiver is not modified.
func (c SyncCursor) Advanced(syncTime int64, watermarks map[Collection]int64) SyncCursor {
	next := SyncCursor{
		LastSyncTime: syncTime,
		Watermarks:   make(map[Collection]int64, len(c.Watermarks)+len(watermarks)),
	}
	for col, rev := range c.Watermarks {
		next.Watermarks[col] = rev
	}
	for col, rev := range watermarks {
		if rev > next.Watermarks[col] {
			next.Watermarks[col] = rev
		}
	}
	return next
}
