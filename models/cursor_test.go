package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncCursor_WatermarkZeroWhenUnset(t *testing.T) {
	var c SyncCursor

	assert.Zero(t, c.Watermark(CollectionBook))
}

func TestSyncCursor_AdvancedMergesWatermarks(t *testing.T) {
	c := SyncCursor{
		LastSyncTime: 1000,
		Watermarks: map[Collection]int64{
			CollectionBook: 7,
			CollectionNote: 3,
		},
	}

	next := c.Advanced(2000, map[Collection]int64{
		CollectionBook:  5, // lower than recorded, must not regress
		CollectionNote:  9,
		CollectionCover: 2,
	})

	assert.Equal(t, int64(2000), next.LastSyncTime)
	assert.Equal(t, int64(7), next.Watermark(CollectionBook))
	assert.Equal(t, int64(9), next.Watermark(CollectionNote))
	assert.Equal(t, int64(2), next.Watermark(CollectionCover))

	// The receiver is untouched.
	assert.Equal(t, int64(1000), c.LastSyncTime)
	assert.Equal(t, int64(3), c.Watermark(CollectionNote))
}
