package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// hasherPool is a package-level pool of reusable SHA-256 hash instances.
// Content hashing runs on every record mutation and every snapshot
// comparison, so instances are pooled to reduce GC pressure.
var hasherPool = sync.Pool{
	New: func() any {
		return sha256.New()
	},
}

// ContentHash computes the hex-encoded SHA-256 digest of data using a
// hasher pulled from the pool. This is the record content hash stored on
// every SyncRecord and compared during reconciliation.
func ContentHash(data []byte) string {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return hex.EncodeToString(sum)
}
