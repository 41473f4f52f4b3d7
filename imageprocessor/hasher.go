package imageprocessor

import (
	"os"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/omelkes/phaicull/logging"
)

// HashStore is an optional persistent backend for computed hashes, keyed by
// path and file modification time.
type HashStore interface {
	Lookup(path, modifiedAt string) (*goimagehash.ImageHash, bool, error)
	Store(path, modifiedAt string, hash *goimagehash.ImageHash) error
}

// Hasher memoizes perceptual hashes for the lifetime of one run. A nil entry
// in the table records a decode failure so the file is not retried. Safe for
// concurrent use.
type Hasher struct {
	mu    sync.Mutex
	table map[string]*goimagehash.ImageHash
	store HashStore
}

// NewHasher returns a Hasher. store may be nil for a purely in-memory run.
func NewHasher(store HashStore) *Hasher {
	return &Hasher{
		table: make(map[string]*goimagehash.ImageHash),
		store: store,
	}
}

// Hash returns the perceptual hash for path, or nil when the image cannot be
// decoded. Results, including failures, are memoized.
func (h *Hasher) Hash(path string) *goimagehash.ImageHash {
	h.mu.Lock()
	if hash, seen := h.table[path]; seen {
		h.mu.Unlock()
		return hash
	}
	h.mu.Unlock()

	hash := h.compute(path)

	h.mu.Lock()
	h.table[path] = hash
	h.mu.Unlock()
	return hash
}

// Table returns the memoization table built so far. The orchestrator passes
// it into the duplicate grouper so grouping stays a pure function of
// (images, hashes, threshold).
func (h *Hasher) Table() map[string]*goimagehash.ImageHash {
	h.mu.Lock()
	defer h.mu.Unlock()

	table := make(map[string]*goimagehash.ImageHash, len(h.table))
	for path, hash := range h.table {
		table[path] = hash
	}
	return table
}

func (h *Hasher) compute(path string) *goimagehash.ImageHash {
	var modifiedAt string
	if h.store != nil {
		if info, err := os.Stat(path); err == nil {
			modifiedAt = info.ModTime().Format(time.RFC3339)
			if hash, ok, err := h.store.Lookup(path, modifiedAt); err == nil && ok {
				return hash
			}
		}
	}

	hash, err := ComputeAverageHash(path)
	if err != nil {
		logging.DebugLog("cannot hash %s: %v", path, err)
		return nil
	}

	if h.store != nil && modifiedAt != "" {
		if err := h.store.Store(path, modifiedAt, hash); err != nil {
			logging.LogWarning("cannot cache hash for %s: %v", path, err)
		}
	}

	return hash
}
