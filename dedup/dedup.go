// Package dedup partitions a batch of images into duplicate groups using
// perceptual-hash similarity.
package dedup

import (
	"github.com/corona10/goimagehash"

	"github.com/omelkes/phaicull/types"
)

// HashTable maps image paths to their precomputed perceptual hashes. A nil
// entry means the image could not be decoded.
type HashTable map[string]*goimagehash.ImageHash

// GroupDuplicates partitions paths into duplicate groups. Input order matters:
// the first not-yet-assigned image becomes the canonical member of a candidate
// group, and every later unassigned image within threshold bits OF THE
// CANONICAL joins it. Members are never compared to each other, only to the
// canonical, so the clustering is deliberately non-transitive: an image within
// threshold of a member but not of the canonical starts (or joins) another
// group. Images without a hash are excluded entirely. Groups with a single
// member are not emitted.
func GroupDuplicates(paths []string, hashes HashTable, threshold int) []types.DuplicateGroup {
	assigned := make(map[string]bool, len(paths))
	var groups []types.DuplicateGroup

	for i, canonical := range paths {
		if assigned[canonical] {
			continue
		}
		base := hashes[canonical]
		if base == nil {
			continue
		}

		group := types.DuplicateGroup{canonical}
		for _, candidate := range paths[i+1:] {
			if assigned[candidate] {
				continue
			}
			other := hashes[candidate]
			if other == nil {
				continue
			}
			dist, err := base.Distance(other)
			if err != nil || dist > threshold {
				continue
			}
			group = append(group, candidate)
			assigned[candidate] = true
		}

		// The canonical is consumed even when it matched nothing, so it is
		// never reconsidered for a later group.
		assigned[canonical] = true
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}

	return groups
}

// Distance returns the hamming distance between two hashes: the popcount of
// their XOR. Symmetric, and zero for identical hashes. Returns -1 when either
// hash is absent.
func Distance(a, b *goimagehash.ImageHash) int {
	if a == nil || b == nil {
		return -1
	}
	dist, err := a.Distance(b)
	if err != nil {
		return -1
	}
	return dist
}
