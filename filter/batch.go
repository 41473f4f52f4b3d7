package filter

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/omelkes/phaicull/dedup"
	"github.com/omelkes/phaicull/types"
)

// HashFunc returns the perceptual hash for an image, or nil when the image
// cannot be decoded. Implementations must be idempotent within one run.
type HashFunc func(path string) *goimagehash.ImageHash

// RunBatch evaluates every image over a bounded worker pool and returns the
// results in input order. Each result is independently owned, so the
// per-image pass parallelizes freely; reason and detail ordering inside one
// result is check-evaluation order regardless of scheduling. onResult, when
// non-nil, is called once per finished image from worker goroutines.
func (e *Engine) RunBatch(paths []string, workers int, onResult func(types.FilterResult)) []types.FilterResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]types.FilterResult, len(paths))
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int, p string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := e.FilterImage(p)
			results[idx] = result
			if onResult != nil {
				onResult(result)
			}
		}(i, path)
	}

	wg.Wait()
	return results
}

// FindDuplicates hashes every image (a batch barrier: grouping needs the full
// table) and runs the duplicate grouper over it. Returns nil when duplicate
// checking is disabled.
func (e *Engine) FindDuplicates(paths []string, hash HashFunc) []types.DuplicateGroup {
	if !e.cfg.CheckDuplicates {
		return nil
	}

	table := make(dedup.HashTable, len(paths))
	for _, path := range paths {
		table[path] = hash(path)
	}

	return dedup.GroupDuplicates(paths, table, e.cfg.DuplicateSimilarity)
}

// AmendDuplicates folds duplicate-group membership into a fresh result slice:
// every group member except the canonical first one is forced to filter, with
// a reason naming the canonical image by base filename. The canonical member
// is never amended by its own group. The input slice is not mutated.
func AmendDuplicates(results []types.FilterResult, groups []types.DuplicateGroup) []types.FilterResult {
	amended := make([]types.FilterResult, len(results))
	copy(amended, results)

	index := make(map[string]int, len(results))
	for i, result := range results {
		index[result.Path] = i
	}

	for _, group := range groups {
		canonical := filepath.Base(group[0])
		for _, member := range group[1:] {
			i, ok := index[member]
			if !ok {
				continue
			}
			reasons := make([]string, len(amended[i].Reasons), len(amended[i].Reasons)+1)
			copy(reasons, amended[i].Reasons)
			amended[i].Reasons = append(reasons, fmt.Sprintf("Duplicate of %s", canonical))
			amended[i].ShouldFilter = true
		}
	}

	return amended
}
