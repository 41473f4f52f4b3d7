package filter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/corona10/goimagehash"
	"github.com/stretchr/testify/require"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/types"
)

// orderDetector flags images whose path carries a "bad" marker, so batch
// tests can tell per-image outcomes apart.
type orderDetector struct{}

func (orderDetector) CheckBlur(path string) types.CheckOutcome {
	flagged := len(path) > 0 && path[0] == 'b'
	return types.CheckOutcome{Flagged: flagged, Score: 1.0}
}
func (orderDetector) AnalyzeExposure(string) types.ExposureOutcome { return types.ExposureOutcome{} }
func (orderDetector) CheckResolution(string) types.CheckOutcome    { return types.CheckOutcome{} }
func (orderDetector) CheckNoise(string) types.CheckOutcome         { return types.CheckOutcome{} }
func (orderDetector) CountFaces(string) types.FaceOutcome          { return types.FaceOutcome{} }
func (orderDetector) DetectClosedEyes(string) types.CheckOutcome   { return types.CheckOutcome{} }

func batchConfig() config.FilterConfig {
	cfg := config.Default()
	cfg.CheckExposure = false
	cfg.CheckResolution = false
	cfg.CheckNoise = false
	cfg.CheckClosedEyes = false
	return cfg
}

func TestRunBatch_PreservesInputOrder(t *testing.T) {
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("img%03d.jpg", i)
	}

	engine := NewEngine(batchConfig(), orderDetector{})
	results := engine.RunBatch(paths, 8, nil)

	require.Len(t, results, len(paths))
	for i, result := range results {
		require.Equal(t, paths[i], result.Path)
	}
}

func TestRunBatch_CallbackFiresPerImage(t *testing.T) {
	paths := []string{"a.jpg", "bad.jpg", "c.jpg"}

	var mu sync.Mutex
	seen := map[string]bool{}

	engine := NewEngine(batchConfig(), orderDetector{})
	engine.RunBatch(paths, 2, func(r types.FilterResult) {
		mu.Lock()
		seen[r.Path] = r.ShouldFilter
		mu.Unlock()
	})

	require.Len(t, seen, 3)
	require.False(t, seen["a.jpg"])
	require.True(t, seen["bad.jpg"])
}

func TestRunBatch_ClampsWorkerCount(t *testing.T) {
	engine := NewEngine(batchConfig(), orderDetector{})
	results := engine.RunBatch([]string{"a.jpg"}, 0, nil)
	require.Len(t, results, 1)
}

func TestFindDuplicates_DisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.CheckDuplicates = false

	engine := NewEngine(cfg, orderDetector{})
	groups := engine.FindDuplicates([]string{"a.jpg", "b.jpg"}, func(string) *goimagehash.ImageHash {
		t.Fatal("hash function must not run when duplicate checking is off")
		return nil
	})

	require.Nil(t, groups)
}

func TestFindDuplicates_GroupsIdenticalHashes(t *testing.T) {
	engine := NewEngine(config.Default(), orderDetector{})

	hashes := map[string]uint64{
		"a.jpg": 0,
		"b.jpg": 0,
		"c.jpg": 0xFFFF,
	}
	groups := engine.FindDuplicates([]string{"a.jpg", "b.jpg", "c.jpg"}, func(path string) *goimagehash.ImageHash {
		return goimagehash.NewImageHash(hashes[path], goimagehash.AHash)
	})

	require.Equal(t, []types.DuplicateGroup{{"a.jpg", "b.jpg"}}, groups)
}

func TestAmendDuplicates(t *testing.T) {
	results := []types.FilterResult{
		{Path: "/photos/a.jpg", Reasons: []string{}, Details: map[string]interface{}{}},
		{Path: "/photos/b.jpg", Reasons: []string{"Too dark"}, ShouldFilter: true, Details: map[string]interface{}{}},
		{Path: "/photos/c.jpg", Reasons: []string{}, Details: map[string]interface{}{}},
	}
	groups := []types.DuplicateGroup{{"/photos/a.jpg", "/photos/b.jpg", "/photos/c.jpg"}}

	amended := AmendDuplicates(results, groups)

	// Canonical member is untouched.
	require.False(t, amended[0].ShouldFilter)
	require.Empty(t, amended[0].Reasons)

	// Duplicate reasons append after existing ones and force filtering.
	require.True(t, amended[1].ShouldFilter)
	require.Equal(t, []string{"Too dark", "Duplicate of a.jpg"}, amended[1].Reasons)
	require.True(t, amended[2].ShouldFilter)
	require.Equal(t, []string{"Duplicate of a.jpg"}, amended[2].Reasons)

	// Input slice stays as it was.
	require.Equal(t, []string{"Too dark"}, results[1].Reasons)
	require.False(t, results[2].ShouldFilter)

	for _, result := range amended {
		require.Equal(t, result.ShouldFilter, len(result.Reasons) > 0)
	}
}

func TestAmendDuplicates_NoGroups(t *testing.T) {
	results := []types.FilterResult{
		{Path: "a.jpg", Reasons: []string{}, Details: map[string]interface{}{}},
	}

	amended := AmendDuplicates(results, nil)
	require.Equal(t, results, amended)
}
