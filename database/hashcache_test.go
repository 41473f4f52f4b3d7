package database

import (
	"path/filepath"
	"testing"

	"github.com/corona10/goimagehash"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *HashCache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "hashes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestHashCache_StoreAndLookup(t *testing.T) {
	cache := openTestCache(t)

	hash := goimagehash.NewImageHash(0xDEADBEEFCAFEF00D, goimagehash.AHash)
	require.NoError(t, cache.Store("/photos/a.jpg", "2026-08-29T10:00:00Z", hash))

	got, ok, err := cache.Lookup("/photos/a.jpg", "2026-08-29T10:00:00Z")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hash.GetHash(), got.GetHash())

	distance, err := hash.Distance(got)
	require.NoError(t, err)
	require.Equal(t, 0, distance)
}

func TestHashCache_MissOnUnknownPath(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Lookup("/photos/unknown.jpg", "2026-08-29T10:00:00Z")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashCache_MissOnStaleModTime(t *testing.T) {
	cache := openTestCache(t)

	hash := goimagehash.NewImageHash(42, goimagehash.AHash)
	require.NoError(t, cache.Store("/photos/a.jpg", "2026-08-29T10:00:00Z", hash))

	_, ok, err := cache.Lookup("/photos/a.jpg", "2026-08-29T11:30:00Z")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashCache_StoreReplacesEntry(t *testing.T) {
	cache := openTestCache(t)

	old := goimagehash.NewImageHash(1, goimagehash.AHash)
	require.NoError(t, cache.Store("/photos/a.jpg", "2026-08-29T10:00:00Z", old))

	updated := goimagehash.NewImageHash(2, goimagehash.AHash)
	require.NoError(t, cache.Store("/photos/a.jpg", "2026-08-29T12:00:00Z", updated))

	got, ok, err := cache.Lookup("/photos/a.jpg", "2026-08-29T12:00:00Z")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), got.GetHash())

	count, err := cache.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHashCache_Count(t *testing.T) {
	cache := openTestCache(t)

	count, err := cache.Count()
	require.NoError(t, err)
	require.Equal(t, 0, count)

	for i, path := range []string{"/a.jpg", "/b.jpg", "/c.jpg"} {
		hash := goimagehash.NewImageHash(uint64(i), goimagehash.AHash)
		require.NoError(t, cache.Store(path, "2026-08-29T10:00:00Z", hash))
	}

	count, err = cache.Count()
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestHashCache_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.db")

	first, err := Open(path)
	require.NoError(t, err)
	hash := goimagehash.NewImageHash(0xABCD, goimagehash.AHash)
	require.NoError(t, first.Store("/photos/a.jpg", "2026-08-29T10:00:00Z", hash))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Lookup("/photos/a.jpg", "2026-08-29T10:00:00Z")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(0xABCD), got.GetHash())
}
