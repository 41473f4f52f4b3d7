// Package database persists perceptual hashes between runs so unchanged
// images are not re-decoded. The in-memory table built during a run stays
// authoritative; this cache only seeds it.
package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/corona10/goimagehash"
	_ "github.com/mattn/go-sqlite3"

	"github.com/omelkes/phaicull/logging"
)

// HashCache is a SQLite-backed store of perceptual hashes, keyed by image
// path and file modification time. A modified file misses the cache and is
// rehashed.
type HashCache struct {
	db *sql.DB
}

// Open creates or opens the cache database at dbPath.
func Open(dbPath string) (*HashCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open hash cache %s: %v", dbPath, err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS hashes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		modified_at TEXT NOT NULL,
		average_hash TEXT NOT NULL,
		UNIQUE(path)
	);
	CREATE INDEX IF NOT EXISTS idx_hashes_path ON hashes(path);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize hash cache schema: %v", err)
	}

	return &HashCache{db: db}, nil
}

// Close releases the underlying database connection.
func (c *HashCache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached hash for path if one exists with a matching
// modification time.
func (c *HashCache) Lookup(path, modifiedAt string) (*goimagehash.ImageHash, bool, error) {
	var storedModTime, storedHash string
	err := c.db.QueryRow(
		"SELECT modified_at, average_hash FROM hashes WHERE path = ?", path,
	).Scan(&storedModTime, &storedHash)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("hash cache lookup failed for %s: %v", path, err)
	}

	if storedModTime != modifiedAt {
		logging.DebugLog("hash cache stale for %s, rehashing", path)
		return nil, false, nil
	}

	bits, err := strconv.ParseUint(storedHash, 16, 64)
	if err != nil {
		logging.LogWarning("corrupt hash cache entry for %s: %v", path, err)
		return nil, false, nil
	}

	return goimagehash.NewImageHash(bits, goimagehash.AHash), true, nil
}

// Store saves or replaces the hash for path.
func (c *HashCache) Store(path, modifiedAt string, hash *goimagehash.ImageHash) error {
	stmt, err := c.db.Prepare(`
		INSERT OR REPLACE INTO hashes (path, modified_at, average_hash)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare hash cache statement for %s: %v", path, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(path, modifiedAt, fmt.Sprintf("%016x", hash.GetHash()))
	if err != nil {
		return fmt.Errorf("cannot store hash for %s: %v", path, err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *HashCache) Count() (int, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM hashes").Scan(&count); err != nil {
		return 0, fmt.Errorf("cannot count hash cache entries: %v", err)
	}
	return count, nil
}
