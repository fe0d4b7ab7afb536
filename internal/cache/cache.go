// Package cache persists extraction results between runs.
//
// Records are keyed by a BLAKE2b hash of the file's content, so a file is
// re-extracted only when its bytes change. The cache is an optimization
// layer only: corrupt or missing entries just mean re-extraction, and the
// default configuration leaves it disabled so a plain run touches nothing
// but the digest and memory files.
package cache

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"repomind/internal/errors"
	"repomind/internal/extract"
	"repomind/internal/logging"
)

const currentSchemaVersion = 1

// Cache is a content-addressed store of extraction records.
type Cache struct {
	conn   *sql.DB
	logger *logging.Logger
	path   string
}

// HashSource returns the cache key for file content.
func HashSource(source []byte) string {
	sum := blake2b.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Open opens or creates the cache database at path.
func Open(path string, logger *logging.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(errors.CacheFailed, "failed to create cache directory", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CacheFailed, "failed to open cache database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.New(errors.CacheFailed, "failed to set pragma", err)
		}
	}

	c := &Cache{conn: conn, logger: logger, path: path}
	if err := c.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Cache) initializeSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS extraction_cache (
			hash TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			record TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
	for _, stmt := range stmts {
		if _, err := c.conn.Exec(stmt); err != nil {
			return errors.New(errors.CacheFailed, "failed to create cache schema", err)
		}
	}

	version, err := c.schemaVersion()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		if _, err := c.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return errors.New(errors.CacheFailed, "failed to set cache schema version", err)
		}
		c.logger.Debug("cache schema initialized", map[string]interface{}{
			"path":    c.path,
			"version": currentSchemaVersion,
		})
	case version > currentSchemaVersion:
		return errors.New(errors.CacheFailed, "cache schema is newer than this build supports", nil).
			WithDetails(map[string]interface{}{"found": version, "supported": currentSchemaVersion})
	}

	return nil
}

func (c *Cache) schemaVersion() (int, error) {
	var version int
	err := c.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.New(errors.CacheFailed, "failed to read cache schema version", err)
	}
	return version, nil
}

// Get looks up a record by content hash. The caller owns the record's Path,
// which is not part of the cache key: identical content at two paths shares
// one entry.
func (c *Cache) Get(hash string) (*extract.FileRecord, bool, error) {
	var recordJSON string
	err := c.conn.QueryRow("SELECT record FROM extraction_cache WHERE hash = ?", hash).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.New(errors.CacheFailed, "cache lookup failed", err)
	}

	var rec extract.FileRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		// A corrupt entry is not fatal; pretend it is missing so the file
		// is re-extracted and the entry overwritten.
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"hash": hash})
		return nil, false, nil
	}

	return &rec, true, nil
}

// Put stores a record under its content hash. The path column is purely
// diagnostic, recording where the content was last seen.
func (c *Cache) Put(hash string, path string, rec *extract.FileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal cache record", err)
	}

	_, err = c.conn.Exec(
		"INSERT OR REPLACE INTO extraction_cache (hash, path, record, created_at) VALUES (?, ?, ?, datetime('now'))",
		hash, path, string(data),
	)
	if err != nil {
		return errors.New(errors.CacheFailed, "cache store failed", err)
	}
	return nil
}

// Len returns the number of cached records.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.conn.QueryRow("SELECT COUNT(*) FROM extraction_cache").Scan(&n); err != nil {
		return 0, errors.New(errors.CacheFailed, "cache count failed", err)
	}
	return n, nil
}
