// Package cache persists file contents fetched from the GitHub contents
// API. Entries are keyed by (owner, repo, ref, path); content at a commit
// SHA is immutable, so entries never need invalidation.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/prcomments/internal/github"
)

// Verify Store implements github.ContentCache at compile time.
var _ github.ContentCache = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS file_contents (
	owner      TEXT NOT NULL,
	repo       TEXT NOT NULL,
	ref        TEXT NOT NULL,
	path       TEXT NOT NULL,
	content    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (owner, repo, ref, path)
);
`

// Store is a sqlite-backed content cache. Safe for use by concurrent
// invocations: writes take a cross-process file lock.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDir returns the per-user cache directory.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache dir: %w", err)
	}
	return filepath.Join(base, "prcomments"), nil
}

// Open opens (creating if needed) the cache database at path.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Get returns the cached content for the key, reporting whether it was
// present.
func (s *Store) Get(ctx context.Context, owner, repo, ref, path string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content FROM file_contents WHERE owner = ? AND repo = ? AND ref = ? AND path = ?`,
		owner, repo, ref, path)

	var content string
	switch err := row.Scan(&content); {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return content, true, nil
}

// Put stores content for the key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, owner, repo, ref, path, content string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO file_contents (owner, repo, ref, path, content, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			owner, repo, ref, path, content, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("writing cache entry: %w", err)
		}
		return nil
	})
}

// Clear removes all cached entries.
func (s *Store) Clear(ctx context.Context) error {
	return s.withWriteLock(func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM file_contents`); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		return nil
	})
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withWriteLock(fn func() error) error {
	if s.path == ":memory:" {
		return fn()
	}
	return withLock(s.path, defaultLockTimeout, fn)
}
