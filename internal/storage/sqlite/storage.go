// Package sqlite provides a SQLite-backed key/value store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// ErrEmptyKey indicates an empty key was supplied.
var ErrEmptyKey = errors.New("empty key")

// Storage implements storage.Store using SQLite.
type Storage struct {
	db *sql.DB
}

// NewStorage opens (creating if needed) a SQLite database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Storage) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("sqlite storage: get: %w", ErrEmptyKey)
	}
	var value string
	err := s.db.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite storage: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *Storage) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("sqlite storage: set: %w", ErrEmptyKey)
	}
	_, err := s.db.ExecContext(context.Background(), `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, utcNow())
	if err != nil {
		return fmt.Errorf("sqlite storage: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Storage) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("sqlite storage: delete: %w", ErrEmptyKey)
	}
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite storage: delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying SQLite connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
