// Package db provides the local SQLite store for session tokens and viewing history.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS lets the CLI and a running `bde serve` share the file.
const busyTimeoutMS = 5000

// DefaultPath returns the default database path: ~/.config/bde/bde.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "bde", "bde.db"), nil
}

// Open opens or creates the database at path and brings its schema up to date.
// Every pooled connection gets WAL mode, foreign keys and the busy timeout.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, closeWith(db, fmt.Errorf("connecting to %s: %w", path, err))
	}

	if err := migrate(db); err != nil {
		return nil, closeWith(db, fmt.Errorf("running migrations: %w", err))
	}
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeoutMS))
	return "file:" + path + "?" + q.Encode()
}

// closeWith closes db and returns err, noting a close failure too.
func closeWith(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
