package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order, each once. PRAGMA user_version records
// how many have run, so entries must only ever be appended.
var migrations = []string{
	`CREATE TABLE session_tokens (
		server_url   TEXT     PRIMARY KEY,
		access_token TEXT     NOT NULL,
		expires_at   DATETIME,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE viewing_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		viewing_id   TEXT    NOT NULL,
		property_id  TEXT    NOT NULL,
		from_status  TEXT    NOT NULL CHECK (from_status IN ('none', 'requested', 'options_sent', 'slot_selected', 'confirmed', 'completed', 'cancelled')),
		to_status    TEXT    NOT NULL CHECK (to_status IN ('none', 'requested', 'options_sent', 'slot_selected', 'confirmed', 'completed', 'cancelled')),
		viewing_date TEXT    NOT NULL DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX idx_viewing_history_viewing ON viewing_history (viewing_id)`,
	`CREATE INDEX idx_viewing_history_property ON viewing_history (property_id)`,
}

// SchemaVersion returns the number of migrations applied to db.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// migrate applies the pending migrations, each in its own transaction.
func migrate(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary (%d)", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		if err := apply(db, i); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *sql.DB, i int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: %w", i, err)
	}
	if _, err := tx.Exec(migrations[i]); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: %w", i, err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: recording version: %w", i, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: committing: %w", i, err)
	}
	return nil
}
