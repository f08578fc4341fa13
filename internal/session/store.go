package session

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load() (token string, err error)
	Save(token string, expiresAt time.Time) error
	Clear() error
}

// SQLiteStore keeps one token per backend server URL.
type SQLiteStore struct {
	db        *sql.DB
	serverURL string
}

// NewSQLiteStore creates a token store for the given server.
func NewSQLiteStore(db *sql.DB, serverURL string) *SQLiteStore {
	return &SQLiteStore{db: db, serverURL: serverURL}
}

// Load returns the stored token, or "" if none is stored.
func (s *SQLiteStore) Load() (string, error) {
	var token string
	err := s.db.QueryRow(
		"SELECT access_token FROM session_tokens WHERE server_url = ?",
		s.serverURL,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying session token: %w", err)
	}
	return token, nil
}

// Save stores the token, replacing any previous one for the server.
func (s *SQLiteStore) Save(token string, expiresAt time.Time) error {
	var exp interface{}
	if !expiresAt.IsZero() {
		exp = expiresAt.UTC()
	}
	if _, err := s.db.Exec(
		`INSERT INTO session_tokens (server_url, access_token, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(server_url) DO UPDATE SET
		     access_token = excluded.access_token,
		     expires_at = excluded.expires_at,
		     updated_at = CURRENT_TIMESTAMP`,
		s.serverURL, token, exp,
	); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session_tokens WHERE server_url = ?", s.serverURL); err != nil {
		return fmt.Errorf("deleting session token: %w", err)
	}
	return nil
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store seeded with token, which may be empty.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Load implements TokenStore.
func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save implements TokenStore.
func (s *MemoryStore) Save(token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements TokenStore.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
