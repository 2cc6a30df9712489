// Package session persists the authenticated session (bearer token, user
// type, cached profile) in a local SQLite database so a login survives
// application restarts. It plays the role browser local storage plays for
// the web client, but as an explicit object handed to its consumers rather
// than ambient global state.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/medilink/medilink/internal/models"

	_ "modernc.org/sqlite"
)

// Store is the persistent session store. Safe for single-process use only;
// multi-process consistency is out of scope.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	token       TEXT NOT NULL DEFAULT '',
	user_type   TEXT NOT NULL DEFAULT '',
	profile     TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO session (id) VALUES (1);
`

// Open opens (creating if necessary) the session database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_txlock=immediate&_timeout=5000", path)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory creates an in-memory store for testing.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: ":memory:"}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		// Tokens are credentials; shred freed pages
		"PRAGMA secure_delete=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("setting pragma: %w", err)
		}
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing session schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) set(column, value string) error {
	query := fmt.Sprintf("UPDATE session SET %s = ?, updated_at = ? WHERE id = 1", column)
	if _, err := s.db.Exec(query, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("persisting session %s: %w", column, err)
	}
	return nil
}

func (s *Store) get(column string) string {
	var v string
	query := fmt.Sprintf("SELECT %s FROM session WHERE id = 1", column)
	if err := s.db.QueryRow(query).Scan(&v); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("reading session field failed", "field", column, "error", err)
		}
		return ""
	}
	return v
}

// SetToken stores the bearer token.
func (s *Store) SetToken(token string) error {
	return s.set("token", token)
}

// Token returns the stored bearer token, or "" when anonymous.
func (s *Store) Token() string {
	return s.get("token")
}

// SetUserType stores which login surface authenticated the session.
func (s *Store) SetUserType(t models.UserType) error {
	return s.set("user_type", string(t))
}

// UserType returns the stored user type.
func (s *Store) UserType() models.UserType {
	return models.UserType(s.get("user_type"))
}

// SetProfile caches the user profile. A nil profile clears the cache.
func (s *Store) SetProfile(p *models.Profile) error {
	if p == nil {
		return s.set("profile", "")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return s.set("profile", string(data))
}

// Profile returns the cached profile, or nil when none is stored.
func (s *Store) Profile() *models.Profile {
	raw := s.get("profile")
	if raw == "" {
		return nil
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		slog.Warn("cached profile is malformed, discarding", "error", err)
		return nil
	}
	return &p
}

// IsAuthenticated reports whether a token is stored.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the session belongs to a shelter admin.
func (s *Store) IsAdmin() bool {
	return s.UserType() == models.UserTypeAdmin
}

// IsUser reports whether the session belongs to a patient.
func (s *Store) IsUser() bool {
	return s.UserType() == models.UserTypeUser
}

// Clear wipes the session back to anonymous. It never fails upward; a
// failed wipe is logged and the next write overwrites it anyway.
func (s *Store) Clear() {
	if _, err := s.db.Exec(
		"UPDATE session SET token = '', user_type = '', profile = '', updated_at = ? WHERE id = 1",
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		slog.Error("clearing session failed", "error", err)
	}
}
