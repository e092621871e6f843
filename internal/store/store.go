// Package store is the persistence gateway: the sole boundary between the
// in-memory application state and the backing database. It owns no state of
// its own and translates between wire records (snake_case columns, RFC 3339
// text timestamps, JSON-encoded item lists) and the in-memory shapes.
package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps the database handle. All collection operations hang off it;
// callers receive it by explicit injection, never through a package global.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	// Some drivers don't parse connection string params correctly.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open database handle and runs migrations. Used by
// tests with in-memory databases.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for collaborators that keep their own
// tables (the audit log).
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS app_users (
			id TEXT PRIMARY KEY, name TEXT NOT NULL, initials TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'employee' CHECK(role IN ('employee','authorized','admin')),
			department TEXT DEFAULT '',
			permissions TEXT DEFAULT '[]',
			password_hash TEXT DEFAULT '',
			created_at TEXT NOT NULL,
			last_login TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS checklists (
			id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT DEFAULT '',
			department TEXT NOT NULL DEFAULT 'General',
			frequency TEXT NOT NULL DEFAULT 'daily' CHECK(frequency IN ('daily','weekly','monthly')),
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending','in-progress','completed')),
			items TEXT NOT NULL DEFAULT '[]',
			assigned_to TEXT, assigned_to_name TEXT,
			created_by TEXT,
			started_at TEXT, completed_at TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS maintenance_requests (
			id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low','medium','high')),
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','in-progress','completed')),
			requested_by TEXT, requested_by_name TEXT,
			assigned_to TEXT, assigned_to_name TEXT,
			image_urls TEXT DEFAULT '[]',
			created_at TEXT NOT NULL, updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY, subject TEXT NOT NULL, content TEXT DEFAULT '',
			sender TEXT NOT NULL, recipients TEXT NOT NULL DEFAULT '[]',
			thread_id TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			type TEXT NOT NULL DEFAULT 'general' CHECK(type IN ('general','request','checklist')),
			image_url TEXT DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL, action TEXT NOT NULL, module TEXT NOT NULL,
			record_id TEXT DEFAULT '', summary TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, t := range tables {
		if _, err := s.db.Exec(t); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ensureID returns id unchanged when it is a well-formed UUID, otherwise a
// freshly minted one.
func ensureID(id string) string {
	if uuidRe.MatchString(strings.ToLower(id)) {
		return id
	}
	return uuid.NewString()
}

// fmtTime serializes a timestamp for storage. UTC so round trips compare
// equal regardless of the process's zone.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

// parseTime reads a stored timestamp, tolerating the space-separated form
// older rows may carry.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}
