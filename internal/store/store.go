// Package store provides SQLite storage for recorded hand sessions and
// persisted settings.
package store

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// busyTimeout is how long, in milliseconds, a connection waits on a locked
// database. Recording flushes write while the API reads.
const busyTimeout = 5000

// pragmas are applied to every pooled connection.
var pragmas = []string{
	"foreign_keys(1)",
	fmt.Sprintf("busy_timeout(%d)", busyTimeout),
	"journal_mode(WAL)",
}

// Store represents a SQLite database connection.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the recordings database at dbPath and runs migrations.
// Every connection has foreign keys on, waits busyTimeout for locks and,
// for file databases, uses the WAL journal.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// dsn appends the connection pragmas to dbPath.
func dsn(dbPath string) string {
	q := url.Values{"_pragma": pragmas}
	return "file:" + dbPath + "?" + q.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
