// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// dsnParams enables foreign keys, waits on locked databases and starts every
// transaction with BEGIN IMMEDIATE. Holding the write lock from the first
// statement is how SQLite serializes reconciliation, since it has no
// row-level FOR UPDATE.
const dsnParams = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// Dialect is the SQLite flavor of the shared queries.
var Dialect = sqlstore.Dialect{
	Name:      "sqlite",
	Now:       "CAST(strftime('%s', 'now') AS INTEGER)",
	Retryable: isRetryable,
}

// New creates a store backed by the SQLite database at dbPath.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqlstore.New(db, Dialect, opts...), nil
}

// isRetryable reports SQLITE_BUSY and SQLITE_LOCKED, including extended codes.
func isRetryable(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
