// Package sqlite stores the feedback inbox in SQLite.
//
// WHY SQLITE FOR THE INBOX?
// Feedback is the only data that must outlive a restart, it is written
// rarely, and it belongs to a single owner. An embedded database file covers
// that without running a separate server. modernc.org/sqlite is a pure Go
// translation of SQLite, so no C toolchain is needed to build.
//
// DATABASE/SQL REMINDER:
//   - sql.DB is a connection POOL, not a single connection
//   - QueryRowContext → exactly one row (sql.ErrNoRows when none)
//   - QueryContext    → many rows (always defer rows.Close())
//   - ExecContext     → INSERT / UPDATE / DELETE
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and implements repository.FeedbackRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
//   - "data/portfolio.db" → file-based database
//   - ":memory:"          → in-memory database, used by the tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION FOR ":memory:":
	// Every pooled connection to ":memory:" gets its OWN empty database.
	// Pinning the pool to one connection keeps migrations and queries on
	// the same database. File databases keep the default pool.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the inbox list be read while a new message is being written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	// Concurrent writers wait up to 5s for the lock instead of failing
	// immediately with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the pool. Defer it right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable; used by the health endpoint.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			message    TEXT NOT NULL,
			category   TEXT NOT NULL,
			sentiment  TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_read    INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating feedback table: %w", err)
	}

	// The reply draft column was added after the first schema shipped.
	if err := db.addColumnIfNotExists("feedback", "ai_response_draft", "TEXT"); err != nil {
		return fmt.Errorf("adding ai_response_draft to feedback: %w", err)
	}

	return nil
}

// addColumnIfNotExists makes ALTER TABLE ADD COLUMN idempotent.
// table, column and definition are compile-time constants, never user input.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
