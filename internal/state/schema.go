// Package state persists update-cycle history and the last schema
// fingerprint in SQLite, so a restart over an unchanged vault stays a no-op.
package state

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cycles (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME NOT NULL,
	fingerprint  INTEGER NOT NULL DEFAULT 0,
	docs_written INTEGER NOT NULL DEFAULT 0,
	docs_failed  INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB wraps a sql.DB with cycle-journal operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("state: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
