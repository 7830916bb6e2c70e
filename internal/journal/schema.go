// Package journal keeps a SQLite audit log of executed batches and undo
// outcomes. It is history only: the undo stack is never rebuilt from it.
package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS batches (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	folder     TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	planned    INTEGER NOT NULL DEFAULT 0,
	executed   INTEGER NOT NULL DEFAULT 0,
	error      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS batch_entries (
	batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	executed INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (batch_id, seq)
);

CREATE TABLE IF NOT EXISTS undo_events (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id         TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	status           TEXT NOT NULL,
	undone           INTEGER NOT NULL DEFAULT 0,
	skipped          INTEGER NOT NULL DEFAULT 0,
	missing          INTEGER NOT NULL DEFAULT 0,
	conflicts        INTEGER NOT NULL DEFAULT 0,
	already_restored INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);
CREATE INDEX IF NOT EXISTS idx_undo_batch ON undo_events(batch_id);
`

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
