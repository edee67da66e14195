// Package ledger records pipeline runs in a SQLite database so past runs and
// their unresolved assets can be inspected later.
package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	root        TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	notes       INTEGER NOT NULL DEFAULT 0,
	renamed     INTEGER NOT NULL DEFAULT 0,
	modified    INTEGER NOT NULL DEFAULT 0,
	moved       INTEGER NOT NULL DEFAULT 0,
	copied      INTEGER NOT NULL DEFAULT 0,
	duplicates  INTEGER NOT NULL DEFAULT 0,
	missing     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	kind     TEXT NOT NULL,
	path     TEXT NOT NULL,
	detail   TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(run_id, kind);
`

// DB wraps a sql.DB with ledger operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
