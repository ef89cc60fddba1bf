// Package docstore provides SQLite-backed persistence for the host's
// document objects. It is the concrete side of the host persistence
// boundary: the session controller only ever asks it to persist current
// state and to raise the changed (dirty) flag.
package docstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL DEFAULT '',
	target     TEXT NOT NULL DEFAULT '',
	linked     INTEGER NOT NULL DEFAULT 0,
	dirty      INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store defines the document persistence operations. Consumers should
// depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type Store interface {
	Create(row Row) error
	Get(id string) (*Row, error)
	List() ([]Row, error)
	SaveState(id, text, target string, linked bool) error
	MarkChanged(id string) error
	ClearDirty(id string) error
	Delete(id string) error
	Close() error
}

// DB wraps a sql.DB with document-store operations.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("docstore: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
