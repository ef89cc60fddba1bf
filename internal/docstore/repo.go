package docstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arnvid/mdlink/internal/apperr"
)

// Row represents a row in the documents table.
type Row struct {
	ID        string
	Name      string
	Text      string
	Target    string
	Linked    bool
	Dirty     bool
	UpdatedAt time.Time
}

// Create inserts a new document. Fails with apperr.ErrAlreadyExists when
// the id is taken.
func (db *DB) Create(row Row) error {
	_, err := db.conn.Exec(`
		INSERT INTO documents (id, name, text, target, linked, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, row.ID, row.Name, row.Text, row.Target, row.Linked, time.Now())
	if err != nil {
		var existing string
		lookupErr := db.conn.QueryRow(`SELECT id FROM documents WHERE id = ?`, row.ID).Scan(&existing)
		if lookupErr == nil {
			return fmt.Errorf("docstore: create %s: %w", row.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("docstore: create: %w", err)
	}
	return nil
}

// Get returns one document by id, or apperr.ErrNotFound.
func (db *DB) Get(id string) (*Row, error) {
	var r Row
	err := db.conn.QueryRow(`
		SELECT id, name, text, target, linked, dirty, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Text, &r.Target, &r.Linked, &r.Dirty, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("docstore: get %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get: %w", err)
	}
	return &r, nil
}

// List returns all documents ordered by last update, newest first.
func (db *DB) List() ([]Row, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, text, target, linked, dirty, updated_at
		FROM documents ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("docstore: list: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Name, &r.Text, &r.Target, &r.Linked, &r.Dirty, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveState persists the document's current in-memory text and target
// without touching the dirty flag. Mirroring external content is not a
// user edit, so it must never raise the changed state on its own.
func (db *DB) SaveState(id, text, target string, linked bool) error {
	res, err := db.conn.Exec(`
		UPDATE documents SET text = ?, target = ?, linked = ? WHERE id = ?
	`, text, target, linked, id)
	if err != nil {
		return fmt.Errorf("docstore: save state: %w", err)
	}
	return requireHit(res, id)
}

// MarkChanged raises the dirty flag and bumps updated_at.
func (db *DB) MarkChanged(id string) error {
	res, err := db.conn.Exec(`
		UPDATE documents SET dirty = 1, updated_at = ? WHERE id = ?
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("docstore: mark changed: %w", err)
	}
	return requireHit(res, id)
}

// ClearDirty lowers the dirty flag after the host persists the document.
func (db *DB) ClearDirty(id string) error {
	res, err := db.conn.Exec(`UPDATE documents SET dirty = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("docstore: clear dirty: %w", err)
	}
	return requireHit(res, id)
}

// Delete removes a document.
func (db *DB) Delete(id string) error {
	res, err := db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("docstore: delete: %w", err)
	}
	return requireHit(res, id)
}

func requireHit(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("docstore: %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
