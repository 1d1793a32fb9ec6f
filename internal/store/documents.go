package store

import (
	"database/sql"
	"fmt"
	"time"
)

// keepRevisions bounds document_revisions per artifact.
const keepRevisions = 10

// Read implements Backend.
func (db *DB) Read(name string) ([]byte, error) {
	var body string
	err := db.QueryRow("SELECT body FROM documents WHERE artifact = ?", name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", name, err)
	}
	return []byte(body), nil
}

// Write implements Backend. Every write is a single transaction; Atomic
// artifacts additionally keep their previous body as a revision.
func (db *DB) Write(name string, data []byte, mode Mode) error {
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin write %s: %w", name, err)
	}
	defer tx.Rollback()

	if mode == Atomic {
		if _, err := tx.Exec(`
			INSERT INTO document_revisions (artifact, body, replaced_at)
			SELECT artifact, body, ? FROM documents WHERE artifact = ?
		`, now, name); err != nil {
			return fmt.Errorf("keep revision %s: %w", name, err)
		}
		if _, err := tx.Exec(`
			DELETE FROM document_revisions WHERE artifact = ? AND id NOT IN (
				SELECT id FROM document_revisions WHERE artifact = ? ORDER BY id DESC LIMIT ?
			)
		`, name, name, keepRevisions); err != nil {
			return fmt.Errorf("prune revisions %s: %w", name, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO documents (artifact, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(artifact) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, name, string(data), now); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write %s: %w", name, err)
	}
	return nil
}

// Revision is a superseded document body.
type Revision struct {
	ID         int64
	Body       []byte
	ReplacedAt int64
}

// Revisions returns the kept revisions of an artifact, newest first.
func (db *DB) Revisions(name string) ([]Revision, error) {
	rows, err := db.Query(`
		SELECT id, body, replaced_at FROM document_revisions
		WHERE artifact = ? ORDER BY id DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list revisions %s: %w", name, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var body string
		if err := rows.Scan(&r.ID, &body, &r.ReplacedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.Body = []byte(body)
		revs = append(revs, r)
	}
	return revs, rows.Err()
}
