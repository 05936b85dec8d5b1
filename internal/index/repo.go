package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/inkwell/internal/models"
)

const defaultSearchLimit = 20

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path      string
	Title     string
	Checksum  string
	Topics    []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Topics  []string `json:"topics"`
	Snippet string   `json:"snippet"`
}

// searchDoc is what the full-text table stores per note.
type searchDoc struct {
	Path        string
	Title       string
	Topics      []string
	Body        string
	Attachments []string
}

// UpsertNote replaces a note together with its search entry and references.
func (db *DB) UpsertNote(n NoteRow, body string, refs []models.Reference) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if n.Topics == nil {
		n.Topics = []string{}
	}
	topicsJSON, err := json.Marshal(n.Topics)
	if err != nil {
		return fmt.Errorf("index: encode topics %s: %w", n.Path, err)
	}

	if _, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, topics, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			topics     = excluded.topics,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Checksum, string(topicsJSON), body, n.UpdatedAt); err != nil {
		return fmt.Errorf("index: upsert note %s: %w", n.Path, err)
	}

	if _, err := tx.Exec(`DELETE FROM note_refs WHERE document = ?`, n.Path); err != nil {
		return fmt.Errorf("index: clear refs %s: %w", n.Path, err)
	}
	var names []string
	seen := make(map[string]struct{})
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO note_refs (document, target, line, kind, text) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range refs {
			if _, err := stmt.Exec(n.Path, r.Target, r.Line, r.Kind, r.Text); err != nil {
				return fmt.Errorf("index: insert ref %s -> %s: %w", n.Path, r.Target, err)
			}
			if _, ok := seen[r.Target]; !ok {
				seen[r.Target] = struct{}{}
				names = append(names, r.Target)
			}
		}
	}

	if err := ftsUpsert(tx, searchDoc{Path: n.Path, Title: n.Title, Topics: n.Topics, Body: body, Attachments: names}); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note; its references go with it.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note %s: %w", path, err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or "" when the note is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("index: checksum %s: %w", path, err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Backlinks returns every indexed reference whose target is name, ordered by
// document and line.
func (db *DB) Backlinks(name string) ([]models.Reference, error) {
	rows, err := db.conn.Query(`
		SELECT document, line, text, kind FROM note_refs
		WHERE target = ?
		ORDER BY document, line`, name)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks %s: %w", name, err)
	}
	defer rows.Close()

	out := []models.Reference{}
	for rows.Next() {
		r := models.Reference{Target: name}
		if err := rows.Scan(&r.Document, &r.Line, &r.Text, &r.Kind); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scanResults reads (path, title, topics JSON, text) rows. snippet, when set,
// turns the text column into the result snippet.
func scanResults(rows *sql.Rows, snippet func(string) string) ([]SearchResult, error) {
	out := []SearchResult{}
	for rows.Next() {
		var (
			r      SearchResult
			topics string
			text   string
		)
		if err := rows.Scan(&r.Path, &r.Title, &topics, &text); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(topics), &r.Topics); err != nil || r.Topics == nil {
			r.Topics = []string{}
		}
		r.Snippet = text
		if snippet != nil {
			r.Snippet = snippet(text)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
