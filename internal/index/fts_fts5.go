//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// note_search mirrors notes with the referenced attachment names as an extra
// column, so a query for "pic.png" finds the notes embedding it.
func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS note_search USING fts5(
			path UNINDEXED,
			title,
			topics,
			body,
			attachments,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func dropFTS(conn *sql.DB) error {
	_, err := conn.Exec(`DROP TABLE IF EXISTS note_search; DROP TABLE IF EXISTS notes_fts;`)
	return err
}

func ftsUpsert(tx *sql.Tx, d searchDoc) error {
	if err := ftsDelete(tx, d.Path); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO note_search (path, title, topics, body, attachments) VALUES (?, ?, ?, ?, ?)`,
		d.Path, d.Title, strings.Join(d.Topics, " "), d.Body, strings.Join(d.Attachments, " "))
	if err != nil {
		return fmt.Errorf("index: upsert search %s: %w", d.Path, err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM note_search WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete search %s: %w", path, err)
	}
	return nil
}

// matchQuery quotes every term so user input never reaches the FTS5 query
// syntax. Terms are ANDed.
func matchQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

// Search ranks notes with bm25, weighting title over topics over attachment
// names over body text.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	match := matchQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT s.path,
		       n.title,
		       n.topics,
		       snippet(note_search, 3, '<b>', '</b>', '...', 32)
		FROM note_search s
		JOIN notes n ON n.path = s.path
		WHERE note_search MATCH ?
		ORDER BY bm25(note_search, 0, 8.0, 4.0, 1.0, 2.0)
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search %q: %w", query, err)
	}
	defer rows.Close()
	return scanResults(rows, nil)
}
