//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the notes table and note_refs are searched with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func dropFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _ searchDoc) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// Search matches every whitespace-separated term against title, topics, body
// or referenced attachment names. Title hits sort first.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}

	var (
		where []string
		args  []any
	)
	for _, t := range terms {
		like := "%" + escapeLike(t) + "%"
		where = append(where, `(n.title LIKE ? ESCAPE '\' OR n.topics LIKE ? ESCAPE '\' OR n.body LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM note_refs r WHERE r.document = n.path AND r.target LIKE ? ESCAPE '\'))`)
		args = append(args, like, like, like, like)
	}
	first := "%" + escapeLike(terms[0]) + "%"
	args = append(args, first, limit)

	rows, err := db.conn.Query(`
		SELECT n.path, n.title, n.topics, n.body
		FROM notes n
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY (n.title LIKE ? ESCAPE '\') DESC, n.path
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search %q: %w", query, err)
	}
	defer rows.Close()
	return scanResults(rows, func(body string) string { return snippetAround(body, terms[0], 40) })
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// snippetAround cuts radius runes either side of the first case-insensitive
// occurrence of term in body.
func snippetAround(body, term string, radius int) string {
	runes := []rune(body)
	lower := []rune(strings.ToLower(body))
	needle := []rune(strings.ToLower(term))

	at := -1
	for i := 0; i+len(needle) <= len(lower) && len(lower) == len(runes); i++ {
		if string(lower[i:i+len(needle)]) == string(needle) {
			at = i
			break
		}
	}
	if at < 0 {
		at = 0
	}
	start := max(0, at-radius)
	end := min(len(runes), at+len(needle)+radius)

	s := strings.Join(strings.Fields(string(runes[start:end])), " ")
	if start > 0 {
		s = "..." + s
	}
	if end < len(runes) {
		s += "..."
	}
	return s
}
