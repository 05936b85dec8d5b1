// Package index keeps a SQLite index of vault notes and the attachment and
// note references they contain, for backlink queries and search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is stored in PRAGMA user_version. A database with an older
// version is rebuilt from the vault by the next Sync.
const schemaVersion = 2

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	path       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	topics     TEXT NOT NULL DEFAULT '[]',
	body       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS note_refs (
	document TEXT NOT NULL REFERENCES notes(path) ON DELETE CASCADE,
	target   TEXT NOT NULL,
	line     INTEGER NOT NULL,
	kind     TEXT NOT NULL,
	text     TEXT NOT NULL DEFAULT '',
	UNIQUE(document, target, line, kind)
);

CREATE INDEX IF NOT EXISTS idx_note_refs_target ON note_refs(target);
`

// dropSQL removes tables written by older schema versions.
const dropSQL = `
DROP TABLE IF EXISTS refs;
DROP TABLE IF EXISTS note_refs;
DROP TABLE IF EXISTS notes;
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path and migrates it to the
// current schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	// One writer keeps WAL transactions from tripping over each other.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping %s: %w", path, err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: migrate %s: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version != 0 && version < schemaVersion {
		if err := dropFTS(conn); err != nil {
			return err
		}
		if _, err := conn.Exec(dropSQL); err != nil {
			return err
		}
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		return fmt.Errorf("fts schema: %w", err)
	}
	_, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
