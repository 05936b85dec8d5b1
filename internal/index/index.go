package index

import "github.com/starford/inkwell/internal/models"

// NoteIndex is the part of the index the vault services write through and
// query. *DB implements it; tests may substitute a fake.
type NoteIndex interface {
	IndexNote(path string, content []byte) error
	DeleteNote(path string) error
	Backlinks(target string) ([]models.Reference, error)
	Search(query string, limit int) ([]SearchResult, error)
}

var _ NoteIndex = (*DB)(nil)
