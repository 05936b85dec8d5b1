package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/parser"
	"github.com/starford/inkwell/internal/storage"
)

// DocumentExts are the extensions indexed as documents.
var DocumentExts = []string{".md", ".txt"}

// Sync walks the document directories and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, dirs []string, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	for _, dir := range dirs {
		metas, err := store.List(dir, DocumentExts...)
		if err != nil {
			return err
		}
		for _, m := range metas {
			disk[m.Path] = struct{}{}

			if m.Checksum != "" && checksums[m.Path] == m.Checksum {
				continue
			}

			data, err := store.Read(m.Path)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				continue
			}
			if err := db.IndexNote(m.Path, data); err != nil {
				logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: indexed", slog.String("path", m.Path))
			}
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexNote parses content and upserts it along with its references.
func (db *DB) IndexNote(path string, content []byte) error {
	res := parser.Parse(content)
	sum := sha256.Sum256(content)

	row := NoteRow{
		Path:      path,
		Title:     res.Title,
		Checksum:  hex.EncodeToString(sum[:]),
		Topics:    topics(res.Frontmatter),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertNote(row, res.Body, References(path, string(content)))
}

// References extracts every local reference in content, keyed by the
// normalized target name.
func References(doc, content string) []models.Reference {
	var out []models.Reference
	for i, line := range strings.Split(content, "\n") {
		for _, e := range parser.Embeds(line) {
			if e.IsExternal() {
				continue
			}
			out = append(out, models.Reference{
				Document: doc,
				Line:     i + 1,
				Text:     strings.TrimSuffix(line, "\r"),
				Target:   e.Name(),
				Kind:     e.Kind,
			})
		}
	}
	return out
}

func topics(fm map[string]interface{}) []string {
	raw := parser.Strings(fm, "topics")
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSuffix(strings.TrimPrefix(t, "[["), "]]")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
