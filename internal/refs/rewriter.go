package refs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/parser"
	"github.com/starford/inkwell/internal/storage"
)

// DocumentResult is the outcome of rewriting one document.
type DocumentResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Err     error  `json:"-"`
}

// RewriteReport summarizes a rename across documents.
type RewriteReport struct {
	Old       string           `json:"old"`
	New       string           `json:"new"`
	Documents []DocumentResult `json:"documents"`
}

// Updated returns the number of documents whose content changed.
func (r RewriteReport) Updated() int {
	n := 0
	for _, d := range r.Documents {
		if d.Changed {
			n++
		}
	}
	return n
}

// Stale reports that no document needed rewriting: the references were
// already fixed or never existed. It is not a failure.
func (r RewriteReport) Stale() bool { return r.Updated() == 0 }

// Err returns the first per-document error, if any.
func (r RewriteReport) Err() error {
	for _, d := range r.Documents {
		if d.Err != nil {
			return d.Err
		}
	}
	return nil
}

// Rewriter substitutes attachment names inside documents.
type Rewriter struct {
	store  storage.Provider
	logger *slog.Logger

	// DryRun computes the report without writing.
	DryRun bool
}

// NewRewriter creates a Rewriter over store.
func NewRewriter(store storage.Provider, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{store: store, logger: logger}
}

// Rewrite replaces oldName with newName in every document named by refs.
// Each distinct document is read and written at most once.
func (w *Rewriter) Rewrite(oldName, newName string, refs []models.Reference) RewriteReport {
	report := RewriteReport{Old: oldName, New: newName}
	for _, doc := range (ScanResult{Refs: refs}).Documents() {
		res := DocumentResult{Path: doc}
		data, err := w.store.Read(doc)
		if err != nil {
			res.Err = fmt.Errorf("refs: rewrite %s: %w: %w", doc, apperr.ErrUnreadable, err)
			report.Documents = append(report.Documents, res)
			continue
		}
		before := string(data)
		after := Replace(before, oldName, newName)
		res.Changed = after != before
		if res.Changed && !w.DryRun {
			if err := w.store.Write(doc, []byte(after)); err != nil {
				res.Changed = false
				res.Err = fmt.Errorf("refs: rewrite %s: %w: %w", doc, apperr.ErrUnwritable, err)
			}
		}
		if res.Err != nil {
			w.logger.Warn("refs: rewrite failed", slog.String("path", doc), slog.String("error", res.Err.Error()))
		}
		report.Documents = append(report.Documents, res)
	}
	return report
}

// Replace rewrites every embed or link naming oldName so it names newName.
// Directory prefixes, aliases, alt text and #subpaths are kept.
func Replace(content, oldName, newName string) string {
	return parser.ReplaceEmbeds(content, func(e parser.Embed) (string, bool) {
		if e.IsExternal() || e.Name() != oldName {
			return "", false
		}
		return Retarget(e, newName), true
	})
}

// Retarget returns e's target with its base name replaced by name.
func Retarget(e parser.Embed, name string) string {
	t := e.Dir() + name
	if e.Kind != models.KindImage {
		if i := strings.Index(e.Target, "#"); i >= 0 {
			t += e.Target[i:]
		}
	}
	return t
}
