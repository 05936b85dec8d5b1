// Package refs finds and rewrites attachment references across the vault's
// document directories.
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

// DocumentExts are the extensions scanned for references.
var DocumentExts = []string{".md", ".txt"}

// ScanResult holds every match of a scan plus the documents that could not be
// read. A read failure never hides matches in other documents.
type ScanResult struct {
	Refs   []models.Reference
	Errors []error
}

// Documents returns the distinct documents in Refs, in first-match order.
func (r ScanResult) Documents() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ref := range r.Refs {
		if _, ok := seen[ref.Document]; ok {
			continue
		}
		seen[ref.Document] = struct{}{}
		out = append(out, ref.Document)
	}
	return out
}

// Scanner searches document directories line by line.
type Scanner struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewScanner creates a Scanner over store.
func NewScanner(store storage.Provider, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{store: store, logger: logger}
}

// Scan returns every line in dirs that embeds or links exactly target.
func (s *Scanner) Scan(target string, dirs []string) ScanResult {
	var res ScanResult
	s.walk(dirs, &res, func(doc string, n int, line string) {
		for _, e := range parser.Embeds(line) {
			if e.IsExternal() || e.Name() != target {
				continue
			}
			res.Refs = append(res.Refs, models.Reference{
				Document: doc,
				Line:     n,
				Text:     line,
				Target:   e.Target,
				Kind:     e.Kind,
			})
		}
	})
	return res
}

// Referenced returns the base name of every local target referenced in dirs.
func (s *Scanner) Referenced(dirs []string) (map[string]struct{}, []error) {
	var res ScanResult
	names := make(map[string]struct{})
	s.walk(dirs, &res, func(_ string, _ int, line string) {
		for _, e := range parser.Embeds(line) {
			if e.IsExternal() {
				continue
			}
			if n := e.Name(); n != "" && n != "." {
				names[n] = struct{}{}
			}
		}
	})
	return names, res.Errors
}

func (s *Scanner) walk(dirs []string, res *ScanResult, visit func(doc string, n int, line string)) {
	for _, dir := range dirs {
		metas, err := s.store.List(dir, DocumentExts...)
		if err != nil {
			s.fail(res, dir, err)
			continue
		}
		for _, m := range metas {
			data, err := s.store.Read(m.Path)
			if err != nil {
				s.fail(res, m.Path, err)
				continue
			}
			for i, line := range strings.Split(string(data), "\n") {
				visit(m.Path, i+1, strings.TrimSuffix(line, "\r"))
			}
		}
	}
}

func (s *Scanner) fail(res *ScanResult, path string, err error) {
	s.logger.Warn("refs: scan skipped", slog.String("path", path), slog.String("error", err.Error()))
	res.Errors = append(res.Errors, fmt.Errorf("refs: scan %s: %w: %w", path, apperr.ErrUnreadable, err))
}
