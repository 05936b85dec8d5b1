// Package noteservice coordinates the vault pipelines behind one facade shared
// by the CLI, the HTTP API and the MCP server.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/attachfmt"
	"github.com/starford/inkwell/internal/index"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/orphan"
	"github.com/starford/inkwell/internal/refs"
	"github.com/starford/inkwell/internal/storage"
)

// Service serializes mutating vault operations and keeps the optional index in
// step with them.
type Service struct {
	mu sync.Mutex

	store     storage.Provider
	atts      storage.Attachments
	ingest    *ingest.Service
	scanner   *refs.Scanner
	detector  *orphan.Detector
	formatter *attachfmt.Formatter
	dirs      []string
	db        index.NoteIndex
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIndex answers backlink queries from db and reindexes documents touched
// by formatting passes.
func WithIndex(db index.NoteIndex) Option { return func(s *Service) { s.db = db } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService creates the facade. dirs are the vault-relative document
// directories scanned for references.
func NewService(store storage.Provider, atts storage.Attachments, ing *ingest.Service, formatter *attachfmt.Formatter, dirs []string, opts ...Option) *Service {
	s := &Service{
		store:     store,
		atts:      atts,
		ingest:    ing,
		formatter: formatter,
		dirs:      dirs,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.scanner = refs.NewScanner(store, s.logger)
	s.detector = orphan.NewDetector(atts, s.scanner)
	return s
}

// Dirs returns the document directories.
func (s *Service) Dirs() []string { return s.dirs }

// Ingest runs the pipeline on one draft, or on every draft when draft is empty.
func (s *Service) Ingest(ctx context.Context, draft string, opts ingest.Options) ingest.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft == "" {
		return s.ingest.IngestAll(ctx, opts)
	}
	return s.ingest.IngestFile(ctx, draft, opts)
}

// References scans the document directories for name.
func (s *Service) References(_ context.Context, name string) refs.ScanResult {
	return s.scanner.Scan(name, s.dirs)
}

// Backlinks returns every indexed reference to name. Without an index it
// falls back to a live scan.
func (s *Service) Backlinks(ctx context.Context, name string) ([]models.Reference, error) {
	if s.db == nil {
		res := s.References(ctx, name)
		if len(res.Errors) > 0 {
			return res.Refs, fmt.Errorf("noteservice: backlinks %s: %w", name, res.Errors[0])
		}
		return res.Refs, nil
	}
	return s.db.Backlinks(name)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("noteservice: search: index: %w", apperr.ErrMissingCollaborator)
	}
	return s.db.Search(query, limit)
}

// Orphans lists attachments no document references.
func (s *Service) Orphans(_ context.Context) (orphan.Report, error) {
	return s.detector.Find(s.dirs)
}

// DeleteOrphans recomputes the orphan set and removes it once approve agrees.
// Nothing is deleted while any document is unreadable.
func (s *Service) DeleteOrphans(_ context.Context, approve func([]string) bool) (orphan.Report, orphan.DeleteReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, err := s.detector.Find(s.dirs)
	if err != nil {
		return rep, orphan.DeleteReport{}, err
	}
	if len(rep.Errors) > 0 {
		return rep, orphan.DeleteReport{}, fmt.Errorf("noteservice: delete orphans: %d documents: %w", len(rep.Errors), apperr.ErrUnreadable)
	}
	return rep, s.detector.Delete(rep.Orphans, approve), nil
}

// Format runs the attachment formatting pass and reindexes rewritten documents.
func (s *Service) Format(_ context.Context, dryRun bool) (attachfmt.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, err := s.formatter.Format(dryRun)
	if err != nil || dryRun {
		return rep, err
	}
	for _, it := range rep.Items {
		for _, d := range it.Documents {
			if d.Changed {
				s.reindex(d.Path)
			}
		}
	}
	return rep, nil
}

// IndexFile reads path and upserts it. Unreadable files are dropped from the
// index.
func (s *Service) IndexFile(path string) error {
	if s.db == nil {
		return nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return s.db.DeleteNote(path)
	}
	return s.db.IndexNote(path, data)
}

// RemoveFile drops path from the index.
func (s *Service) RemoveFile(path string) error {
	if s.db == nil {
		return nil
	}
	return s.db.DeleteNote(path)
}

func (s *Service) reindex(path string) {
	if err := s.IndexFile(path); err != nil {
		s.logger.Warn("noteservice: reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
