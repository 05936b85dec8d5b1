// Package ingest turns raw drafts into canonical notes: it extracts context,
// relocates attachments, synthesizes frontmatter, resolves the output path and
// commits, or previews the whole plan without touching disk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/extract"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/naming"
	"github.com/starford/inkwell/internal/parser"
	"github.com/starford/inkwell/internal/relocate"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/template"
)

// BacklinksLine is the placeholder appended to every note.
const BacklinksLine = "![[Backlinks]]"

// Event names published after each draft.
const (
	EventCommitted = "ingest.committed"
	EventFailed    = "ingest.failed"
)

// Indexer receives every committed note.
type Indexer interface {
	IndexNote(path string, content []byte) error
}

// Notifier publishes pipeline events.
type Notifier interface {
	Publish(event string, data any)
}

// Config names the vault directories and template the pipeline uses.
type Config struct {
	Drafts     string
	References string
	Template   string
	Extensions []string
}

// Options control a single run.
type Options struct {
	DryRun     bool
	KeepSource bool
}

// Service is the ingestion orchestrator. Runs are serialized.
type Service struct {
	mu sync.Mutex

	cfg       Config
	store     storage.Provider
	atts      storage.Attachments
	templates template.Provider
	dates     *dates.Service
	logger    *slog.Logger
	indexer   Indexer
	notifier  Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithIndexer indexes committed notes.
func WithIndexer(idx Indexer) Option { return func(s *Service) { s.indexer = idx } }

// WithNotifier publishes per-draft events.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService creates the orchestrator.
func NewService(cfg Config, store storage.Provider, atts storage.Attachments, templates template.Provider, d *dates.Service, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		store:     store,
		atts:      atts,
		templates: templates,
		dates:     d,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IngestFile processes one draft. A bare file name resolves inside the
// drafts directory; an absolute path must lie under the vault root.
func (s *Service) IngestFile(ctx context.Context, draftPath string, opts Options) Report {
	p, err := s.resolveDraft(draftPath)
	if err != nil {
		return failedRun(draftPath, opts, fmt.Errorf("ingest: resolve %s: %w: %w", draftPath, apperr.ErrNotFound, err))
	}
	return s.run(ctx, []string{p}, opts)
}

// IngestAll processes every draft in the drafts directory, one at a time.
// A missing or empty drafts directory is reported as a failure.
func (s *Service) IngestAll(ctx context.Context, opts Options) Report {
	metas, err := s.store.List(s.cfg.Drafts, s.cfg.Extensions...)
	if err != nil {
		return failedRun(s.cfg.Drafts, opts, fmt.Errorf("ingest: list %s: %w: %w", s.cfg.Drafts, apperr.ErrUnreadable, err))
	}
	if len(metas) == 0 {
		return failedRun(s.cfg.Drafts, opts, fmt.Errorf("ingest: no drafts in %s: %w", s.cfg.Drafts, apperr.ErrNotFound))
	}
	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return s.run(ctx, paths, opts)
}

func (s *Service) resolveDraft(p string) (string, error) {
	if filepath.IsAbs(p) {
		return s.store.Rel(p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if !strings.Contains(clean, "/") {
		return path.Join(s.cfg.Drafts, clean), nil
	}
	return clean, nil
}

func failedRun(draft string, opts Options, err error) Report {
	return Report{RunID: uuid.NewString(), DryRun: opts.DryRun, Results: []Result{{
		Draft:  draft,
		State:  StateFailed,
		Stage:  StageRead,
		Reason: err.Error(),
		Err:    err,
	}}}
}

// batch is the state shared by the drafts of one run.
type batch struct {
	opts  Options
	notes map[string]struct{} // output paths claimed this run
	gone  map[string]struct{} // attachment sources claimed this run
	log   *slog.Logger
}

func (s *Service) run(ctx context.Context, paths []string, opts Options) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{RunID: uuid.NewString(), DryRun: opts.DryRun}
	b := &batch{
		opts:  opts,
		notes: make(map[string]struct{}),
		gone:  make(map[string]struct{}),
		log:   s.logger.With(slog.String("run_id", report.RunID)),
	}
	defer s.atts.Release()

	b.log.Info("ingest: run started", slog.Int("drafts", len(paths)), slog.Bool("dry_run", opts.DryRun))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			b.log.Warn("ingest: run cancelled", slog.String("error", err.Error()))
			break
		}
		res := s.process(b, p)
		report.Results = append(report.Results, res)
		s.publish(res)
	}
	b.log.Info("ingest: run finished",
		slog.Int("committed", report.Count(StateCommitted)),
		slog.Int("previewed", report.Count(StatePreviewed)),
		slog.Int("failed", report.Count(StateFailed)))
	return report
}

// process drives one draft through every stage. Nothing is written before
// the commit stage.
func (s *Service) process(b *batch, draftPath string) Result {
	res := Result{Draft: draftPath}
	fail := func(stage Stage, err error) Result {
		s.unclaim(b, res)
		res.State, res.Stage, res.Err = StateFailed, stage, err
		res.Reason = err.Error()
		b.log.Warn("ingest: draft failed",
			slog.String("path", draftPath),
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()))
		return res
	}

	// read
	data, err := s.store.Read(draftPath)
	if err != nil {
		return fail(StageRead, fmt.Errorf("ingest: read %s: %w: %w", draftPath, apperr.ErrUnreadable, err))
	}
	draft := models.Draft{Path: draftPath, Name: naming.Stem(path.Base(draftPath)), Content: data}

	// extract
	c := extract.Extract(string(draft.Content), draft.Name)
	if c.Title == "" {
		c.Title = draft.Name
	}
	res.Title, res.Topics, res.Aliases = c.Title, c.Topics, c.Aliases

	// relocate
	body := extract.StripMarkers(parser.Parse(draft.Content).Body)
	rel := relocate.New(sourceLocator{s.store, b.gone}, s.atts).Relocate(body, draft.Path, c.Title)
	res.Moves, res.Missing = rel.Moves, rel.Missing

	// frontmatter
	fm, err := Frontmatter(s.dates.Today(), c.Topics, c.Aliases)
	if err != nil {
		return fail(StageFrontmatter, err)
	}

	// assemble
	skeleton, err := s.templates.Get(s.cfg.Template)
	if err != nil {
		if !errors.Is(err, apperr.ErrMissingCollaborator) {
			err = fmt.Errorf("%w: %w", apperr.ErrMissingCollaborator, err)
		}
		return fail(StageAssemble, err)
	}
	content := template.Render(skeleton, map[string]string{
		"frontmatter": fm,
		"body":        strings.Trim(rel.Body, "\n"),
		"backlinks":   BacklinksLine,
		"title":       c.Title,
		"date":        s.dates.Today(),
	})
	res.Content = content

	// resolve
	res.Output = naming.Unique(path.Join(s.cfg.References, naming.SafeTitle(c.Title)+".md"), func(p string) bool {
		_, claimed := b.notes[p]
		return claimed || s.store.Exists(p)
	})
	b.notes[res.Output] = struct{}{}
	for _, m := range res.Moves {
		b.gone[m.From] = struct{}{}
	}

	if b.opts.DryRun {
		res.State = StatePreviewed
		b.log.Info("ingest: draft previewed", slog.String("path", draftPath), slog.String("output", res.Output))
		return res
	}
	return s.commit(b, res, draft)
}

// unclaim returns what a failed draft claimed in the batch: its attachment
// names, its output path and its attachment sources.
func (s *Service) unclaim(b *batch, res Result) {
	for _, m := range res.Moves {
		s.atts.Unreserve(m.Name)
		delete(b.gone, m.From)
	}
	if res.Output != "" {
		delete(b.notes, res.Output)
	}
}

// commit writes the note, then moves attachments, then removes the source.
func (s *Service) commit(b *batch, res Result, draft models.Draft) Result {
	if err := s.store.Write(res.Output, []byte(res.Content)); err != nil {
		s.unclaim(b, res)
		res.State, res.Stage = StateFailed, StageCommit
		res.Err = fmt.Errorf("ingest: write %s: %w: %w", res.Output, apperr.ErrUnwritable, err)
		res.Reason = res.Err.Error()
		b.log.Warn("ingest: draft failed", slog.String("path", draft.Path), slog.String("stage", string(StageCommit)), slog.String("error", res.Reason))
		return res
	}
	res.State = StateCommitted

	for _, m := range res.Moves {
		if err := s.atts.Move(m.From, m.Name); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("move %s -> %s: %v", m.From, m.Name, err))
			b.log.Warn("ingest: attachment move failed", slog.String("from", m.From), slog.String("name", m.Name), slog.String("error", err.Error()))
		}
	}

	if !b.opts.KeepSource {
		if err := s.store.Delete(draft.Path); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("delete source %s: %v", draft.Path, err))
			b.log.Warn("ingest: source delete failed", slog.String("path", draft.Path), slog.String("error", err.Error()))
		}
	}

	if s.indexer != nil {
		if err := s.indexer.IndexNote(res.Output, []byte(res.Content)); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("index %s: %v", res.Output, err))
			b.log.Warn("ingest: index failed", slog.String("path", res.Output), slog.String("error", err.Error()))
		}
	}

	b.log.Info("ingest: draft committed",
		slog.String("path", draft.Path),
		slog.String("output", res.Output),
		slog.Int("topics", len(res.Topics)),
		slog.Int("attachments", len(res.Moves)))
	return res
}

func (s *Service) publish(res Result) {
	if s.notifier == nil {
		return
	}
	switch res.State {
	case StateCommitted:
		s.notifier.Publish(EventCommitted, res)
	case StateFailed:
		s.notifier.Publish(EventFailed, res)
	}
}

// sourceLocator hides attachment sources already claimed by an earlier draft
// of the batch, so a preview sees what a real run would.
type sourceLocator struct {
	store storage.Provider
	gone  map[string]struct{}
}

func (l sourceLocator) Exists(p string) bool {
	if _, ok := l.gone[p]; ok {
		return false
	}
	return l.store.Exists(p)
}
