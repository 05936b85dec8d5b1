// Package attachfmt renames poorly named stored attachments after the
// documents that reference them, keeping every reference consistent.
package attachfmt

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/inkwell/internal/extract"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/naming"
	"github.com/starford/inkwell/internal/refs"
	"github.com/starford/inkwell/internal/storage"
)

// EventRenamed is published after each committed rename.
const EventRenamed = "attachment.renamed"

// Item states.
const (
	StateRenamed = "renamed"
	StatePlanned = "planned"
	StateSkipped = "skipped"
	StateFailed  = "failed"
)

// Notifier publishes rename events.
type Notifier interface {
	Publish(event string, data any)
}

// Item is the outcome for one attachment.
type Item struct {
	Name      string                `json:"name"`
	NewName   string                `json:"new_name,omitempty"`
	State     string                `json:"state"`
	Reason    string                `json:"reason,omitempty"`
	Source    string                `json:"source,omitempty"` // document the name was derived from
	Documents []refs.DocumentResult `json:"documents,omitempty"`
}

// Report is the outcome of a formatting pass.
type Report struct {
	DryRun bool   `json:"dry_run"`
	Items  []Item `json:"items"`
}

// OK reports whether no item failed.
func (r Report) OK() bool {
	for _, it := range r.Items {
		if it.State == StateFailed {
			return false
		}
	}
	return true
}

// Formatter runs the formatting pass over one vault.
type Formatter struct {
	store    storage.Provider
	atts     storage.Attachments
	scanner  *refs.Scanner
	dirs     []string
	logger   *slog.Logger
	notifier Notifier
}

// New creates a Formatter scanning dirs for references.
func New(store storage.Provider, atts storage.Attachments, dirs []string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		store:   store,
		atts:    atts,
		scanner: refs.NewScanner(store, logger),
		dirs:    dirs,
		logger:  logger,
	}
}

// SetNotifier publishes an event for every committed rename.
func (f *Formatter) SetNotifier(n Notifier) { f.notifier = n }

// Format renames every attachment whose name fails naming.IsValidFilename.
// With dryRun the plan is reported and nothing is written.
func (f *Formatter) Format(dryRun bool) (Report, error) {
	names, err := f.atts.List()
	if err != nil {
		return Report{}, fmt.Errorf("attachfmt: list attachments: %w", err)
	}
	defer f.atts.Release()

	rep := Report{DryRun: dryRun}
	synth := naming.NewSynthesizer(f.atts)
	rw := refs.NewRewriter(f.store, f.logger)
	rw.DryRun = dryRun

	for _, name := range names {
		if naming.IsValidFilename(name) {
			continue
		}
		it := f.formatOne(name, synth, rw, dryRun)
		f.logger.Info("attachfmt: "+it.State,
			slog.String("name", name),
			slog.String("new_name", it.NewName),
			slog.String("reason", it.Reason))
		rep.Items = append(rep.Items, it)
	}
	return rep, nil
}

func (f *Formatter) formatOne(name string, synth *naming.Synthesizer, rw *refs.Rewriter, dryRun bool) Item {
	it := Item{Name: name, State: StateSkipped}

	scan := f.scanner.Scan(name, f.dirs)
	if len(scan.Errors) > 0 {
		it.Reason = fmt.Sprintf("scan incomplete: %v", scan.Errors[0])
		return it
	}
	if len(scan.Refs) == 0 {
		it.Reason = "unreferenced"
		return it
	}

	for _, doc := range scan.Documents() {
		ctx, err := f.context(doc, scan.Refs)
		if err != nil {
			continue
		}
		candidate, err := synth.Name(name, ctx)
		if err != nil || candidate == name || !f.atts.Reserve(candidate) {
			continue
		}
		it.NewName, it.Source = candidate, doc
		break
	}
	if it.NewName == "" {
		it.Reason = "no usable context"
		return it
	}

	if dryRun {
		it.State = StatePlanned
		it.Documents = rw.Rewrite(name, it.NewName, scan.Refs).Documents
		return it
	}

	if err := f.atts.Rename(name, it.NewName); err != nil {
		it.State, it.Reason = StateFailed, err.Error()
		return it
	}
	report := rw.Rewrite(name, it.NewName, scan.Refs)
	it.Documents = report.Documents
	it.State = StateRenamed
	if err := report.Err(); err != nil {
		it.State, it.Reason = StateFailed, err.Error()
	}
	if f.notifier != nil {
		f.notifier.Publish(EventRenamed, it)
	}
	return it
}

// context extracts doc's Context with the descriptor taken from the lines
// around each reference inside doc.
func (f *Formatter) context(doc string, all []models.Reference) (models.Context, error) {
	data, err := f.store.Read(doc)
	if err != nil {
		return models.Context{}, err
	}
	text := string(data)
	ctx := extract.Extract(text, naming.Stem(path.Base(doc)))

	lines := strings.Split(text, "\n")
	ctx.Descriptor = ""
	for _, r := range all {
		if r.Document != doc {
			continue
		}
		lo, hi := max(r.Line-2, 0), min(r.Line+1, len(lines))
		window := strings.ReplaceAll(strings.Join(lines[lo:hi], "\n"), r.Target, "")
		if d := extract.Descriptor(window); d != "" {
			ctx.Descriptor = d
			break
		}
	}
	return ctx, nil
}
