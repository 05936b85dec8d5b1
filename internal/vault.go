package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/inkwell/internal/attachfmt"
	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/dictionary"
	"github.com/starford/inkwell/internal/index"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/noteservice"
	"github.com/starford/inkwell/internal/periodic"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/template"
	"github.com/starford/inkwell/internal/vocab"
)

// Vault bundles every service built over one configured vault.
type Vault struct {
	Config    *Config
	Store     *storage.FS
	Atts      *storage.DiskAttachments
	DB        *index.DB // nil when sqlite.path is empty
	Dates     *dates.Service
	Templates template.Provider
	Ingest    *ingest.Service
	Formatter *attachfmt.Formatter
	Notes     *noteservice.Service
	Daily     *periodic.Daily
	Vocab     *vocab.Service
}

// Notifier receives pipeline events.
type Notifier interface {
	Publish(event string, data any)
}

// OpenVault builds the services for cfg. n may be nil.
func OpenVault(cfg *Config, logger *slog.Logger, n Notifier) (*Vault, error) {
	root, err := filepath.Abs(cfg.Vault.Root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root %s: %w", cfg.Vault.Root, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create root: %w", err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("vault: init storage: %w", err)
	}

	v := &Vault{
		Config: cfg,
		Store:  store,
		Atts:   storage.NewDiskAttachments(store, cfg.Vault.Attachments),
		Dates:  dates.New(nil),
		Templates: template.Chain{
			template.NewDirProvider(store, cfg.Vault.Templates),
			template.Builtin{},
		},
	}

	if cfg.SQLite.Path != "" {
		dsn := cfg.SQLite.Path
		if !filepath.IsAbs(dsn) {
			dsn = filepath.Join(root, dsn)
		}
		if v.DB, err = index.Open(dsn); err != nil {
			return nil, fmt.Errorf("vault: init index: %w", err)
		}
	}

	ingestOpts := []ingest.Option{ingest.WithLogger(logger)}
	if v.DB != nil {
		ingestOpts = append(ingestOpts, ingest.WithIndexer(v.DB))
	}
	if n != nil {
		ingestOpts = append(ingestOpts, ingest.WithNotifier(n))
	}
	v.Ingest = ingest.NewService(ingest.Config{
		Drafts:     cfg.Vault.Drafts,
		References: cfg.Vault.References,
		Template:   cfg.Ingest.Template,
		Extensions: cfg.Ingest.Extensions,
	}, store, v.Atts, v.Templates, v.Dates, ingestOpts...)

	dirs := cfg.Vault.DocumentDirs()
	v.Formatter = attachfmt.New(store, v.Atts, dirs, logger)
	if n != nil {
		v.Formatter.SetNotifier(n)
	}

	notesOpts := []noteservice.Option{noteservice.WithLogger(logger)}
	if v.DB != nil {
		notesOpts = append(notesOpts, noteservice.WithIndex(v.DB))
	}
	v.Notes = noteservice.NewService(store, v.Atts, v.Ingest, v.Formatter, dirs, notesOpts...)

	v.Daily = periodic.NewDaily(store, v.Templates, cfg.Vault.Daily)
	v.Vocab = vocab.New(dictionary.NewClient(cfg.Dictionary.BaseURL, cfg.Dictionary.Timeout), store, v.Templates, v.Dates, cfg.Vault.References)
	return v, nil
}

// Sync brings the index up to date with the document directories.
func (v *Vault) Sync(logger *slog.Logger) error {
	if v.DB == nil {
		return nil
	}
	return index.Sync(v.DB, v.Store, v.Config.Vault.DocumentDirs(), logger)
}

// Close releases the index.
func (v *Vault) Close() error {
	if v.DB == nil {
		return nil
	}
	return v.DB.Close()
}
