package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/testutil"
)

func testConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Vault.Root = t.TempDir()
	testutil.WriteFiles(t, cfg.Vault.Root, files)
	return cfg
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestOpenVault_SyncAndBacklinks(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"References/a.md":      "# A\n\n![[x.png]]\n",
		"Attachments/x.png":    "x",
		"Attachments/lone.png": "l",
	})
	v, err := OpenVault(cfg, discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if v.DB == nil {
		t.Fatal("index not opened")
	}
	if err := v.Sync(discard()); err != nil {
		t.Fatal(err)
	}
	bl, err := v.Notes.Backlinks(context.Background(), "x.png")
	if err != nil || len(bl) != 1 || bl[0].Document != "References/a.md" {
		t.Errorf("backlinks = %+v, %v", bl, err)
	}

	rep, err := v.Notes.Orphans(context.Background())
	if err != nil || len(rep.Orphans) != 1 || rep.Orphans[0] != "lone.png" {
		t.Errorf("orphans = %+v, %v", rep, err)
	}
}

func TestOpenVault_DailyUsesVaultTemplate(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"Templates/daily.md": "# {{date}} custom\n",
	})
	v, err := OpenVault(cfg, discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	notePath, created, err := v.Daily.Create(time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC))
	if err != nil || !created || notePath != "Daily/2026-10-14.md" {
		t.Fatalf("Create = %q, %v, %v", notePath, created, err)
	}
	if got := testutil.ReadFile(t, cfg.Vault.Root, notePath); !strings.Contains(got, "2026-10-14 custom") {
		t.Errorf("daily note = %q", got)
	}
}

func TestOpenVault_WithoutIndex(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.SQLite.Path = ""
	v, err := OpenVault(cfg, discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if v.DB != nil {
		t.Error("index opened with empty sqlite.path")
	}
	if err := v.Sync(discard()); err != nil {
		t.Errorf("Sync without index = %v", err)
	}
	if _, err := v.Notes.Search(context.Background(), "x", 10); !errors.Is(err, apperr.ErrMissingCollaborator) {
		t.Errorf("Search err = %v", err)
	}
}

func TestOpenVault_TemplateReferenceKeepsAttachment(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"Templates/note.md":    "# {{title}}\n\n![[logo.png]]\n",
		"Attachments/logo.png": "l",
		"Attachments/lone.png": "x",
	})
	v, err := OpenVault(cfg, discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	_, del, err := v.Notes.DeleteOrphans(context.Background(), func([]string) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if len(del.Deleted) != 1 || del.Deleted[0] != "lone.png" {
		t.Errorf("deleted = %+v", del)
	}
	if _, err := os.Stat(filepath.Join(cfg.Vault.Root, "Attachments", "logo.png")); err != nil {
		t.Error("attachment referenced from a template was deleted")
	}
}
