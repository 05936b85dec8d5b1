package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("# 健身计划\nWorld\n")
	if err := s.Write("References/note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("References/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestListIsFlatAndFiltered(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("Drafts/a.md", []byte("a"))
	_ = s.Write("Drafts/b.txt", []byte("b"))
	_ = s.Write("Drafts/c.png", []byte("c"))
	_ = s.Write("Drafts/sub/d.md", []byte("d"))

	items, err := s.List("Drafts", ".md", ".txt")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Path != "Drafts/a.md" || items[0].Checksum == "" {
		t.Errorf("first item = %+v", items[0])
	}

	all, _ := s.List("Drafts")
	if len(all) != 3 {
		t.Errorf("unfiltered len = %d, want 3", len(all))
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	s := tempVault(t)
	items, err := s.List("Nope")
	if err != nil || len(items) != 0 {
		t.Errorf("List missing dir = %v, %v", items, err)
	}
}

func TestMoveAndExists(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "sub/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !s.Exists("sub/new.md") || s.Exists("old.md") {
		t.Error("move did not relocate file")
	}
	if !s.Exists(filepath.Join(s.Root(), "sub", "new.md")) {
		t.Error("absolute path should be checked as-is")
	}
}

func TestRel(t *testing.T) {
	s := tempVault(t)
	rel, err := s.Rel(filepath.Join(s.Root(), "Drafts", "x.md"))
	if err != nil || rel != "Drafts/x.md" {
		t.Errorf("Rel = %q, %v", rel, err)
	}
	if _, err := s.Rel(filepath.Dir(s.Root())); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.md", []byte("original content"))
	if err := s.Write("atomic.md", []byte("updated content")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".inkwell-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "inkwell-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
