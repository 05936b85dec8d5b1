package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/inkwell/internal/apperr"
)

func TestDiskAttachments_MoveFromVault(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("Drafts/pic.png", []byte("png"))
	a := NewDiskAttachments(s, "Attachments")

	if !a.Reserve("健身计划-pic.png") {
		t.Fatal("reserve should succeed on empty namespace")
	}
	if a.Reserve("健身计划-pic.png") {
		t.Error("second reserve of the same name should fail")
	}
	if err := a.Move("Drafts/pic.png", "健身计划-pic.png"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if s.Exists("Drafts/pic.png") {
		t.Error("source should be gone")
	}
	names, _ := a.List()
	if len(names) != 1 || names[0] != "健身计划-pic.png" {
		t.Errorf("List = %v", names)
	}
}

func TestDiskAttachments_MoveExternal(t *testing.T) {
	s := tempVault(t)
	ext := filepath.Join(t.TempDir(), "outside.jpg")
	if err := os.WriteFile(ext, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := NewDiskAttachments(s, "Attachments")
	if err := a.Move(ext, "x-outside.jpg"); err != nil {
		t.Fatalf("Move external: %v", err)
	}
	if !a.Exists("x-outside.jpg") {
		t.Error("moved attachment missing")
	}
}

func TestDiskAttachments_MoveConflict(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("Attachments/taken.png", []byte("1"))
	_ = s.Write("Drafts/other.png", []byte("2"))
	a := NewDiskAttachments(s, "Attachments")
	err := a.Move("Drafts/other.png", "taken.png")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestDiskAttachments_RejectsPathNames(t *testing.T) {
	s := tempVault(t)
	a := NewDiskAttachments(s, "Attachments")
	for _, n := range []string{"", "../x.png", "sub/x.png"} {
		if err := a.Delete(n); err == nil {
			t.Errorf("Delete(%q) should fail", n)
		}
	}
}

func TestMemAttachments_ReserveRelease(t *testing.T) {
	m := NewMemAttachments("Attachments", "a.png")
	if m.Reserve("a.png") {
		t.Error("stored name must not be reservable")
	}
	if !m.Reserve("b.png") || !m.Exists("b.png") {
		t.Error("reserved name should exist")
	}
	m.Release()
	if m.Exists("b.png") {
		t.Error("release should drop reservations")
	}
	if err := m.Rename("a.png", "c.png"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	names, _ := m.List()
	if len(names) != 1 || names[0] != "c.png" {
		t.Errorf("List = %v", names)
	}
}

func TestDiskAttachments_Unreserve(t *testing.T) {
	a := NewDiskAttachments(tempVault(t), "Attachments")
	a.Reserve("x.png")
	a.Reserve("y.png")
	a.Unreserve("x.png")
	if a.Exists("x.png") || !a.Exists("y.png") {
		t.Errorf("x reserved = %v, y reserved = %v", a.Exists("x.png"), a.Exists("y.png"))
	}
	a.Unreserve("never.png")
}
