package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/inkwell/internal/apperr"
)

// DiskAttachments implements Attachments over a directory of an FS vault.
type DiskAttachments struct {
	fs       *FS
	dir      string
	reserved map[string]struct{}
}

// NewDiskAttachments creates the attachment repository for dir (vault-relative).
func NewDiskAttachments(fs *FS, dir string) *DiskAttachments {
	return &DiskAttachments{fs: fs, dir: filepath.ToSlash(dir), reserved: make(map[string]struct{})}
}

var _ Attachments = (*DiskAttachments)(nil)

// Dir returns the vault-relative attachments directory.
func (a *DiskAttachments) Dir() string { return a.dir }

func (a *DiskAttachments) rel(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("storage: invalid attachment name: %q", name)
	}
	return path.Join(a.dir, name), nil
}

// Exists reports whether name is stored on disk or reserved.
func (a *DiskAttachments) Exists(name string) bool {
	if _, ok := a.reserved[name]; ok {
		return true
	}
	rel, err := a.rel(name)
	if err != nil {
		return false
	}
	return a.fs.Exists(rel)
}

// Reserve claims name for an upcoming move.
func (a *DiskAttachments) Reserve(name string) bool {
	if a.Exists(name) {
		return false
	}
	a.reserved[name] = struct{}{}
	return true
}

// Unreserve drops the reservation for name, if any.
func (a *DiskAttachments) Unreserve(name string) {
	delete(a.reserved, name)
}

// Release drops all outstanding reservations.
func (a *DiskAttachments) Release() {
	clear(a.reserved)
}

// Move relocates src into the attachments directory under name. A name that
// is reserved may be filled; a name already stored on disk is a conflict.
func (a *DiskAttachments) Move(src, name string) error {
	dst, err := a.rel(name)
	if err != nil {
		return err
	}
	if a.fs.Exists(dst) {
		return fmt.Errorf("storage: move %s: %s: %w", src, name, apperr.ErrConflict)
	}
	absDst, err := a.fs.safePath(dst)
	if err != nil {
		return err
	}
	absSrc := src
	if !filepath.IsAbs(src) {
		if absSrc, err = a.fs.safePath(src); err != nil {
			return err
		}
	}
	if _, err := os.Stat(absSrc); err != nil {
		return fmt.Errorf("storage: move %s: %w", src, apperr.ErrNotFound)
	}
	if err := moveFile(absSrc, absDst); err != nil {
		return err
	}
	delete(a.reserved, name)
	return nil
}

// Rename renames a stored attachment.
func (a *DiskAttachments) Rename(oldName, newName string) error {
	src, err := a.rel(oldName)
	if err != nil {
		return err
	}
	return a.Move(src, newName)
}

// Delete removes a stored attachment.
func (a *DiskAttachments) Delete(name string) error {
	rel, err := a.rel(name)
	if err != nil {
		return err
	}
	return a.fs.Delete(rel)
}

// List returns every stored attachment name, sorted.
func (a *DiskAttachments) List() ([]string, error) {
	metas, err := a.fs.List(a.dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, path.Base(m.Path))
	}
	sort.Strings(out)
	return out, nil
}

// MemAttachments is an in-memory Attachments used by tests and previews.
type MemAttachments struct {
	dir      string
	files    map[string][]byte
	reserved map[string]struct{}
	// Sources maps a Move source to its content; moves from unknown sources fail.
	Sources map[string][]byte
}

// NewMemAttachments creates an in-memory namespace holding the given names.
func NewMemAttachments(dir string, names ...string) *MemAttachments {
	m := &MemAttachments{
		dir:      dir,
		files:    make(map[string][]byte),
		reserved: make(map[string]struct{}),
		Sources:  make(map[string][]byte),
	}
	for _, n := range names {
		m.files[n] = nil
	}
	return m
}

var _ Attachments = (*MemAttachments)(nil)

func (m *MemAttachments) Dir() string { return m.dir }

func (m *MemAttachments) Exists(name string) bool {
	_, stored := m.files[name]
	_, reserved := m.reserved[name]
	return stored || reserved
}

func (m *MemAttachments) Reserve(name string) bool {
	if m.Exists(name) {
		return false
	}
	m.reserved[name] = struct{}{}
	return true
}

func (m *MemAttachments) Unreserve(name string) { delete(m.reserved, name) }

func (m *MemAttachments) Release() { clear(m.reserved) }

func (m *MemAttachments) Move(src, name string) error {
	if _, ok := m.files[name]; ok {
		return fmt.Errorf("storage: move %s: %s: %w", src, name, apperr.ErrConflict)
	}
	data, ok := m.Sources[src]
	if !ok {
		return fmt.Errorf("storage: move %s: %w", src, apperr.ErrNotFound)
	}
	delete(m.Sources, src)
	delete(m.reserved, name)
	m.files[name] = data
	return nil
}

func (m *MemAttachments) Rename(oldName, newName string) error {
	data, ok := m.files[oldName]
	if !ok {
		return fmt.Errorf("storage: rename %s: %w", oldName, apperr.ErrNotFound)
	}
	if _, ok := m.files[newName]; ok {
		return fmt.Errorf("storage: rename %s: %s: %w", oldName, newName, apperr.ErrConflict)
	}
	delete(m.files, oldName)
	delete(m.reserved, newName)
	m.files[newName] = data
	return nil
}

func (m *MemAttachments) Delete(name string) error {
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
	}
	delete(m.files, name)
	return nil
}

func (m *MemAttachments) List() ([]string, error) {
	out := make([]string, 0, len(m.files))
	for n := range m.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
