// Package storage defines the vault file-system abstraction and the flat
// attachment namespace.
package storage

import "github.com/starford/inkwell/internal/models"

// Provider is the interface for vault document operations. Paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for the files directly inside dir whose extension
	// is one of exts (all files when exts is empty). Subdirectories are skipped.
	List(dir string, exts ...string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Exists reports whether path names a regular file. Absolute paths are
	// checked as-is so callers can resolve attachments living outside the vault.
	Exists(path string) bool
	// Rel maps an absolute path under the vault root to a vault-relative one.
	Rel(abs string) (string, error)
}

// Attachments is the repository for the single shared attachments directory.
// Names are bare filenames; no two attachments may share one.
type Attachments interface {
	// Dir returns the vault-relative attachments directory.
	Dir() string
	// Exists reports whether name is stored or reserved.
	Exists(name string) bool
	// Reserve claims name for an upcoming move. It returns false when the name
	// is already stored or reserved.
	Reserve(name string) bool
	// Unreserve drops the reservation for name without moving anything.
	Unreserve(name string)
	// Release drops every reservation that has not been filled by a move.
	Release()
	// Move relocates src (vault-relative or absolute) to name.
	Move(src, name string) error
	// Rename renames a stored attachment.
	Rename(oldName, newName string) error
	// Delete removes a stored attachment.
	Delete(name string) error
	// List returns every stored attachment name, sorted.
	List() ([]string, error)
}
