// Package models defines the domain types shared by the ingestion pipeline.
package models

import "time"

// Draft is a raw text file waiting to be ingested. It is read once and never
// mutated in place.
type Draft struct {
	Path    string // vault-relative path
	Name    string // file stem, fallback title
	Content []byte
}

// Context is the heuristic title/keyword set derived from a document. It is
// used to tag notes and to name attachments, then discarded.
type Context struct {
	Title      string   `json:"title"`
	Topics     []string `json:"topics"`
	Keywords   []string `json:"keywords"`
	Aliases    []string `json:"aliases,omitempty"`
	Descriptor string   `json:"descriptor,omitempty"`
}

// Reference kinds.
const (
	KindEmbed      = "embed"       // ![[name]]
	KindEmbedAlias = "embed-alias" // ![[name|alias]]
	KindLink       = "link"        // [[name]]
	KindImage      = "image"       // ![alt](path)
)

// Reference is one textual occurrence of an attachment name inside a document.
type Reference struct {
	Document string `json:"document"`
	Line     int    `json:"line"` // 1-based
	Text     string `json:"text"`
	Target   string `json:"target"`
	Kind     string `json:"kind"`
}

// Move is a deferred attachment relocation. From is vault-relative, or an
// absolute path for attachments living outside the vault.
type Move struct {
	From string `json:"from"`
	Name string `json:"name"` // destination name inside the attachments directory
}

// FileMeta is a lightweight listing entry.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
