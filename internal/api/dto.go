package api

import (
	"errors"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/index"
	"github.com/starford/inkwell/internal/models"
)

// IngestRequest is the body of POST /api/ingest. An empty Draft ingests the
// whole drafts directory.
type IngestRequest struct {
	Draft  string `json:"draft,omitempty" example:"Drafts/plan.md"`
	DryRun bool   `json:"dry_run"`
	Keep   bool   `json:"keep"`
}

// Validate checks that Draft, when set, is a clean vault-relative path.
func (r IngestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Draft, validation.By(vaultRelative)),
	)
}

// FormatRequest is the body of POST /api/attachments/format.
type FormatRequest struct {
	DryRun bool `json:"dry_run"`
}

// ReferencesResponse lists the occurrences of one attachment name.
type ReferencesResponse struct {
	Name       string             `json:"name" example:"健身计划-pic.png" validate:"required"`
	References []models.Reference `json:"references" validate:"required"`
	Errors     []string           `json:"errors,omitempty"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	Embed    string `json:"embed" example:"![[image.png]]" validate:"required"`
}

func vaultRelative(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "/") || strings.Contains(s, `\`) || path.Clean(s) != s || strings.HasPrefix(s, "..") {
		return errors.New("must be a clean vault-relative path")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
