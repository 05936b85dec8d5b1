package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/naming"
	"github.com/starford/inkwell/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// AttachmentHandler serves and accepts files of the flat attachments directory.
type AttachmentHandler struct {
	vaultRoot string
	store     storage.Provider
	atts      storage.Attachments
}

// NewAttachmentHandler creates a handler for the attachments of the vault at
// vaultRoot.
func NewAttachmentHandler(vaultRoot string, store storage.Provider, atts storage.Attachments) *AttachmentHandler {
	return &AttachmentHandler{vaultRoot: vaultRoot, store: store, atts: atts}
}

func (h *AttachmentHandler) attachPath() string {
	return filepath.Join(h.vaultRoot, filepath.FromSlash(h.atts.Dir()))
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the attachments dir.
func (h *AttachmentHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return filepath.Join(h.attachPath(), cleaned), nil
}

// ServeFile handles GET /attachments/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if info, statErr := os.Stat(abs); statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/attachments (multipart/form-data, field "file").
// The stored name is sanitized and suffixed on clash, never overwritten.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if _, err := h.safeName(header.Filename); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	name := naming.Unique(naming.Sanitize(header.Filename), h.atts.Exists)
	if err := h.store.Write(path.Join(h.atts.Dir(), name), data); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		Embed:    "![[" + name + "]]",
	})
}
