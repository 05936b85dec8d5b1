package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// nameParam returns the decoded {name} URL parameter.
func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Ingest handles POST /api/ingest.
//
//	@Summary		Ingest one draft or the whole drafts directory
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestRequest	false	"Draft and run options"
//	@Success		200		{object}	ingest.Report
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	ingest.Report
//	@Security		BearerAuth
//	@Router			/ingest [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	report := h.svc.Ingest(r.Context(), req.Draft, ingest.Options{DryRun: req.DryRun, KeepSource: req.Keep})
	report.Results = nonNil(report.Results)
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, report)
}

// Format handles POST /api/attachments/format.
//
//	@Summary		Rename attachments with unstructured names
//	@Tags			attachments
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FormatRequest	false	"Run options"
//	@Success		200		{object}	attachfmt.Report
//	@Security		BearerAuth
//	@Router			/attachments/format [post]
func (h *Handler) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	report, err := h.svc.Format(r.Context(), req.DryRun)
	if err != nil {
		slog.Error("format failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	report.Items = nonNil(report.Items)
	writeJSON(w, http.StatusOK, report)
}

// References handles GET /api/references/{name}.
//
//	@Summary		Scan documents for references to an attachment
//	@Tags			references
//	@Produce		json
//	@Param			name	path		string	true	"Attachment name"
//	@Success		200		{object}	ReferencesResponse
//	@Security		BearerAuth
//	@Router			/references/{name} [get]
func (h *Handler) References(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	res := h.svc.References(r.Context(), name)
	resp := ReferencesResponse{Name: name, References: nonNil(res.Refs)}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// Backlinks handles GET /api/backlinks/{name}.
//
//	@Summary		Indexed references to an attachment or note
//	@Tags			references
//	@Produce		json
//	@Param			name	path		string	true	"Target name"
//	@Success		200		{object}	ReferencesResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{name} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	bl, err := h.svc.Backlinks(r.Context(), name)
	if err != nil {
		slog.Error("backlinks failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReferencesResponse{Name: name, References: nonNil(bl)})
}

// Orphans handles GET /api/orphans.
//
//	@Summary		List attachments no document references
//	@Tags			attachments
//	@Produce		json
//	@Success		200	{object}	orphan.Report
//	@Security		BearerAuth
//	@Router			/orphans [get]
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Orphans(r.Context())
	if err != nil {
		slog.Error("orphans failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across indexed notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingCollaborator) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("index disabled"))
			return
		}
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: nonNil(results)})
}
