// Package apperr holds the sentinel errors shared across the pipeline.
package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrUnreadable = errors.New("unreadable")
	ErrUnwritable = errors.New("unwritable")
	ErrConflict   = errors.New("conflict")

	// ErrAmbiguousContext means no naming heuristic matched. Callers recover by
	// falling back to an identity-derived name or by skipping the rename.
	ErrAmbiguousContext = errors.New("ambiguous context")

	// ErrMissingCollaborator is the only condition that halts a draft outright,
	// e.g. the configured note template does not exist.
	ErrMissingCollaborator = errors.New("missing collaborator")
)
