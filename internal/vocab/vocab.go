// Package vocab turns dictionary entries into vocabulary notes.
package vocab

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/dictionary"
	"github.com/starford/inkwell/internal/naming"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/template"
)

// Service creates word notes in the references directory.
type Service struct {
	lookup    dictionary.Lookup
	store     storage.Provider
	templates template.Provider
	dates     *dates.Service
	dir       string
}

// New creates a Service.
func New(lookup dictionary.Lookup, store storage.Provider, templates template.Provider, d *dates.Service, dir string) *Service {
	return &Service{lookup: lookup, store: store, templates: templates, dates: d, dir: dir}
}

// Create looks word up and writes its note, suffixing the path when a note of
// the same name exists. It returns the vault-relative note path.
func (s *Service) Create(ctx context.Context, word string) (string, error) {
	entry, err := s.lookup.Lookup(ctx, word)
	if err != nil {
		return "", err
	}
	skeleton, err := s.templates.Get(template.Word)
	if err != nil {
		return "", err
	}
	content := template.Render(skeleton, map[string]string{
		"title":       entry.Word,
		"date":        s.dates.Today(),
		"phonetic":    entry.Phonetic,
		"definitions": definitions(entry.Definitions),
		"examples":    bullets(entry.Examples),
		"synonyms":    links(entry.Synonyms),
	})

	notePath := naming.Unique(path.Join(s.dir, naming.SafeTitle(entry.Word)+".md"), s.store.Exists)
	if err := s.store.Write(notePath, []byte(content)); err != nil {
		return "", fmt.Errorf("vocab: write %s: %w", notePath, err)
	}
	return notePath, nil
}

func definitions(defs []dictionary.Definition) string {
	var b strings.Builder
	for i, d := range defs {
		fmt.Fprintf(&b, "%d. *%s* %s\n", i+1, d.PartOfSpeech, d.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func links(items []string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = "[[" + it + "]]"
	}
	return strings.Join(out, ", ")
}
