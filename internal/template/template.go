// Package template loads named note skeletons and substitutes {{token}}
// placeholders.
package template

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/starford/inkwell/internal/apperr"
)

// Built-in template names.
const (
	Note  = "note"
	Daily = "daily"
	Word  = "word"
)

// Provider returns a named skeleton. Missing templates wrap
// apperr.ErrMissingCollaborator.
type Provider interface {
	Get(name string) (string, error)
}

// Reader is the subset of the vault store a DirProvider needs.
type Reader interface {
	Read(path string) ([]byte, error)
	Exists(path string) bool
}

// DirProvider serves <dir>/<name>.md from the vault.
type DirProvider struct {
	store Reader
	dir   string
}

// NewDirProvider creates a provider over the vault's templates directory.
func NewDirProvider(store Reader, dir string) *DirProvider {
	return &DirProvider{store: store, dir: dir}
}

// Get reads the template file.
func (p *DirProvider) Get(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("template: invalid name %q", name)
	}
	rel := path.Join(p.dir, name+".md")
	if !p.store.Exists(rel) {
		return "", fmt.Errorf("template: %s: %w", rel, apperr.ErrMissingCollaborator)
	}
	data, err := p.store.Read(rel)
	if err != nil {
		return "", fmt.Errorf("template: read %s: %w", rel, err)
	}
	return string(data), nil
}

// builtin skeletons used when the vault has none of its own.
var builtin = map[string]string{
	Note: "{{frontmatter}}\n{{body}}\n\n{{backlinks}}\n",
	Daily: `---
created: {{date}}
week: "[[{{week}}]]"
---
# {{date}}

Yesterday: [[{{yesterday}}]]

## Plan

## Log

![[Backlinks]]
`,
	Word: `---
created: {{date}}
created_at: "[[{{date}}]]"
topics:
  - "[[vocabulary]]"
---
# {{title}}

{{phonetic}}

## Definitions

{{definitions}}

## Examples

{{examples}}

## Synonyms

{{synonyms}}

![[Backlinks]]
`,
}

// Builtin serves the compiled-in skeletons.
type Builtin struct{}

// Get returns the built-in skeleton for name.
func (Builtin) Get(name string) (string, error) {
	if s, ok := builtin[name]; ok {
		return s, nil
	}
	return "", fmt.Errorf("template: builtin %q: %w", name, apperr.ErrMissingCollaborator)
}

// Chain tries each provider in order and returns the first hit.
type Chain []Provider

// Get returns the first provider's skeleton that is not missing.
func (c Chain) Get(name string) (string, error) {
	err := fmt.Errorf("template: %q: %w", name, apperr.ErrMissingCollaborator)
	for _, p := range c {
		s, perr := p.Get(name)
		if perr == nil {
			return s, nil
		}
		if !errors.Is(perr, apperr.ErrMissingCollaborator) {
			return "", perr
		}
		err = perr
	}
	return "", err
}

// Render substitutes {{key}} for every entry of vars. Unknown tokens are left
// as-is and \{{ escapes a literal brace pair.
func Render(skeleton string, vars map[string]string) string {
	const escOpen, escClose = "\x00esc-open\x00", "\x00esc-close\x00"
	s := strings.ReplaceAll(skeleton, `\{{`, escOpen)
	s = strings.ReplaceAll(s, `\}}`, escClose)

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	s = strings.NewReplacer(pairs...).Replace(s)

	s = strings.ReplaceAll(s, escOpen, "{{")
	return strings.ReplaceAll(s, escClose, "}}")
}
