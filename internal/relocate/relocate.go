// Package relocate plans the move of a draft's local attachments into the
// shared attachments directory and rewrites the draft body to match. It never
// moves files itself.
package relocate

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/naming"
	"github.com/starford/inkwell/internal/parser"
	"github.com/starford/inkwell/internal/storage"
)

// Locator answers existence questions for vault-relative or absolute paths.
type Locator interface {
	Exists(path string) bool
}

// Result is the rewritten body and the deferred moves it depends on.
type Result struct {
	Body    string        `json:"-"`
	Moves   []models.Move `json:"moves"`
	Missing []string      `json:"missing,omitempty"`
}

// Relocator resolves attachment references against the vault.
type Relocator struct {
	files Locator
	atts  storage.Attachments
}

// New creates a Relocator. Destination names are reserved in atts so later
// drafts of the same batch cannot claim them.
func New(files Locator, atts storage.Attachments) *Relocator {
	return &Relocator{files: files, atts: atts}
}

// Relocate rewrites every resolvable local attachment reference in body to
// point at its canonical name under the attachments directory. docPath is the
// vault-relative path of the document holding body.
func (r *Relocator) Relocate(body, docPath, title string) Result {
	var res Result
	planned := make(map[string]string) // source -> new name
	missing := make(map[string]struct{})
	prefix := sanitizedPrefix(title)

	res.Body = parser.ReplaceEmbeds(body, func(e parser.Embed) (string, bool) {
		if e.Kind == models.KindLink || e.IsExternal() || !attachmentLike(e.Name()) {
			return "", false
		}
		src, ok := r.resolve(e, docPath)
		if !ok {
			if _, seen := missing[e.Target]; !seen {
				missing[e.Target] = struct{}{}
				res.Missing = append(res.Missing, e.Target)
			}
			return "", false
		}
		if src == "" {
			return "", false
		}
		name, ok := planned[src]
		if !ok {
			name = r.claim(prefix, path.Base(filepath.ToSlash(src)))
			planned[src] = name
			res.Moves = append(res.Moves, models.Move{From: src, Name: name})
		}
		if e.Kind == models.KindImage {
			return r.atts.Dir() + "/" + name, true
		}
		return name, true
	})
	return res
}

// resolve returns the source path of e. An empty source with ok means the
// file already lives in the attachments directory.
func (r *Relocator) resolve(e parser.Embed, docPath string) (string, bool) {
	target := e.Dir() + e.Name()
	if filepath.IsAbs(filepath.FromSlash(target)) {
		if r.files.Exists(target) {
			return target, true
		}
		return "", false
	}

	candidates := []string{
		path.Join(path.Dir(docPath), target),
		path.Clean(target),
	}
	for _, c := range candidates {
		if strings.HasPrefix(c, "../") || c == ".." {
			continue
		}
		if !r.files.Exists(c) {
			continue
		}
		if path.Dir(c) == r.atts.Dir() {
			return "", true
		}
		return c, true
	}
	if e.Dir() == "" && r.files.Exists(path.Join(r.atts.Dir(), e.Name())) {
		return "", true
	}
	return "", false
}

func (r *Relocator) claim(prefix, base string) string {
	ext := path.Ext(base)
	candidate := prefix + naming.Sanitize(strings.TrimSuffix(base, ext)) + ext
	name := naming.Unique(candidate, r.atts.Exists)
	r.atts.Reserve(name)
	return name
}

func sanitizedPrefix(title string) string {
	t := naming.Sanitize(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	return t + "-"
}

// attachmentLike skips note transclusions: targets without an extension or
// with a document extension.
func attachmentLike(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case "", ".md", ".txt":
		return false
	}
	return true
}
