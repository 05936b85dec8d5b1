// Package periodic creates daily planning notes.
package periodic

import (
	"fmt"
	"path"
	"time"

	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/template"
)

// Daily creates notes under a vault directory from the "daily" template.
type Daily struct {
	store     storage.Provider
	templates template.Provider
	dir       string
}

// NewDaily returns a Daily writer for dir.
func NewDaily(store storage.Provider, templates template.Provider, dir string) *Daily {
	return &Daily{store: store, templates: templates, dir: dir}
}

// Create writes <dir>/<date>.md for day. An existing note is left alone and
// reported with created == false.
func (d *Daily) Create(day time.Time) (notePath string, created bool, err error) {
	svc := dates.Fixed(day)
	notePath = path.Join(d.dir, svc.Today()+".md")
	if d.store.Exists(notePath) {
		return notePath, false, nil
	}
	skeleton, err := d.templates.Get(template.Daily)
	if err != nil {
		return "", false, err
	}
	content := template.Render(skeleton, map[string]string{
		"date":      svc.Today(),
		"title":     svc.Today(),
		"yesterday": svc.Yesterday(),
		"week":      svc.ISOWeek(),
	})
	if err := d.store.Write(notePath, []byte(content)); err != nil {
		return "", false, fmt.Errorf("periodic: write %s: %w", notePath, err)
	}
	return notePath, true, nil
}
