// Package orphan finds attachments that no document references.
package orphan

import (
	"fmt"
	"sort"

	"github.com/starford/inkwell/internal/storage"
)

// Referencer returns every attachment name referenced in dirs.
type Referencer interface {
	Referenced(dirs []string) (map[string]struct{}, []error)
}

// Report lists the orphans of one scan. Errors holds documents that could not
// be read; their references are unknown, so callers should not delete when
// Errors is non-empty.
type Report struct {
	Orphans []string `json:"orphans"`
	Errors  []string `json:"errors,omitempty"`
}

// DeleteReport lists what a deletion pass removed.
type DeleteReport struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed,omitempty"`
}

// Detector computes attachment names minus referenced names.
type Detector struct {
	atts storage.Attachments
	refs Referencer
}

// NewDetector creates a Detector.
func NewDetector(atts storage.Attachments, refs Referencer) *Detector {
	return &Detector{atts: atts, refs: refs}
}

// Find returns the sorted orphan set across dirs. It has no side effects.
func (d *Detector) Find(dirs []string) (Report, error) {
	names, err := d.atts.List()
	if err != nil {
		return Report{}, fmt.Errorf("orphan: list attachments: %w", err)
	}
	referenced, errs := d.refs.Referenced(dirs)

	rep := Report{Orphans: []string{}}
	for _, n := range names {
		if _, ok := referenced[n]; !ok {
			rep.Orphans = append(rep.Orphans, n)
		}
	}
	sort.Strings(rep.Orphans)
	for _, e := range errs {
		rep.Errors = append(rep.Errors, e.Error())
	}
	return rep, nil
}

// Delete removes orphans only when shouldDelete approves the whole list.
func (d *Detector) Delete(orphans []string, shouldDelete func([]string) bool) DeleteReport {
	var rep DeleteReport
	if len(orphans) == 0 || shouldDelete == nil || !shouldDelete(orphans) {
		return rep
	}
	for _, n := range orphans {
		if err := d.atts.Delete(n); err != nil {
			rep.Failed = append(rep.Failed, fmt.Sprintf("%s: %v", n, err))
			continue
		}
		rep.Deleted = append(rep.Deleted, n)
	}
	return rep
}
