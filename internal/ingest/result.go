package ingest

import "github.com/starford/inkwell/internal/models"

// State is the terminal state of a draft.
type State string

const (
	StateCommitted State = "committed"
	StatePreviewed State = "previewed"
	StateFailed    State = "failed"
)

// Stage names a step of the per-draft pipeline.
type Stage string

const (
	StageRead        Stage = "read"
	StageExtract     Stage = "extract"
	StageRelocate    Stage = "relocate"
	StageFrontmatter Stage = "frontmatter"
	StageAssemble    Stage = "assemble"
	StageResolve     Stage = "resolve"
	StageCommit      Stage = "commit"
)

// Result is the outcome of one draft.
type Result struct {
	Draft    string        `json:"draft"`
	State    State         `json:"state"`
	Stage    Stage         `json:"stage,omitempty"` // failing stage
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
	Title    string        `json:"title,omitempty"`
	Topics   []string      `json:"topics,omitempty"`
	Aliases  []string      `json:"aliases,omitempty"`
	Output   string        `json:"output,omitempty"`
	Moves    []models.Move `json:"moves,omitempty"`
	Missing  []string      `json:"missing,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Content  string        `json:"-"`
}

// Failed reports whether the draft ended in StateFailed.
func (r Result) Failed() bool { return r.State == StateFailed }

// Report is the outcome of a run.
type Report struct {
	RunID   string   `json:"run_id"`
	DryRun  bool     `json:"dry_run"`
	Results []Result `json:"results"`
}

// OK reports whether every draft succeeded.
func (r Report) OK() bool {
	return r.Count(StateFailed) == 0
}

// Count returns the number of results in state.
func (r Report) Count(state State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}
