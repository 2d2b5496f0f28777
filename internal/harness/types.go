package harness

import (
	"fmt"
	"io"
)

// Status is the outcome of verifying one file.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMismatch Status = "mismatch"
	StatusError    Status = "error"
)

// errMismatch is the recorded error of a mismatching file.
const errMismatch = "decompiled source differs"

// FileResult is the outcome for one source file or case file.
type FileResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`

	// Diff is a unified diff from the expected to the decompiled source.
	// Set only for mismatches.
	Diff string `json:"diff,omitempty"`

	// Error describes why the file failed.
	// Empty if Status is StatusOK.
	Error string `json:"error,omitempty"`

	StoryHash  string `json:"story_hash,omitempty"`
	SourceHash string `json:"source_hash,omitempty"`
}

// OK reports whether the decompiled source matched.
func (r FileResult) OK() bool { return r.Status == StatusOK }

// Report is the outcome of verifying a directory.
type Report struct {
	Directory string       `json:"directory"`
	RunID     string       `json:"run_id,omitempty"`
	Results   []FileResult `json:"results"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
}

// NewReport creates an empty report for dir.
func NewReport(dir string) *Report {
	return &Report{Directory: dir, Results: []FileResult{}}
}

// Add appends a file result and updates the totals.
func (r *Report) Add(res FileResult) {
	r.Results = append(r.Results, res)
	if res.OK() {
		r.Passed++
	} else {
		r.Failed++
	}
}

// OK reports whether every file matched.
func (r *Report) OK() bool { return r.Failed == 0 }

// WriteText writes one line per file: "OK name" for matches, or the diff
// followed by "ERR name: reason".
func (r *Report) WriteText(w io.Writer) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			fmt.Fprintf(w, "OK %s\n", res.Name)
		case StatusMismatch:
			fmt.Fprint(w, res.Diff)
			fmt.Fprintf(w, "ERR %s: %s\n", res.Name, res.Error)
		default:
			fmt.Fprintf(w, "ERR %s: %s\n", res.Name, res.Error)
		}
	}
}
