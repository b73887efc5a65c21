// Package report aggregates validation results into the run report and
// renders it for humans (styled text) and machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/proplint/validate"
)

// Report is the aggregate outcome of one validation run. Results are held
// in deterministic order: by proposal id, then by path for documents whose
// id could not be determined.
type Report struct {
	RunID       string            `json:"run_id"`
	Root        string            `json:"root"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Checked     int               `json:"checked"`
	Failed      int               `json:"failed"`
	Warnings    int               `json:"warnings"`
	Results     []validate.Result `json:"results"`
}

// New assembles a report from ordered results. startedAt is when the run
// began; the completion timestamp is taken here.
func New(root string, startedAt time.Time, results []validate.Result) *Report {
	r := &Report{
		RunID:       uuid.New().String(),
		Root:        root,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Checked:     len(results),
		Results:     results,
	}
	for i := range results {
		if !results[i].Passed() {
			r.Failed++
		}
		r.Warnings += results[i].Warnings()
	}
	return r
}

// Passed reports whether every document passed. It decides the process
// exit status: CI gates on it.
func (r *Report) Passed() bool {
	return r.Failed == 0
}

// WriteJSON renders the machine-readable report.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
