package exec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// Summary counts item outcomes of one session
type Summary struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Failed    int `json:"failed" yaml:"failed"`
	Escalated int `json:"escalated" yaml:"escalated"`
	Blocked   int `json:"blocked" yaml:"blocked"`
	// SuccessRate is completed/total as a percentage, 0 for an empty session
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
}

// Report is the outcome of one scheduling session
type Report struct {
	SessionID  string    `json:"session_id" yaml:"session_id"`
	StartTime  time.Time `json:"start_time" yaml:"start_time"`
	EndTime    time.Time `json:"end_time" yaml:"end_time"`
	DurationMs int64     `json:"duration_ms" yaml:"duration_ms"`
	Cancelled  bool      `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Summary    Summary   `json:"summary" yaml:"summary"`
	// Results are in the order items became terminal: level by level
	Results []Result `json:"results" yaml:"results"`
}

// Aggregate builds a report from per-item results, keeping their order
func Aggregate(sessionID string, start, end time.Time, results []Result) *Report {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case plan.StatusCompleted:
			summary.Completed++
		case plan.StatusFailed:
			summary.Failed++
		case plan.StatusEscalated:
			summary.Escalated++
		case plan.StatusBlocked:
			summary.Blocked++
		}
	}
	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Completed) / float64(summary.Total) * 100
	}

	return &Report{
		SessionID:  sessionID,
		StartTime:  start,
		EndTime:    end,
		DurationMs: end.Sub(start).Milliseconds(),
		Summary:    summary,
		Results:    append([]Result{}, results...),
	}
}

// Result returns the result for id
func (r *Report) Result(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ItemID == id {
			return res, true
		}
	}
	return Result{}, false
}

// Outcome classifies the run as "success", "partial" or "cancelled"
func (r *Report) Outcome() string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case r.Summary.Completed == r.Summary.Total:
		return "success"
	default:
		return "partial"
	}
}

// Err returns a coded error describing the worst outcome, or nil if every item completed
func (r *Report) Err() error {
	s := r.Summary
	switch {
	case r.Cancelled:
		return errors.New(errors.ErrCodeExecCancelled, fmt.Sprintf("run cancelled with %d of %d items blocked", s.Blocked, s.Total))
	case s.Failed > 0:
		return errors.New(errors.ErrCodeExecItemFailed, fmt.Sprintf("%d of %d items failed", s.Failed, s.Total)).
			WithSuggestion("Inspect the failed results for their reasons")
	case s.Escalated > 0:
		return errors.New(errors.ErrCodeExecItemEscalated, fmt.Sprintf("%d of %d items escalated", s.Escalated, s.Total)).
			WithSuggestion("Escalated items need a human decision before they are resubmitted")
	case s.Blocked > 0:
		return errors.New(errors.ErrCodeExecItemsBlocked, fmt.Sprintf("%d of %d items blocked", s.Blocked, s.Total))
	default:
		return nil
	}
}

// String renders the report as plain text
func (r *Report) String() string {
	var b strings.Builder
	r.PrintSummary(&b)
	return b.String()
}

// PrintSummary writes a plain text summary followed by one line per item
func (r *Report) PrintSummary(w io.Writer) {
	sep := strings.Repeat("=", 60)
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "Execution Summary (session %s)\n", r.SessionID)
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "Total Items:    %d\n", r.Summary.Total)
	fmt.Fprintf(w, "Completed:      %d\n", r.Summary.Completed)
	fmt.Fprintf(w, "Failed:         %d\n", r.Summary.Failed)
	fmt.Fprintf(w, "Escalated:      %d\n", r.Summary.Escalated)
	fmt.Fprintf(w, "Blocked:        %d\n", r.Summary.Blocked)
	fmt.Fprintf(w, "Success Rate:   %.1f%%\n", r.Summary.SuccessRate)
	fmt.Fprintf(w, "Duration:       %v\n", time.Duration(r.DurationMs)*time.Millisecond)
	if r.Cancelled {
		fmt.Fprintln(w, "Run was cancelled")
	}
	fmt.Fprintln(w, sep)
	for _, res := range r.Results {
		line := fmt.Sprintf("L%d  %-10s %s (%dms)", res.Level, res.Status, res.ItemID, res.DurationMs)
		if res.Reason != "" {
			line += ": " + res.Reason
		}
		fmt.Fprintln(w, line)
	}
}

// SaveReport writes the report as JSON into dir and returns the file path
func SaveReport(r *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "create report directory", err)
	}

	filename := fmt.Sprintf("%s_%s.json", r.StartTime.UTC().Format("20060102_150405"), r.SessionID)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileMarshal, "marshal report", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "write report", err)
	}

	return path, nil
}
