package storage

import "time"

// Run represents one pipeline execution.
type Run struct {
	ID         int        `json:"id"`
	Status     string     `json:"status"` // "running", "success", "failed"
	Package    string     `json:"package"`
	Version    string     `json:"version"`
	Commit     string     `json:"commit"`
	Branch     string     `json:"branch"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
}

// StageExecution represents the recorded outcome of a single stage
// within a run.
type StageExecution struct {
	ID        int       `json:"id"`
	RunID     int       `json:"run_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "passed", "failed", "skipped"
	ExitCode  *int      `json:"exit_code,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Output    string    `json:"output,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}
