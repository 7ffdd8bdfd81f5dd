package runner

import (
	"context"
	"time"

	"devopsctl/runner/storage"
	"devopsctl/version"
)

// Status is the outcome of a single stage.
type Status string

// RunStatus is the outcome of a whole run.
type RunStatus string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"

	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// Reason distinguishes why a stage (or run) failed beyond its exit code.
type Reason string

const (
	ReasonTimedOut  Reason = "timed_out"
	ReasonCancelled Reason = "cancelled"
	ReasonError     Reason = "error"
)

// Action is the external collaborator a stage invokes: typically a
// process returning an exit status. A non-zero exit code or a non-nil
// error marks the stage failed.
type Action func(ctx context.Context, rc RunContext) (exitCode int, output string, err error)

// Condition gates a stage on the run context. A nil condition means
// "always run".
type Condition func(rc RunContext) bool

// Stage is one named unit of pipeline work. Immutable once registered.
type Stage struct {
	Name              string
	Action            Action
	Condition         Condition
	ContinueOnFailure bool
	Timeout           time.Duration // 0 = pipeline default
}

// StageResult records the outcome of one attempted stage. Skipped
// stages carry no exit code.
type StageResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	ExitCode  *int          `json:"exit_code,omitempty"`
	Reason    Reason        `json:"reason,omitempty"`
	Output    string        `json:"-"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RunReport is the ordered sequence of stage results for one run plus
// the context the run was built from.
type RunReport struct {
	RunID    int           `json:"run_id,omitempty"`
	Overall  RunStatus     `json:"overall"`
	Reason   Reason        `json:"reason,omitempty"`
	Context  RunContext    `json:"context"`
	Results  []StageResult `json:"stages"`
	Duration time.Duration `json:"duration"`
}

// Summary is the per-status roll-up of a report.
type Summary struct {
	Total   int       `json:"total"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
	Skipped int       `json:"skipped"`
	Overall RunStatus `json:"overall"`
}

// RunContext is the immutable per-run metadata every stage reads.
// Built once at run start; never mutated by stages.
type RunContext struct {
	Package     string            `json:"package"`
	Version     version.Version   `json:"version"`
	Commit      string            `json:"commit"`
	Branch      string            `json:"branch"`
	Environment map[string]string `json:"-"`
}

// RunOptions configures how a pipeline run is executed.
type RunOptions struct {
	Store        *storage.Storage  // optional run-history persistence
	OnlyStage    string            // run a single stage by name (empty = all)
	OnStageStart func(Stage)       // progress callback, may be nil
	OnStageDone  func(StageResult) // progress callback, may be nil
}
