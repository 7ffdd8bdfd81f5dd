package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Hook runs after the stage loop finishes, regardless of outcome.
// Archiving lives here rather than in the stage list so it happens on
// every branch even when publish is skipped or the run failed.
type Hook func(rc RunContext, report *RunReport) error

// Pipeline executes an ordered list of registered stages sequentially,
// halting on the first failure unless the failing stage is marked
// ContinueOnFailure. At most one run is in flight at a time.
type Pipeline struct {
	stages         []Stage
	names          map[string]struct{}
	hooks          []Hook
	defaultTimeout time.Duration
	running        atomic.Bool
}

// New creates an empty pipeline. defaultTimeout bounds each stage's
// wall-clock time; zero means no bound.
func New(defaultTimeout time.Duration) *Pipeline {
	return &Pipeline{
		names:          make(map[string]struct{}),
		defaultTimeout: defaultTimeout,
	}
}

// Register appends a stage to the execution order. Registering a name
// twice fails with *DuplicateStageError.
func (p *Pipeline) Register(s Stage) error {
	if s.Name == "" {
		return fmt.Errorf("stage name must not be empty")
	}
	if _, exists := p.names[s.Name]; exists {
		return &DuplicateStageError{Name: s.Name}
	}
	p.names[s.Name] = struct{}{}
	p.stages = append(p.stages, s)
	return nil
}

// Stages returns the registered stages in execution order.
func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// PostRun registers a hook invoked after every run, in registration
// order, whatever the outcome.
func (p *Pipeline) PostRun(h Hook) {
	p.hooks = append(p.hooks, h)
}

// Busy reports whether a run is currently in flight. Advisory only:
// Run itself enforces the single-run guarantee.
func (p *Pipeline) Busy() bool {
	return p.running.Load()
}

// Run executes the registered stages against the given context and
// returns the report. Stage failures are reflected in the report, not
// in the returned error; the error covers run-level problems only
// (ErrRunInProgress, an unknown OnlyStage, storage or hook failures).
func (p *Pipeline) Run(ctx context.Context, rc RunContext, opts RunOptions) (*RunReport, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	if opts.OnlyStage != "" {
		if _, ok := p.names[opts.OnlyStage]; !ok {
			return nil, &UnknownStageError{Name: opts.OnlyStage}
		}
	}

	startTime := time.Now()
	report := &RunReport{
		Context: rc,
		Results: make([]StageResult, 0, len(p.stages)),
	}

	if opts.Store != nil {
		run, err := opts.Store.CreateRun(rc.Package, rc.Version.String(), rc.Commit, rc.Branch)
		if err != nil {
			return nil, fmt.Errorf("failed to create run record: %w", err)
		}
		report.RunID = run.ID
	}

	for _, stage := range p.stages {
		if opts.OnlyStage != "" && stage.Name != opts.OnlyStage {
			continue
		}

		// Cancellation halts before the next stage starts.
		if err := ctx.Err(); err != nil {
			report.Reason = ReasonCancelled
			break
		}

		if stage.Condition != nil && !stage.Condition(rc) {
			result := StageResult{
				Name:      stage.Name,
				Status:    StatusSkipped,
				StartedAt: time.Now(),
			}
			p.record(report, result, opts)
			continue
		}

		result := p.runStage(ctx, stage, rc, opts)
		p.record(report, result, opts)

		if result.Reason == ReasonCancelled {
			report.Reason = ReasonCancelled
			break
		}
		if result.Status == StatusFailed && !stage.ContinueOnFailure {
			break
		}
	}

	report.Duration = time.Since(startTime)
	report.Overall = computeOverall(report)

	var runErr error
	if opts.Store != nil {
		if err := opts.Store.UpdateRunStatus(report.RunID, string(report.Overall), report.Duration); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to update run record: %w", err))
		}
	}

	for _, hook := range p.hooks {
		if err := hook(rc, report); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("post-run hook: %w", err))
		}
	}

	return report, runErr
}

// runStage invokes one stage action under its timeout and converts the
// outcome into a StageResult. A panicking action is recorded as a
// failure so the report stays well-formed.
func (p *Pipeline) runStage(ctx context.Context, stage Stage, rc RunContext, opts RunOptions) (result StageResult) {
	if opts.OnStageStart != nil {
		opts.OnStageStart(stage)
	}

	startedAt := time.Now()
	result = StageResult{
		Name:      stage.Name,
		StartedAt: startedAt,
	}

	timeout := stage.Timeout
	if timeout == 0 {
		timeout = p.defaultTimeout
	}

	stageCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			exitCode := 1
			result.Status = StatusFailed
			result.ExitCode = &exitCode
			result.Reason = ReasonError
			result.Output = fmt.Sprintf("stage panicked: %v\n", r)
			result.Duration = time.Since(startedAt)
		}
	}()

	exitCode, output, err := stage.Action(stageCtx, rc)
	result.Duration = time.Since(startedAt)
	result.Output = output

	if err == nil && exitCode == 0 {
		result.Status = StatusPassed
		result.ExitCode = &exitCode
		return result
	}

	if exitCode == 0 {
		exitCode = 1
	}
	result.Status = StatusFailed
	result.ExitCode = &exitCode

	switch {
	case ctx.Err() != nil:
		result.Reason = ReasonCancelled
	case stageCtx.Err() == context.DeadlineExceeded:
		result.Reason = ReasonTimedOut
	case err != nil && exitCodeUnknown(err):
		result.Reason = ReasonError
	}

	return result
}

// record appends a result to the report, persists it, and notifies the
// progress callback. Each attempted stage is recorded exactly once.
func (p *Pipeline) record(report *RunReport, result StageResult, opts RunOptions) {
	report.Results = append(report.Results, result)

	if opts.Store != nil {
		_ = opts.Store.RecordStageExecution(report.RunID, toStoredStage(result))
	}

	if opts.OnStageDone != nil {
		opts.OnStageDone(result)
	}
}

// computeOverall applies the report invariant: failed iff any stage
// failed, or the run was cancelled before completing.
func computeOverall(report *RunReport) RunStatus {
	if report.Reason == ReasonCancelled {
		return RunFailed
	}
	for _, r := range report.Results {
		if r.Status == StatusFailed {
			return RunFailed
		}
	}
	return RunSuccess
}
