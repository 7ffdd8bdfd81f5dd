package runner

import (
	"encoding/json"
	"io"

	"devopsctl/runner/storage"
)

// Summarize rolls the stage results up into per-status counts. It is
// computed from the result sequence alone.
func (r *RunReport) Summarize() Summary {
	s := Summary{Total: len(r.Results), Overall: r.Overall}
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// ExitCode maps the report onto a process exit code: the first failed
// stage's exit code, 1 for a failed run without one, 0 otherwise.
func (r *RunReport) ExitCode() int {
	for _, res := range r.Results {
		if res.Status == StatusFailed && res.ExitCode != nil && *res.ExitCode != 0 {
			return *res.ExitCode
		}
	}
	if r.Overall == RunFailed {
		return 1
	}
	return 0
}

// WriteJSON writes the report as indented JSON for consumption by an
// external archiver.
func (r *RunReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// toStoredStage converts a stage result into its persistence record.
func toStoredStage(res StageResult) storage.StageExecution {
	return storage.StageExecution{
		Name:      res.Name,
		Status:    string(res.Status),
		ExitCode:  res.ExitCode,
		Reason:    string(res.Reason),
		Output:    res.Output,
		StartedAt: res.StartedAt,
		Duration:  res.Duration.String(),
	}
}
