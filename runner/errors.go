package runner

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when Run is called while a previous run
// on the same pipeline has not finished. The in-flight run is not
// affected.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// DuplicateStageError reports a stage registered under a name that is
// already taken. This is a programmer error and fatal at startup.
type DuplicateStageError struct {
	Name string
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("stage %q is already registered", e.Name)
}

// UnknownStageError reports a stage name requested (via CLI or API)
// that is not present in the registry.
type UnknownStageError struct {
	Name string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Name)
}
