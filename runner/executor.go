package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ShellAction wraps a shell command as a stage action. The command runs
// under `bash -c` with the run context exported as DEVOPSCTL_* variables
// so wrapped scripts see the same version/commit/branch the runner
// resolved at start.
func ShellAction(command string) Action {
	return func(ctx context.Context, rc RunContext) (int, string, error) {
		return executeShellCommand(ctx, command, rc, false)
	}
}

// StreamingShellAction is ShellAction with output additionally streamed
// to the terminal while it is captured.
func StreamingShellAction(command string) Action {
	return func(ctx context.Context, rc RunContext) (int, string, error) {
		return executeShellCommand(ctx, command, rc, true)
	}
}

// executeShellCommand runs a shell command, capturing combined output
// and optionally mirroring it to the terminal. The exit code is taken
// from the process; any failure before the process produced one reports
// exit code 1 alongside the error.
func executeShellCommand(ctx context.Context, command string, rc RunContext, streamToTerminal bool) (int, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Env = append(os.Environ(),
		"DEVOPSCTL_PACKAGE="+rc.Package,
		"DEVOPSCTL_VERSION="+rc.Version.String(),
		"DEVOPSCTL_COMMIT="+rc.Commit,
		"DEVOPSCTL_BRANCH="+rc.Branch,
	)

	var stdout, stderr bytes.Buffer
	stdoutWriters := []io.Writer{&stdout}
	stderrWriters := []io.Writer{&stderr}

	if streamToTerminal {
		stdoutWriters = append(stdoutWriters, os.Stdout)
		stderrWriters = append(stderrWriters, os.Stderr)
	}

	cmd.Stdout = io.MultiWriter(stdoutWriters...)
	cmd.Stderr = io.MultiWriter(stderrWriters...)

	err := cmd.Run()

	combinedOutput := stdout.String() + stderr.String()
	if len(combinedOutput) > 0 && combinedOutput[len(combinedOutput)-1] != '\n' {
		combinedOutput += "\n"
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), combinedOutput, err
		}
		return 1, combinedOutput, err
	}

	return 0, combinedOutput, nil
}

// exitCodeUnknown reports whether err carries no real process exit
// status (the action failed before or instead of running a process).
func exitCodeUnknown(err error) bool {
	var exitErr *exec.ExitError
	return !errors.As(err, &exitErr)
}
