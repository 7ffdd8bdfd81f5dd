package runner

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"devopsctl/version"
)

// BuildRunContext collects the per-run metadata exactly once: version
// from the version file, commit and branch from git with CI environment
// variables taking precedence (Jenkins exports GIT_COMMIT and
// BRANCH_NAME). Stages read the snapshot; nothing re-reads the
// filesystem mid-run.
func BuildRunContext(pkg, versionFile, branchOverride string) (RunContext, error) {
	v, err := readVersionFile(versionFile)
	if err != nil {
		return RunContext{}, err
	}

	commit := os.Getenv("GIT_COMMIT")
	if commit == "" {
		commit = gitQuery("rev-parse", "--short", "HEAD")
	}
	if commit == "" {
		commit = "unknown"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}

	branch := branchOverride
	if branch == "" {
		branch = os.Getenv("BRANCH_NAME")
	}
	if branch == "" {
		branch = gitQuery("rev-parse", "--abbrev-ref", "HEAD")
	}
	if branch == "" {
		branch = "unknown"
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, val, ok := strings.Cut(kv, "="); ok {
			env[k] = val
		}
	}

	return RunContext{
		Package:     pkg,
		Version:     v,
		Commit:      commit,
		Branch:      branch,
		Environment: env,
	}, nil
}

// ArtifactName derives the canonical artifact name for this context.
func (rc RunContext) ArtifactName() string {
	return version.ArtifactName(rc.Package, rc.Version, rc.Commit)
}

// OnBranch returns a condition that passes only on the given branch.
func OnBranch(branch string) Condition {
	return func(rc RunContext) bool {
		return rc.Branch == branch
	}
}

func readVersionFile(path string) (version.Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return version.Version{}, fmt.Errorf("failed to read version file: %w", err)
	}
	v, err := version.Parse(string(data))
	if err != nil {
		return version.Version{}, fmt.Errorf("version file %s: %w", path, err)
	}
	return v, nil
}

// gitQuery runs a git command and returns its trimmed output, or the
// empty string when git is unavailable or the directory is not a repo.
func gitQuery(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
