package runner

import (
	"os"
	"path/filepath"
	"testing"

	"devopsctl/version"
)

func TestBuildRunContext(t *testing.T) {
	versionFile := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(versionFile, []byte("1.2.3\n"), 0644); err != nil {
		t.Fatalf("failed to write version file: %v", err)
	}

	rc, err := BuildRunContext("svc", versionFile, "release/1.2")
	if err != nil {
		t.Fatalf("BuildRunContext: %v", err)
	}

	if rc.Version != (version.Version{Major: 1, Minor: 2, Patch: 3}) {
		t.Errorf("version = %v", rc.Version)
	}
	// Explicit override wins over BRANCH_NAME and git detection.
	if rc.Branch != "release/1.2" {
		t.Errorf("branch = %q", rc.Branch)
	}
	if rc.Commit == "" {
		t.Error("commit is empty")
	}
	if len(rc.Commit) > 7 {
		t.Errorf("commit %q not shortened", rc.Commit)
	}
	if len(rc.Environment) == 0 {
		t.Error("environment not captured")
	}
}

func TestBuildRunContextMissingVersionFile(t *testing.T) {
	_, err := BuildRunContext("svc", filepath.Join(t.TempDir(), "VERSION"), "")
	if err == nil {
		t.Error("expected error for missing version file")
	}
}

func TestBuildRunContextInvalidVersion(t *testing.T) {
	versionFile := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(versionFile, []byte("not-a-version\n"), 0644); err != nil {
		t.Fatalf("failed to write version file: %v", err)
	}

	_, err := BuildRunContext("svc", versionFile, "")
	if err == nil {
		t.Error("expected invalid version error")
	}
}

func TestRunContextArtifactName(t *testing.T) {
	rc := RunContext{
		Package: "devops-toolchain-service",
		Version: version.Version{Minor: 1},
		Commit:  "a11dfd9",
	}
	if got := rc.ArtifactName(); got != "devops-toolchain-service-0.1.0-a11dfd9" {
		t.Errorf("ArtifactName = %q", got)
	}
}
