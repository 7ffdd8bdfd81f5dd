package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the archive record written after every run, whatever the
// outcome and branch. The artifact name is the deterministic
// {package}-{version}-{commit} contract the publisher keys on.
type Manifest struct {
	Artifact    string    `json:"artifact"`
	Package     string    `json:"package"`
	Version     string    `json:"version"`
	Commit      string    `json:"commit"`
	Branch      string    `json:"branch"`
	Overall     RunStatus `json:"overall"`
	Summary     Summary   `json:"summary"`
	GeneratedAt string    `json:"generated_at"`
}

// ArchiveHook returns the post-run hook that writes manifest.json and
// report.json into the artifact directory.
func ArchiveHook(artifactDir string) Hook {
	return func(rc RunContext, report *RunReport) error {
		if err := os.MkdirAll(artifactDir, 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}

		manifest := Manifest{
			Artifact:    rc.ArtifactName(),
			Package:     rc.Package,
			Version:     rc.Version.String(),
			Commit:      rc.Commit,
			Branch:      rc.Branch,
			Overall:     report.Overall,
			Summary:     report.Summarize(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		}

		manifestData, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		manifestPath := filepath.Join(artifactDir, "manifest.json")
		if err := os.WriteFile(manifestPath, append(manifestData, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}

		reportPath := filepath.Join(artifactDir, "report.json")
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()

		if err := report.WriteJSON(f); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}
}
