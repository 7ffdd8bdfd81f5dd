package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devopsctl.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
package: devops-toolchain-service
version_file: VERSION
stage_timeout: 5m
stages:
  - name: lint
    run: scripts/lint.sh
  - name: test
    run: scripts/test.sh
  - name: publish
    run: scripts/publish.sh
    branch: main
    continue_on_failure: true
    timeout: 1m
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Package != "devops-toolchain-service" {
		t.Errorf("package = %q", cfg.Package)
	}
	if len(cfg.Stages) != 3 {
		t.Fatalf("stages = %d, want 3", len(cfg.Stages))
	}
	if cfg.Stages[2].Branch != "main" || !cfg.Stages[2].ContinueOnFailure {
		t.Errorf("publish stage = %+v", cfg.Stages[2])
	}
	// Defaults applied.
	if cfg.ArtifactDir != "dist" {
		t.Errorf("artifact_dir default = %q", cfg.ArtifactDir)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "package: svc\nstages:\n  - name: lint\n    run: \"true\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.VersionFile != "VERSION" || cfg.StageTimeout != "10m" {
		t.Errorf("defaults = %q / %q", cfg.VersionFile, cfg.StageTimeout)
	}
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no package", "stages:\n  - name: lint\n    run: x\n"},
		{"no stages", "package: svc\n"},
		{"empty stages", "package: svc\nstages: []\n"},
		{"stage without run", "package: svc\nstages:\n  - name: lint\n"},
		{"unknown key", "package: svc\ntypo_key: 1\nstages:\n  - name: lint\n    run: x\n"},
		{"unknown stage key", "package: svc\nstages:\n  - name: lint\n    run: x\n    retries: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildPipeline(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	p, err := cfg.BuildPipeline(false)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	stages := p.Stages()
	if len(stages) != 3 {
		t.Fatalf("stages = %d, want 3", len(stages))
	}
	for i, want := range []string{"lint", "test", "publish"} {
		if stages[i].Name != want {
			t.Errorf("stages[%d] = %s, want %s", i, stages[i].Name, want)
		}
	}

	publish := stages[2]
	if publish.Condition == nil {
		t.Fatal("publish stage has no branch condition")
	}
	if publish.Condition(RunContext{Branch: "develop"}) {
		t.Error("publish condition passed on develop")
	}
	if !publish.Condition(RunContext{Branch: "main"}) {
		t.Error("publish condition failed on main")
	}
	if publish.Timeout != time.Minute {
		t.Errorf("publish timeout = %s, want 1m", publish.Timeout)
	}
}

func TestBuildPipelineDuplicateStage(t *testing.T) {
	cfg := &Config{
		Package:      "svc",
		StageTimeout: "1m",
		Stages: []StageConfig{
			{Name: "lint", Run: "true"},
			{Name: "lint", Run: "true"},
		},
	}
	if _, err := cfg.BuildPipeline(false); err == nil {
		t.Error("expected duplicate stage error")
	}
}

func TestBuildPipelineBadTimeout(t *testing.T) {
	cfg := &Config{
		Package:      "svc",
		StageTimeout: "soon",
		Stages:       []StageConfig{{Name: "lint", Run: "true"}},
	}
	if _, err := cfg.BuildPipeline(false); err == nil {
		t.Error("expected timeout parse error")
	}
}
