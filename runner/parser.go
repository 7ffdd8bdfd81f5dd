package runner

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StageConfig is one stage entry in the pipeline definition.
type StageConfig struct {
	Name              string `yaml:"name"`
	Run               string `yaml:"run"`
	Branch            string `yaml:"branch,omitempty"`             // run only on this branch
	ContinueOnFailure bool   `yaml:"continue_on_failure,omitempty"`
	Timeout           string `yaml:"timeout,omitempty"` // overrides stage_timeout
}

// Schedule triggers automatic runs in serve mode, either on an
// interval ("30m") or at a time of day ("03:00").
type Schedule struct {
	Every string `yaml:"every,omitempty"`
	At    string `yaml:"at,omitempty"`
}

// Config is the pipeline definition loaded from devopsctl.yml.
type Config struct {
	Package      string        `yaml:"package"`
	VersionFile  string        `yaml:"version_file,omitempty"`
	ArtifactDir  string        `yaml:"artifact_dir,omitempty"`
	StageTimeout string        `yaml:"stage_timeout,omitempty"`
	Schedules    []Schedule    `yaml:"schedules,omitempty"`
	Stages       []StageConfig `yaml:"stages"`
}

// LoadConfig reads and validates a pipeline definition. The document
// is checked against the config schema before unmarshalling so typos
// fail loudly instead of silently dropping stages.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	if err := validateConfig(data); err != nil {
		return nil, fmt.Errorf("invalid pipeline config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if cfg.VersionFile == "" {
		cfg.VersionFile = "VERSION"
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "dist"
	}
	if cfg.StageTimeout == "" {
		cfg.StageTimeout = "10m"
	}

	return &cfg, nil
}

// BuildPipeline constructs the pipeline from the config: one shell
// stage per entry in order, branch conditions attached, and the
// archive hook registered as an unconditional post-run step.
func (c *Config) BuildPipeline(streamToTerminal bool) (*Pipeline, error) {
	defaultTimeout, err := time.ParseDuration(c.StageTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid stage_timeout %q: %w", c.StageTimeout, err)
	}

	p := New(defaultTimeout)

	for _, sc := range c.Stages {
		stage := Stage{
			Name:              sc.Name,
			ContinueOnFailure: sc.ContinueOnFailure,
		}

		if streamToTerminal {
			stage.Action = StreamingShellAction(sc.Run)
		} else {
			stage.Action = ShellAction(sc.Run)
		}

		if sc.Branch != "" {
			stage.Condition = OnBranch(sc.Branch)
		}

		if sc.Timeout != "" {
			timeout, err := time.ParseDuration(sc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("stage %s: invalid timeout %q: %w", sc.Name, sc.Timeout, err)
			}
			stage.Timeout = timeout
		}

		if err := p.Register(stage); err != nil {
			return nil, err
		}
	}

	p.PostRun(ArchiveHook(c.ArtifactDir))

	return p, nil
}

// BuildContext resolves the run context for this config.
func (c *Config) BuildContext(branchOverride string) (RunContext, error) {
	return BuildRunContext(c.Package, c.VersionFile, branchOverride)
}
