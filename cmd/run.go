package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"devopsctl/runner"
	"devopsctl/runner/storage"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the complete pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeStages("")
	},
}

// executeStages runs the configured pipeline, either in full or a
// single named stage, with output streamed to the terminal and the
// result persisted to the local run history.
func executeStages(only string) error {
	// Load .env if present for CI identity variables.
	_ = godotenv.Load()

	cfg, err := runner.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	pipeline, err := cfg.BuildPipeline(true)
	if err != nil {
		return err
	}

	rc, err := cfg.BuildContext(branchOverride)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	// Ctrl-C cancels between stages; the stage in flight is
	// interrupted through its command context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printRunHeader(rc, only)

	report, err := pipeline.Run(ctx, rc, runner.RunOptions{
		Store:        store,
		OnlyStage:    only,
		OnStageStart: printStageStart,
		OnStageDone:  printStageDone,
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	printReport(report)

	if code := report.ExitCode(); code != 0 {
		return &ExitCodeError{Code: code}
	}
	return nil
}

// openStorage opens the run-history database under ./data, creating
// the directory on first use.
func openStorage() (*storage.Storage, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	dataDir := filepath.Join(cwd, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewStorage(filepath.Join(dataDir, "devopsctl.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
