// Package cmd implements the devopsctl CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	verbose        bool
	branchOverride string

	appVersion = "dev"
)

// ExitCodeError carries a stage or run exit code to the process exit
// status so shell callers can branch on it.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("pipeline failed with exit code %d", e.Code)
}

var rootCmd = &cobra.Command{
	Use:          "devopsctl",
	Short:        "devopsctl — staged CI pipeline runner",
	Long:         "devopsctl runs the lint/test/build/docker/publish pipeline defined in devopsctl.yml, locally and in CI, with per-stage results and run history.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "devopsctl.yml", "pipeline config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&branchOverride, "branch", "", "override the detected branch")

	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("devopsctl %s (commit: %s)\n", version, commit))
}

// Execute runs the root command and exits with the propagated code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
