package cmd

import (
	"github.com/spf13/cobra"
)

// One subcommand per pipeline stage, mirroring the stage names in the
// default devopsctl.yml. Each exits with the stage's exit code.
func newStageCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStages(name)
		},
	}
}

func init() {
	rootCmd.AddCommand(newStageCmd("lint", "Run linters"))
	rootCmd.AddCommand(newStageCmd("test", "Execute unit tests"))
	rootCmd.AddCommand(newStageCmd("build", "Build the package"))
	rootCmd.AddCommand(newStageCmd("docker", "Build the Docker image"))
	rootCmd.AddCommand(newStageCmd("publish", "Publish artifacts"))
}
