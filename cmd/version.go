package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"devopsctl/runner"
	"devopsctl/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tool and project version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("devopsctl version %s\n", appVersion)

		cfg, err := runner.LoadConfig(cfgFile)
		if err != nil {
			// No pipeline config nearby; the tool version alone is fine.
			return nil
		}

		data, err := os.ReadFile(cfg.VersionFile)
		if err != nil {
			return nil
		}
		v, err := version.Parse(string(data))
		if err != nil {
			return fmt.Errorf("version file %s: %w", cfg.VersionFile, err)
		}
		fmt.Printf("%s version %s\n", cfg.Package, v)
		return nil
	},
}

var bumpCmd = &cobra.Command{
	Use:       "bump [major|minor|patch]",
	Short:     "Bump the project version file",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"major", "minor", "patch"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := "patch"
		if len(args) == 1 {
			kind = args[0]
		}

		cfg, err := runner.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(cfg.VersionFile)
		if err != nil {
			return fmt.Errorf("failed to read version file: %w", err)
		}

		current := strings.TrimSpace(string(data))
		bumped, err := version.BumpString(current, kind)
		if err != nil {
			return err
		}

		if err := os.WriteFile(cfg.VersionFile, []byte(bumped+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write version file: %w", err)
		}

		fmt.Printf("%s: %s -> %s\n", cfg.VersionFile, current, bumped)
		return nil
	},
}

func init() {
	versionCmd.AddCommand(bumpCmd)
}
