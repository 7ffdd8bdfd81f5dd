package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.GetRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load run history: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded yet")
			return nil
		}

		for _, r := range runs {
			duration := "-"
			if r.Duration != nil {
				duration = *r.Duration
			}

			line := fmt.Sprintf("#%-4d %-8s %s %s (%s) on %s  %s  %s",
				r.ID, r.Status, r.Package, r.Version, r.Commit, r.Branch,
				r.StartedAt.Format("2006-01-02 15:04:05"), duration)

			switch r.Status {
			case "success":
				fmt.Println(successStyle.Render(line))
			case "failed":
				fmt.Println(failStyle.Render(line))
			default:
				fmt.Println(skipStyle.Render(line))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
}
