package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"devopsctl/runner"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
)

func printRunHeader(rc runner.RunContext, only string) {
	title := "Running Complete Pipeline"
	if only != "" {
		title = "Running Stage: " + only
	}
	line := strings.Repeat("=", 60)
	fmt.Println(headerStyle.Render(line))
	fmt.Println(headerStyle.Render("  " + title))
	fmt.Println(headerStyle.Render(line))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  %s %s (%s) on %s", rc.Package, rc.Version, rc.Commit, rc.Branch)))
	fmt.Println()
}

func printStageStart(s runner.Stage) {
	fmt.Println(infoStyle.Render("→ " + s.Name))
}

func printStageDone(res runner.StageResult) {
	switch res.Status {
	case runner.StatusPassed:
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s (%s)", res.Name, res.Duration.Round(10*time.Millisecond))))
	case runner.StatusSkipped:
		fmt.Println(skipStyle.Render("- " + res.Name + " skipped"))
	default:
		msg := fmt.Sprintf("✗ %s failed", res.Name)
		if res.ExitCode != nil {
			msg += fmt.Sprintf(" (exit %d)", *res.ExitCode)
		}
		if res.Reason != "" {
			msg += fmt.Sprintf(" [%s]", res.Reason)
		}
		fmt.Println(failStyle.Render(msg))
	}
}

func printReport(report *runner.RunReport) {
	summary := report.Summarize()

	fmt.Println()
	if report.Overall == runner.RunSuccess {
		fmt.Println(successStyle.Render("Pipeline completed successfully"))
	} else {
		msg := "Pipeline failed"
		if report.Reason != "" {
			msg += fmt.Sprintf(" (%s)", report.Reason)
		}
		fmt.Println(failStyle.Render(msg))
	}

	fmt.Printf("  stages: %d  passed: %d  failed: %d  skipped: %d  duration: %s\n",
		summary.Total, summary.Passed, summary.Failed, summary.Skipped, report.Duration.Round(10*time.Millisecond))
	if report.RunID != 0 {
		fmt.Printf("  run id: %d\n", report.RunID)
	}
	fmt.Printf("  artifact: %s\n", report.Context.ArtifactName())
}
