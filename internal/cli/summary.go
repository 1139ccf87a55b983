package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/qanai/shopflow/internal/models"
)

// PrintSummary writes a short colored report of a finished run
func PrintSummary(w io.Writer, run *models.Run) {
	fmt.Fprintf(w, "%s %s\n", status(run), run.TestCase)
	fmt.Fprintf(w, "  run:      %s\n", run.ID)
	fmt.Fprintf(w, "  reached:  %s\n", run.Reached)
	fmt.Fprintf(w, "  duration: %s\n", run.Duration().Round(time.Millisecond))
	if run.Failure != "" {
		fmt.Fprintf(w, "  %s\n", color.RedString("failure:  %s", run.Failure))
	}
	for _, path := range run.Screenshots {
		fmt.Fprintf(w, "  %s\n", color.CyanString("screenshot: %s", path))
	}
}

// PrintHistory writes one line per run, newest first
func PrintHistory(w io.Writer, runs []*models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, color.YellowString("No runs recorded yet"))
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s %s  %-14s %s  %s\n",
			status(run),
			run.StartedAt.Format(time.RFC3339),
			run.Reached,
			run.ID,
			run.TestCase,
		)
	}
}

func status(run *models.Run) string {
	if run.Passed {
		return color.GreenString("✓ PASS")
	}
	return color.RedString("✗ FAIL")
}
