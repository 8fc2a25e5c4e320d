package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/dynkit/retype/internal/scenario"
)

const (
	ansiRed   = "\033[0;31m"
	ansiGreen = "\033[0;32m"
	ansiReset = "\033[0m"
)

// colorEnabled reports whether stdout is a terminal that can take
// ANSI colors.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func paint(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + ansiReset
}

// printResults renders scenario outcomes in the configured output
// format and reports whether any step failed.
func printResults(results []*scenario.RunResult) (failed bool, err error) {
	for _, r := range results {
		if r.Failed > 0 {
			failed = true
		}
	}

	switch outputFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return failed, err
		}
		fmt.Println(out)
	case "table":
		renderResultsTable(results)
	default:
		renderResultsText(results)
	}
	return failed, nil
}

// renderResultsText prints one line per scenario with colored PASS and
// FAIL markers when stdout is a terminal, plus the failed steps.
func renderResultsText(results []*scenario.RunResult) {
	color := colorEnabled()
	totalSteps, totalPassed, failedScenarios := 0, 0, 0

	for _, r := range results {
		totalSteps += r.Total
		totalPassed += r.Passed
		if r.Failed == 0 {
			fmt.Printf("  %s  %s (%d/%d)\n", paint("PASS", ansiGreen, color), r.Name, r.Passed, r.Total)
			continue
		}
		failedScenarios++
		fmt.Printf("  %s  %s (%d/%d)\n", paint("FAIL", ansiRed, color), r.Name, r.Passed, r.Total)
		for _, s := range r.Steps {
			if !s.Passed {
				fmt.Printf("    %s  step %d (%s): %s\n", paint("FAIL", ansiRed, color), s.Index, s.Kind, s.Reason)
			}
		}
	}

	fmt.Printf("\n%d of %d steps passed.", totalPassed, totalSteps)
	if failedScenarios > 0 {
		fmt.Printf(" %d of %d scenarios failed.", failedScenarios, len(results))
	}
	fmt.Println()
}

func renderResultsTable(results []*scenario.RunResult) {
	color := colorEnabled()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Scenario", "File", "Steps", "Passed", "Failed", "Status")
	for _, r := range results {
		status := paint("PASS", ansiGreen, color)
		if r.Failed > 0 {
			status = paint("FAIL", ansiRed, color)
		}
		table.Append(
			r.Name,
			r.File,
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%d", r.Passed),
			fmt.Sprintf("%d", r.Failed),
			status,
		)
	}
	table.Render()
}

// collectScenarioFiles expands the path arguments into scenario files:
// directories list their scenario files, plain paths pass through.
func collectScenarioFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{scenarioDir()}
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		listed, err := scenario.ListFiles(p)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		files = append(files, listed...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files under %s", strings.Join(paths, ", "))
	}
	return files, nil
}
