package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dynkit/retype/internal/journal"
)

var (
	reportKind    string
	reportOutcome string
	reportTail    int
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportKind, "kind", "", "list entries of one kind (capture|invoke|upgrade|migrate)")
	reportCmd.Flags().StringVar(&reportOutcome, "outcome", "", "list entries with one outcome (upgraded|failed|copied|skipped)")
	reportCmd.Flags().IntVar(&reportTail, "tail", 0, "list at most this many entries")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded protocol journal",
	Long: "Reads the journal database written by `retype check --record` and\n" +
		"prints event totals plus the observed upgrade paths. With --kind,\n" +
		"--outcome or --tail it lists the matching entries instead.",
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(journalFile); err != nil {
		return fmt.Errorf("journal %s: %w (run `retype check --record` first)", journalFile, err)
	}
	store, err := journal.NewSQLiteStore(journalFile)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", journalFile, err)
	}
	defer store.Close()

	ctx := context.Background()
	if reportKind != "" || reportOutcome != "" || reportTail > 0 {
		entries, err := store.List(ctx, journal.Filter{
			Kind:    reportKind,
			Outcome: reportOutcome,
			Limit:   reportTail,
		})
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		return printEntries(entries)
	}

	sum, err := store.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("summarize journal: %w", err)
	}
	return printSummary(sum)
}

func printSummary(sum *journal.Summary) error {
	if outputFormat == "json" {
		out, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Kind", "Events")
	for _, kind := range []string{journal.KindCapture, journal.KindInvoke, journal.KindUpgrade, journal.KindMigrate} {
		if n, ok := sum.ByKind[kind]; ok {
			table.Append(kind, fmt.Sprintf("%d", n))
		}
	}
	table.Append("total", fmt.Sprintf("%d", sum.Total))
	table.Render()
	fmt.Printf("\nFailures: %d\n", sum.Failures)

	if len(sum.Paths) > 0 {
		fmt.Println()
		paths := tablewriter.NewWriter(os.Stdout)
		paths.Header("From", "To", "Upgrades")
		for _, p := range sum.Paths {
			paths.Append(p.From, p.To, fmt.Sprintf("%d", p.Count))
		}
		paths.Render()
	}
	return nil
}

func printEntries(entries []journal.Entry) error {
	if outputFormat == "json" {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No matching journal entries")
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("At", "Kind", "Class", "Method", "From", "To", "Outcome", "Detail")
	for _, e := range entries {
		table.Append(
			e.At.Format(time.TimeOnly),
			e.Kind,
			e.Class,
			e.Method,
			shorten(e.From, 8),
			shorten(e.To, 8),
			e.Outcome,
			e.Detail,
		)
	}
	table.Render()
	return nil
}

// shorten trims instance uuids down to their leading segment so the
// table stays readable.
func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
