package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dynkit/retype/internal/journal"
	"github.com/dynkit/retype/internal/object"
	"github.com/dynkit/retype/internal/scenario"
)

var checkRecord bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkRecord, "record", false, "append protocol events to the journal database")
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run scenario files through the wrapper protocol",
	Long: "Loads scenario YAML files (or directories of them), builds each\n" +
		"described class hierarchy in a fresh runtime, executes the steps and\n" +
		"reports pass/fail per step.\n\n" +
		"Exit code 0 if all steps pass, 1 if any fail.\n" +
		"With --record, every capture, invocation, upgrade and migration is\n" +
		"appended to the journal database for later `retype report`.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := collectScenarioFiles(args)
	if err != nil {
		return err
	}

	var hooks []object.Hook
	if checkRecord {
		store, err := journal.NewStore(journal.Config{Type: "sqlite", Path: journalFile})
		if err != nil {
			return fmt.Errorf("open journal %s: %w", journalFile, err)
		}
		defer store.Close()
		recorder := journal.NewRecorder(store)
		defer func() {
			if n := recorder.Dropped(); n > 0 {
				fmt.Fprintf(os.Stderr, "warning: %d journal events dropped\n", n)
			}
		}()
		hooks = append(hooks, recorder)
	}

	var results []*scenario.RunResult
	for _, path := range files {
		r, err := scenario.LoadAndRun(path, hooks...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, r)
	}

	failed, err := printResults(results)
	if err != nil {
		return err
	}
	if failed {
		os.Exit(1)
	}
	return nil
}
