package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/inkdc/internal/store"
)

// HistoryResult is the most recent recorded run.
type HistoryResult struct {
	Run     *store.Run     `json:"run"`
	Results []store.Result `json:"results"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent batch run",
		Long: `Show the most recent batch verification recorded in the run log.

Exit codes:
  0 - Success (including an empty log)
  2 - Command error (database not found, etc.)

Examples:
  inkdc history --db runs.db
  inkdc history --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd)
		},
	}
}

func runHistory(opts *RootOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database), err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	run, results, err := st.LatestRun(cmd.Context())
	if errors.Is(err, store.ErrNoRuns) {
		return out.Emit("No runs recorded.\n", HistoryResult{Results: []store.Result{}})
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run log", err)
	}

	if opts.Format == "json" {
		return out.Emit("", HistoryResult{Run: run, Results: results})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %d (%s): %s\n", run.Seq, run.ID, run.Directory)
	fmt.Fprintf(w, "inkdc %s, IR version %s\n", run.ToolVersion, run.IRVersion)
	for _, res := range results {
		if res.OK {
			fmt.Fprintf(w, "OK %s\n", res.Name)
		} else {
			fmt.Fprintf(w, "ERR %s: %s\n", res.Name, res.Error)
		}
	}
	fmt.Fprintf(w, "Summary: %d passed, %d failed, %d total\n", run.Passed, run.Failed, len(results))
	return nil
}
