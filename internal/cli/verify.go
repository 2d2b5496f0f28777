package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inkdc/internal/config"
	"github.com/roach88/inkdc/internal/harness"
	"github.com/roach88/inkdc/internal/store"
)

// runVerify decompiles every story in dir and compares it with its
// expected source.
func runVerify(opts *RootOptions, dir string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	var cfg *config.Config
	var err error
	if opts.Config != "" {
		cfg, err = config.Load(ctx, opts.Config)
	} else {
		cfg, err = config.LoadDir(ctx, dir)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	hopts := harness.Options{Config: cfg, RunIDs: opts.RunIDs}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		hopts.Store = st
	}

	report, err := harness.Verify(ctx, dir, hopts)
	if err != nil {
		return WrapExitError(ExitCommandError, "verification failed", err)
	}

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, report)
	}
	return outputVerifyText(cmd, report)
}

// outputVerifyJSON outputs the report as JSON.
func outputVerifyJSON(cmd *cobra.Command, report *harness.Report) error {
	out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	response := CLIResponse{Status: "ok", Data: report}
	if !report.OK() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    CodeVerifyFailed,
			Message: fmt.Sprintf("%d file(s) failed", report.Failed),
		}
	}
	if err := out.encode(response); err != nil {
		return err
	}

	if !report.OK() {
		// Verification failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", report.Failed))
	}
	return nil
}

// outputVerifyText outputs the report as text.
func outputVerifyText(cmd *cobra.Command, report *harness.Report) error {
	w := cmd.OutOrStdout()

	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No stories found.")
		return nil
	}

	report.WriteText(w)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, len(report.Results))

	if !report.OK() {
		// Verification failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", report.Failed))
	}
	return nil
}
