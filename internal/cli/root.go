package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/inkdc/internal/config"
	"github.com/roach88/inkdc/internal/ctxlog"
	"github.com/roach88/inkdc/internal/harness"
	"github.com/roach88/inkdc/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // SQLite run log
	Config   string // batch config file

	// RunIDs generates recorded run IDs. Nil means UUIDv7.
	RunIDs store.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the inkdc CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inkdc <path>",
		Short: "inkdc - ink decompiler",
		Long: `Decompile compiled ink stories (JSON) back into ink source.

Given a file, the decompiled source is written to stdout. Given a
directory, every source file with a compiled story next to it
(story.ink + story.ink.json) and every YAML case file is decompiled and
compared with its expected source.

Exit codes:
  0 - Success
  1 - Decompilation failed, or a verified file did not match
  2 - Command error (invalid paths, database not found, etc.)

Examples:
  inkdc story.ink.json
  inkdc ./testcases
  inkdc ./testcases --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			logger := ctxlog.New(cmd.ErrOrStderr(), opts.Verbose)
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(opts, args[0], cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite run log")
	cmd.Flags().StringVar(&opts.Config, "config", "", "batch config file (default: <dir>/"+config.FileName+")")

	// Add subcommands
	cmd.AddCommand(NewIRCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func runRoot(opts *RootOptions, path string, cmd *cobra.Command) error {
	info, err := os.Stat(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("path not found: %s", path), err)
	}
	if info.IsDir() {
		return runVerify(opts, path, cmd)
	}
	return runDecompile(opts, path, cmd)
}

// runDecompile writes the decompiled source of one compiled story.
func runDecompile(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read story", err)
	}

	_, source, err := harness.Decompile(cmd.Context(), data)
	if err != nil {
		if opts.Format == "json" {
			_ = out.Error(ErrorCode(err), err.Error(), map[string]string{"file": path})
		}
		return WrapExitError(ExitFailure, "decompilation failed", err)
	}
	return out.Emit(source, map[string]string{"file": path, "source": source})
}
