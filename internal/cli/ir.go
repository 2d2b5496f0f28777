package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inkdc/internal/decompiler"
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ir <compiled.json>",
		Short: "Print the decompiled story tree",
		Long: `Decompile a compiled story and print its structural tree as canonical
JSON instead of rendering source.

Canonical JSON has sorted keys and no insignificant whitespace, so equal
trees print identically. The story hash recorded by batch runs is the
hash of this text.

Examples:
  inkdc ir story.ink.json
  inkdc ir story.ink.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(rootOpts, args[0], cmd)
		},
	}
}

func runIR(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	tree, err := decompileFile(cmd.Context(), path)
	if err != nil {
		if opts.Format == "json" {
			_ = out.Error(ErrorCode(err), err.Error(), map[string]string{"file": path})
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to decompile %s", path), err)
	}

	data, err := ir.MarshalCanonical(ir.EncodeStory(tree))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode tree", err)
	}
	return out.Emit(string(data)+"\n", json.RawMessage(data))
}

func decompileFile(ctx context.Context, path string) (*ir.Story, error) {
	s, err := story.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return decompiler.Decompile(ctx, s)
}
