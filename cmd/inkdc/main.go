package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/roach88/inkdc/internal/cli"
)

// main is the entrypoint for the inkdc application.
func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

// run executes the command tree with the given streams and arguments.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
