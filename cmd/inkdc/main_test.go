package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkdc/internal/cli"
	"github.com/roach88/inkdc/internal/testutil"
)

func TestRun_DecompilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.ink.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.HelloStory), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.\n", stdout.String())
}

func TestRun_MissingPath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, []string{filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}
