package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkdc/internal/store"
	"github.com/roach88/inkdc/internal/testutil"
)

func TestHistory_RequiresDB(t *testing.T) {
	_, err := execute(t, &RootOptions{}, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db is required")
}

func TestHistory_DatabaseNotFound(t *testing.T) {
	_, err := execute(t, &RootOptions{}, "history", "--db", "/nonexistent/runs.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, &RootOptions{}, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistory_AfterVerify(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	dir := mismatchDir(t)
	opts := &RootOptions{RunIDs: testutil.NewFixedRunIDGenerator("run-1")}

	_, err := execute(t, opts, "--db", db, dir)
	require.Error(t, err, "one file mismatches")

	out, err := execute(t, &RootOptions{}, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run 1 (run-1): "+dir+"\n")
	assert.Contains(t, out, "OK b.ink\n")
	assert.Contains(t, out, "ERR c.ink: decompiled source differs\n")
	assert.Contains(t, out, "Summary: 1 passed, 1 failed, 2 total\n")

	out, err = execute(t, &RootOptions{}, "history", "--db", db, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "run-1"`)
	assert.Contains(t, out, `"story_hash"`)
}
