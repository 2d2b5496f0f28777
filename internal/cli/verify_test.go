package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkdc/internal/harness"
	"github.com/roach88/inkdc/internal/testutil"
)

func mismatchDir(t *testing.T) string {
	return testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"b.ink":      "Hello, world.\n",
		"b.ink.json": testutil.HelloStory,
		"c.ink":      "Goodbye.\n",
		"c.ink.json": testutil.HelloStory,
	})
}

func TestVerify_AllPass(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"b.ink":      "Hello, world.\n",
		"b.ink.json": testutil.HelloStory,
	})

	out, err := execute(t, &RootOptions{}, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "OK b.ink\n")
	assert.Contains(t, out, "Summary: 1 passed, 0 failed, 1 total\n")
}

func TestVerify_Empty(t *testing.T) {
	out, err := execute(t, &RootOptions{}, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No stories found")
}

func TestVerify_MismatchText(t *testing.T) {
	out, err := execute(t, &RootOptions{}, mismatchDir(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	golden(t).Assert(t, "verify_mismatch", []byte(out))
}

func TestVerify_MismatchJSON(t *testing.T) {
	out, err := execute(t, &RootOptions{}, "--format", "json", mismatchDir(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string         `json:"status"`
		Data   harness.Report `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeVerifyFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Results, 2)
	assert.Equal(t, harness.StatusMismatch, resp.Data.Results[1].Status)
}

func TestVerify_ConfigFlag(t *testing.T) {
	dir := mismatchDir(t)
	cfgPath := filepath.Join(t.TempDir(), "inkdc.hcl")
	testutil.WriteFiles(t, filepath.Dir(cfgPath), map[string]string{"inkdc.hcl": `skip = ["c.ink"]`})

	out, err := execute(t, &RootOptions{}, "--config", cfgPath, dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "c.ink")
}

func TestVerify_BadConfig(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"inkdc.hcl": `source_extension = `})

	_, err := execute(t, &RootOptions{}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
