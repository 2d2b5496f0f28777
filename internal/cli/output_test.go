package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkdc/internal/decompiler"
	"github.com/roach88/inkdc/internal/story"
)

func TestOutputFormatter_JSONEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Emit("ignored", map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestOutputFormatter_TextEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Emit("Hello\n", map[string]string{"source": "Hello\n"})
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", buf.String(), "text is written verbatim")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "story.json"}
	err := formatter.Error(CodeLoad, "malformed story", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeLoad, resp.Error.Code)
	assert.Equal(t, "malformed story", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error(CodeUnsupported, "tunnels have no source form", nil)
	require.NoError(t, err)
	assert.Equal(t, "Error [E_UNSUPPORTED]: tunnels have no source form\n", buf.String())
}

func TestErrorCode(t *testing.T) {
	unsupported := fmt.Errorf("knot k: %w", &decompiler.UnsupportedError{Reason: "no source form"})
	load := &story.LoadError{Code: story.ErrCodeSyntax, Message: "malformed story document"}

	assert.Equal(t, CodeUnsupported, ErrorCode(unsupported))
	assert.Equal(t, CodeLoad, ErrorCode(load))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}

func TestExitError(t *testing.T) {
	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to read story", inner)

	assert.Equal(t, "failed to read story: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(inner))
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    CodeVerifyFailed,
		Message: "1 file(s) failed",
		Details: []string{"c.ink"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, CodeVerifyFailed, decoded.Code)
	assert.Equal(t, "1 file(s) failed", decoded.Message)
}
