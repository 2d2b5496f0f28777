package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRunIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-123")

	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())
}

func TestFixedRunIDGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunIDGenerator("").Generate())
}

func TestFixedRunIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedRunIDGenerator("thread-safe-id")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-id", gen.Generate())
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestWriteFiles(t *testing.T) {
	dir := WriteFiles(t, t.TempDir(), map[string]string{
		"a.ink":        "Hello\n",
		"nested/b.ink": "World\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "nested", "b.ink"))
	require.NoError(t, err)
	assert.Equal(t, "World\n", string(data))
	assert.Contains(t, HelloStory, `"inkVersion":21`)
}
