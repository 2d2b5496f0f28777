package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// StoryJSON wraps a root container in a version 21 story document.
func StoryJSON(root string) string {
	return `{"inkVersion":21,"root":` + root + `,"listDefs":{}}`
}

// HelloStory is the smallest complete story: one line of text.
var HelloStory = StoryJSON(`[["^Hello, world.","\n",["done",{"#n":"g-0"}],null],"done",null]`)

// WriteFiles creates files under dir from a name -> content map and
// returns dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
