package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden decompiles a case's story and compares the rendered source
// against a golden file.
// The golden file is stored in testdata/golden/{c.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if decompilation fails.
// Test failure (via goldie) occurs if the source doesn't match the golden file.
func RunWithGolden(t *testing.T, c *Case) error {
	t.Helper()

	_, source, err := Decompile(context.Background(), []byte(c.Story))
	if err != nil {
		return err
	}
	AssertGolden(t, c.Name, source)
	return nil
}

// AssertGolden compares already rendered source against a golden file.
func AssertGolden(t *testing.T, name, source string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(source))
}
