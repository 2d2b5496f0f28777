package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/inkdc/internal/config"
	"github.com/roach88/inkdc/internal/ctxlog"
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/store"
)

// Options tunes a batch verification.
type Options struct {
	// Config overrides the directory's inkdc.hcl.
	Config *config.Config

	// Store records the run. When nil, the config's database is opened
	// if one is named; otherwise nothing is recorded.
	Store *store.Store

	// RunIDs generates the recorded run's ID. Defaults to UUIDv7.
	RunIDs store.RunIDGenerator
}

// Verify decompiles every compiled story in dir and compares it with its
// expected source. Per-file failures are reported, not returned; the
// error is reserved for failures of the batch itself.
func Verify(ctx context.Context, dir string, opts Options) (*Report, error) {
	log := ctxlog.FromContext(ctx)

	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.LoadDir(ctx, dir)
		if err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	report := NewReport(dir)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || cfg.Skipped(name) {
			continue
		}

		var res FileResult
		switch {
		case strings.HasSuffix(name, cfg.SourceExtension):
			res = verifyPair(ctx, dir, name, cfg.CompiledSuffix)
		case isCaseFile(name):
			res = verifyCaseFile(ctx, filepath.Join(dir, name))
		default:
			continue
		}
		log.Debug("verified", "name", name, "status", res.Status)
		report.Add(res)
	}

	st := opts.Store
	if st == nil && cfg.Database != "" {
		st, err = store.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		defer st.Close()
	}
	if st != nil {
		if err := record(ctx, st, opts.RunIDs, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func isCaseFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// verifyPair checks name against the compiled story next to it.
func verifyPair(ctx context.Context, dir, name, compiledSuffix string) FileResult {
	expected, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return FileResult{Name: name, Status: StatusError, Error: err.Error()}
	}
	data, err := os.ReadFile(filepath.Join(dir, name+compiledSuffix))
	if err != nil {
		return FileResult{Name: name, Status: StatusError, Error: fmt.Sprintf("read compiled story: %v", err)}
	}
	return Check(ctx, name, data, string(expected))
}

func verifyCaseFile(ctx context.Context, path string) FileResult {
	name := filepath.Base(path)
	c, err := LoadCaseFile(path)
	if err != nil {
		return FileResult{Name: name, Status: StatusError, Error: err.Error()}
	}
	return Check(ctx, name, []byte(c.Story), c.Source)
}

// Check decompiles one compiled story and compares the result with
// expected. Line endings of expected are normalized first.
func Check(ctx context.Context, name string, data []byte, expected string) FileResult {
	tree, source, err := safeDecompile(ctx, data)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("decompile failed", "name", name, "error", err)
		return FileResult{Name: name, Status: StatusError, Error: err.Error()}
	}

	res := FileResult{Name: name, SourceHash: ir.SourceHash(source)}
	if res.StoryHash, err = ir.StoryHash(tree); err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}

	expected = strings.ReplaceAll(expected, "\r\n", "\n")
	if source == expected {
		res.Status = StatusOK
		return res
	}
	res.Status = StatusMismatch
	res.Error = errMismatch
	res.Diff = unifiedDiff(name, expected, source)
	return res
}

func unifiedDiff(name, expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(expected),
		B:        splitLines(actual),
		FromFile: name,
		ToFile:   name + " (decompiled)",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it
// yields no empty trailing line for newline-terminated text.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); lines[n-1] == "" {
		return lines[:n-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}

// record writes report to st as a new run.
func record(ctx context.Context, st *store.Store, gen store.RunIDGenerator, report *Report) error {
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	run, err := st.BeginRun(ctx, gen, report.Directory)
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		err := st.WriteResult(ctx, store.Result{
			RunID:      run.ID,
			Name:       res.Name,
			OK:         res.OK(),
			Error:      res.Error,
			StoryHash:  res.StoryHash,
			SourceHash: res.SourceHash,
		})
		if err != nil {
			return err
		}
	}
	run.Passed, run.Failed = report.Passed, report.Failed
	if err := st.FinishRun(ctx, run); err != nil {
		return err
	}
	report.RunID = run.ID
	return nil
}
