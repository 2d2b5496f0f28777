package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/inkdc/internal/ir"
)

// ErrNoRuns is returned by LatestRun when nothing has been recorded.
var ErrNoRuns = errors.New("store: no runs recorded")

// Run is one batch verification of a directory.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Directory   string `json:"directory"`
	ToolVersion string `json:"tool_version"`
	IRVersion   string `json:"ir_version"`
	Passed      int    `json:"passed"`
	Failed      int    `json:"failed"`
}

// Result is the outcome for one file of a run.
type Result struct {
	RunID      string `json:"-"`
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	StoryHash  string `json:"story_hash,omitempty"`
	SourceHash string `json:"source_hash,omitempty"`
}

// BeginRun inserts a new run for directory with the next logical seq.
// The ID comes from gen so tests can fix it.
func (s *Store) BeginRun(ctx context.Context, gen RunIDGenerator, directory string) (*Run, error) {
	run := &Run{
		ID:          gen.Generate(),
		Directory:   directory,
		ToolVersion: ir.ToolVersion,
		IRVersion:   ir.IRVersion,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO runs (id, seq, directory, tool_version, ir_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?)
		RETURNING seq
	`, run.ID, run.Directory, run.ToolVersion, run.IRVersion).Scan(&run.Seq)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// WriteResult records one file's outcome.
// Uses ON CONFLICT DO NOTHING for idempotency - a second write for the same
// (run, name) is silently ignored.
func (s *Store) WriteResult(ctx context.Context, res Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (run_id, name, ok, error, story_hash, source_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, res.RunID, res.Name, res.OK, res.Error, res.StoryHash, res.SourceHash)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// FinishRun stores the pass/fail totals of a run.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET passed = ?, failed = ? WHERE id = ?
	`, run.Passed, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LatestRun returns the run with the highest seq and its results ordered
// by file name. Returns ErrNoRuns on an empty log.
func (s *Store) LatestRun(ctx context.Context) (*Run, []Result, error) {
	run := &Run{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, directory, tool_version, ir_version, passed, failed
		FROM runs
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Seq, &run.Directory, &run.ToolVersion, &run.IRVersion, &run.Passed, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNoRuns
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query latest run: %w", err)
	}

	results, err := s.readResults(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

func (s *Store) readResults(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, ok, error, story_hash, source_hash
		FROM results
		WHERE run_id = ?
		ORDER BY name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.RunID, &r.Name, &r.OK, &r.Error, &r.StoryHash, &r.SourceHash); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
