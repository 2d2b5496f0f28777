// Package store records batch verification runs in SQLite.
//
// Each batch run writes one row to runs and one row per verified file to
// results, keyed by the run ID:
//   - runs: directory, tool and IR versions, pass/fail totals
//   - results: file name, outcome, error text, story and source hashes
//
// # Ordering
//
// Runs are ordered by a logical seq column assigned at insert time, never
// by timestamps. Results are returned ORDER BY name COLLATE BINARY so the
// same run always reads back identically.
//
// # Connection settings
//
// Open passes WAL journaling, synchronous=NORMAL, a 5 second busy timeout
// and foreign key enforcement as go-sqlite3 DSN parameters. The schema
// version lives in user_version; a log stamped by a newer build is refused.
package store
