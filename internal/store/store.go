package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into user_version of every log this build
// writes. A log with a higher version came from a newer inkdc.
const schemaVersion = 1

// connParams configure each connection through the go-sqlite3 DSN.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Store is the batch run log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run log at path and applies the schema.
// Opening an existing log keeps its runs.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	// One writer at a time; a run is written sequentially anyway.
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read run log version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("run log has schema version %d, this inkdc supports up to %d", version, schemaVersion)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}
	return tx.Commit()
}
