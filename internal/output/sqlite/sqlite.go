// Package sqlite persists datasets into a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
)

const schema = `CREATE TABLE IF NOT EXISTS engagements (
	hcp_id        TEXT NOT NULL,
	activity_date TEXT NOT NULL,
	yrmo          TEXT NOT NULL,
	id            TEXT NOT NULL,
	channel       TEXT NOT NULL,
	action        TEXT NOT NULL,
	run_id        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS engagements_run_id ON engagements (run_id);`

// insertChunk keeps multi-row inserts under SQLite's bind variable limit.
const insertChunk = 500

// Sink persists datasets into a SQLite file, one row per engagement,
// tagged with the run that produced them.
type Sink struct {
	db    *sql.DB
	path  string
	runID string
}

// Open opens (or creates) the SQLite file and ensures the schema exists.
func Open(path, runID string) (*Sink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite output: path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: open %s: %w", cleanPath, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite output: ping %s: %w", cleanPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite output: create schema: %w", err)
	}
	return &Sink{db: db, path: cleanPath, runID: runID}, nil
}

var _ output.Sink = (*Sink)(nil)

// Write replaces this run's rows with the given dataset in one transaction.
func (s *Sink) Write(ctx context.Context, ds model.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite output: begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM engagements WHERE run_id = ?`, s.runID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite output: clear run rows: %w", err)
	}

	for start := 0; start < len(ds); start += insertChunk {
		end := start + insertChunk
		if end > len(ds) {
			end = len(ds)
		}

		ins := sq.Insert("engagements").
			Columns("hcp_id", "activity_date", "yrmo", "id", "channel", "action", "run_id")
		for _, e := range ds[start:end] {
			rec := e.Record()
			ins = ins.Values(rec[0], rec[1], rec[2], rec[3], rec[4], rec[5], s.runID)
		}

		query, args, err := ins.ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite output: build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite output: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite output: commit: %w", err)
	}
	slog.Info("saved dataset", "db", s.path, "run_id", s.runID, "rows", len(ds))
	return nil
}

// Close closes the database handle.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
