// Package run holds the per-run context: identity, reference instant,
// output area, and log wiring.
package run

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kiriyama-dx/hcpmix/internal/config"
	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/logging"
)

// LogFileName is the run log inside the output directory.
const LogFileName = "pipeline.log"

// Context carries one run's identity and shared handles.
type Context struct {
	ID        string
	StartedAt time.Time
	Reference time.Time
	OutputDir string

	Log     *slog.Logger
	logFile *os.File
}

// New prepares the output area and logging for one run. The output
// directory is created if absent and cleared of previous artifacts.
// pipeline.log is spared from the sweep, which keeps an external tail's
// handle valid, and truncated for the fresh run. Every log line of the
// process carries the run id.
func New(cfg config.Runtime) (*Context, error) {
	startedAt := time.Now().UTC()

	reference := startedAt
	if cfg.ReferenceDate != "" {
		d, err := dates.Parse(cfg.ReferenceDate)
		if err != nil {
			return nil, fmt.Errorf("run: reference date: %w", err)
		}
		reference = d
	}

	if err := resetOutputDir(cfg.OutputDir); err != nil {
		return nil, err
	}

	logPath := filepath.Join(cfg.OutputDir, LogFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("run: open log: %w", err)
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr, logFile)

	id := uuid.NewString()
	logger := slog.Default().With("run_id", id)
	slog.SetDefault(logger)

	return &Context{
		ID:        id,
		StartedAt: startedAt,
		Reference: reference,
		OutputDir: cfg.OutputDir,
		Log:       logger,
		logFile:   logFile,
	}, nil
}

// Window returns the retention window for the given horizon, anchored
// on this run's reference instant.
func (c *Context) Window(months int) dates.Window {
	return dates.Window{Months: months, Reference: c.Reference}
}

// Close releases the run's log file.
func (c *Context) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// resetOutputDir creates dir if needed and removes its regular files,
// sparing the run log.
func resetOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("run: create output dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("run: read output dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == LogFileName {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("run: clear output dir: %w", err)
		}
	}
	return nil
}
