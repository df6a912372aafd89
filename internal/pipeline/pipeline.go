// Package pipeline orchestrates the per-source engagement runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/input"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// ReadFunc loads one source's raw table.
type ReadFunc func(ctx context.Context, path, charset string) (model.Table, error)

// SourceRun holds everything one source needs: where its raw data lives,
// how to filter it, and where the mapped dataset goes.
type SourceRun struct {
	Path    string
	Charset string
	Filter  source.FilterConfig
	Sink    output.Sink
}

// Option configures a Runner.
type Option func(*Runner)

// WithReader replaces the table reader. Default: input.ReadTable.
func WithReader(read ReadFunc) Option {
	return func(r *Runner) { r.read = read }
}

// Runner executes the per-source pipelines in the canonical source order.
type Runner struct {
	read    ReadFunc
	sources map[string]SourceRun
}

// New creates a Runner over the given per-source configurations.
func New(sources map[string]SourceRun, opts ...Option) *Runner {
	r := &Runner{
		read:    input.ReadTable,
		sources: sources,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every source in order, stopping at the first failure.
// Sources after a failed one are not attempted. The returned map holds
// the retained dataset for each completed source.
func (r *Runner) Run(ctx context.Context) (map[string]model.Dataset, error) {
	results := make(map[string]model.Dataset, len(source.Order))
	for _, name := range source.Order {
		run, ok := r.sources[name]
		if !ok {
			return nil, fmt.Errorf("source %s: not configured", name)
		}
		ds, err := r.RunSource(ctx, name, run)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		results[name] = ds
	}
	return results, nil
}

// RunSource executes one source pipeline: read the raw table, map it to
// the canonical schema, keep the rows inside the retention window, and
// hand the result to the source's sink.
func (r *Runner) RunSource(ctx context.Context, name string, run SourceRun) (model.Dataset, error) {
	mapper, err := source.Get(name)
	if err != nil {
		return nil, err
	}

	tbl, err := r.read(ctx, run.Path, run.Charset)
	if err != nil {
		return nil, err
	}

	mapped, err := mapper.Map(tbl, run.Filter)
	if err != nil {
		return nil, err
	}

	retained := retain(mapped, run.Filter.Window)

	slog.Info("source mapped",
		"source", name,
		"rows_in", len(tbl.Rows),
		"mapped", len(mapped),
		"retained", len(retained))

	if run.Sink != nil {
		if err := run.Sink.Write(ctx, retained); err != nil {
			return nil, err
		}
	}
	return retained, nil
}

// retain keeps rows whose activity date falls inside the window,
// preserving input order.
func retain(ds model.Dataset, w dates.Window) model.Dataset {
	kept := make(model.Dataset, 0, len(ds))
	for _, e := range ds {
		if w.Contains(e.ActivityDate) {
			kept = append(kept, e)
		}
	}
	return kept
}
