package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kiriyama-dx/hcpmix/internal/config"
	"github.com/kiriyama-dx/hcpmix/internal/consolidate"
	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/input"
	"github.com/kiriyama-dx/hcpmix/internal/output"
	"github.com/kiriyama-dx/hcpmix/internal/output/csvfile"
	"github.com/kiriyama-dx/hcpmix/internal/output/multi"
	"github.com/kiriyama-dx/hcpmix/internal/output/sqlite"
	"github.com/kiriyama-dx/hcpmix/internal/output/stdout"
	"github.com/kiriyama-dx/hcpmix/internal/output/upload"
	"github.com/kiriyama-dx/hcpmix/internal/pipeline"
	"github.com/kiriyama-dx/hcpmix/internal/run"
	"github.com/kiriyama-dx/hcpmix/internal/source"

	// Register source mappers.
	_ "github.com/kiriyama-dx/hcpmix/internal/source/call"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/edetail"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/events"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/reach"
)

func main() {
	if err := realMain(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func realMain() error {
	rt, err := config.LoadRuntime()
	if err != nil {
		return err
	}

	flag.StringVar(&rt.ConfigDir, "config", rt.ConfigDir, "directory holding the pipeline definition files")
	flag.StringVar(&rt.OutputDir, "out", rt.OutputDir, "directory receiving run artifacts")
	flag.StringVar(&rt.LogLevel, "log-level", rt.LogLevel, "debug, info, warn, or error")
	flag.StringVar(&rt.LogFormat, "log-format", rt.LogFormat, "text or json")
	flag.StringVar(&rt.ReferenceDate, "reference", rt.ReferenceDate, "retention reference date (YYYY-MM-DD, default today)")
	toStdout := flag.Bool("stdout", false, "also write the unified dataset to stdout")
	dryRun := flag.Bool("dry-run", false, "map and count without writing artifacts")
	flag.Parse()

	rctx, err := run.New(rt)
	if err != nil {
		return err
	}
	defer rctx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		rctx.Log.Warn("shutting down", "signal", sig.String())
		cancel()
	}()

	runs := make(map[string]pipeline.SourceRun, len(source.Order))
	paths := make(map[string]string, len(source.Order))
	for _, name := range source.Order {
		file, err := config.Locate(rt.ConfigDir, name)
		if err != nil {
			return err
		}
		cfg, err := config.LoadSource(file)
		if err != nil {
			return err
		}

		sr := pipeline.SourceRun{
			Path:    cfg.Source.Path,
			Charset: cfg.Source.Charset,
			Filter: source.FilterConfig{
				Predicates: cfg.Filters.Predicates,
				Window:     rctx.Window(*cfg.Filters.Months),
			},
		}
		if !*dryRun {
			out := cfg.Output.CSV
			if out == "" {
				out = filepath.Join(rt.OutputDir, name+".csv")
			}
			sr.Sink = csvfile.New(out)
		}
		runs[name] = sr
		paths[name] = cfg.Source.Path
	}

	unifiedFile, err := config.Locate(rt.ConfigDir, "unified")
	if err != nil {
		return err
	}
	unifiedCfg, err := config.LoadUnified(unifiedFile)
	if err != nil {
		return err
	}

	if err := input.Preflight(ctx, paths); err != nil {
		return err
	}

	rctx.Log.Info("starting run",
		"reference", rctx.Reference.Format(dates.DayFormat),
		"config_dir", rt.ConfigDir,
		"output_dir", rt.OutputDir,
		"dry_run", *dryRun)

	results, err := pipeline.New(runs).Run(ctx)
	if err != nil {
		return err
	}

	unified, err := consolidate.Concat(results, source.Order)
	if err != nil {
		return err
	}

	if !*dryRun {
		sink, err := unifiedSink(unifiedCfg.Output, rt.OutputDir, rctx.ID, *toStdout)
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, unified); err != nil {
			sink.Close()
			return fmt.Errorf("unified output: %w", err)
		}
		if err := sink.Close(); err != nil {
			return fmt.Errorf("unified output: %w", err)
		}
	}

	rctx.Log.Info("run complete",
		"call", len(results[source.Call]),
		"edetail", len(results[source.Edetail]),
		"events", len(results[source.Events]),
		"reach", len(results[source.Reach]),
		"total", len(unified),
		"elapsed", time.Since(rctx.StartedAt).Round(time.Millisecond).String())
	return nil
}

// unifiedSink assembles the consolidated dataset's destinations from the
// unified definition file plus the -stdout override.
func unifiedSink(out config.UnifiedOutput, outputDir, runID string, toStdout bool) (output.Sink, error) {
	var sinks []output.Sink

	csvPath := out.CSV
	if csvPath == "" {
		csvPath = filepath.Join(outputDir, "unified.csv")
	}
	sinks = append(sinks, csvfile.New(csvPath))

	if out.SQLite != "" {
		db, err := sqlite.Open(out.SQLite, runID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if out.UploadURL != "" {
		sinks = append(sinks, upload.New(out.UploadURL))
	}
	if toStdout || out.Stdout {
		sinks = append(sinks, stdout.New())
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return multi.New(sinks...), nil
}
