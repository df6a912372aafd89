package csvfile

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a csvfile Sink.
type Option func(*Sink)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(s *Sink) { s.bufSize = bytes }
}

// Sink writes the canonical CSV snapshot to a file. The dataset arrives
// complete, so Write stages into a temp file beside the target and
// renames over it; a failed run never leaves a half-written artifact.
type Sink struct {
	path    string
	bufSize int
}

// New creates a file sink targeting the given path. Parent directories
// are created on write.
func New(path string, opts ...Option) *Sink {
	s := &Sink{path: path, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Write(_ context.Context, ds model.Dataset) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csvfile output: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("csvfile output: %w", err)
	}
	w := bufio.NewWriterSize(tmp, s.bufSize)

	if err := output.EncodeCSV(w, ds); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("csvfile output: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("csvfile output: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("csvfile output: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("csvfile output: rename: %w", err)
	}

	slog.Info("saved dataset", "path", s.path, "rows", len(ds))
	return nil
}

func (s *Sink) Close() error {
	return nil
}
