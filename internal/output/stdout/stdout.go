package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
)

// Sink writes the canonical CSV to a writer, os.Stdout by default. Meant
// for ad-hoc inspection and shell piping.
type Sink struct {
	w io.Writer
}

// New creates a stdout Sink.
func New() *Sink {
	return &Sink{w: os.Stdout}
}

// NewWriter creates a Sink targeting an arbitrary writer.
func NewWriter(w io.Writer) *Sink {
	return &Sink{w: w}
}

func (s *Sink) Write(_ context.Context, ds model.Dataset) error {
	if err := output.EncodeCSV(s.w, ds); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
