// Package upload delivers a rendered CSV artifact to an HTTP endpoint.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/output"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
)

// Option configures an upload Sink.
type Option func(*Sink)

// WithHeaders sets custom HTTP headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(s *Sink) { s.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// Sink PUTs the dataset as a single CSV document to an HTTP endpoint.
// Retries on 5xx with exponential backoff.
type Sink struct {
	client  *http.Client
	url     string
	headers map[string]string
}

// New creates an upload sink targeting the given URL.
func New(url string, opts ...Option) *Sink {
	s := &Sink{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ output.Sink = (*Sink)(nil)

// Write renders the dataset as CSV and uploads it.
func (s *Sink) Write(ctx context.Context, ds model.Dataset) error {
	var buf bytes.Buffer
	if err := output.EncodeCSV(&buf, ds); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if err := s.putWithRetry(ctx, buf.Bytes()); err != nil {
		return err
	}
	slog.Info("uploaded dataset", "url", s.url, "rows", len(ds))
	return nil
}

// Close is a no-op; every Write is self-contained.
func (s *Sink) Close() error { return nil }

// putWithRetry sends the body via HTTP PUT with retry on 5xx.
func (s *Sink) putWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(1<<(attempt-1)) * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("upload: %w", ctx.Err())
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		req.Header.Set("Content-Type", "text/csv")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("upload: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
