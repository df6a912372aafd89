package input

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxRetries = 3

var httpClient = &http.Client{Timeout: 60 * time.Second}

// fetch GETs a source export over HTTP. Retries on 5xx with exponential
// backoff (1s, 2s, 4s); anything else fails immediately. The caller owns
// the returned body.
func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(time.Duration(1<<(attempt-1)) * time.Second)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, text/plain")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
