package input

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Preflight verifies every configured source path is reachable before
// any pipeline work starts. Local paths are stat'ed; http(s) paths get a
// HEAD request. Checks run concurrently and the first failure wins.
func Preflight(ctx context.Context, paths map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, path := range paths {
		name, path := name, path
		g.Go(func() error {
			if err := probe(ctx, path); err != nil {
				return fmt.Errorf("%s: %w", name, &UnavailableError{Path: path, Err: err})
			}
			return nil
		})
	}
	return g.Wait()
}

func probe(ctx context.Context, path string) error {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, path, nil)
		if err != nil {
			return err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
