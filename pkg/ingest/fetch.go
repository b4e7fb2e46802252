package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MaxFetchBytes caps a remote export held in memory.
const MaxFetchBytes = 256 << 20

// fetchAttempts and fetchBackoff drive the retry loop; tests shorten them.
var (
	fetchAttempts = 3
	fetchBackoff  = time.Second
)

// Fetch downloads a remote export into memory with retries. Only http and
// https URLs with a host are accepted.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := checkURL(url); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 5 * time.Minute}

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * fetchBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes+1))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if len(data) > MaxFetchBytes {
			return nil, fmt.Errorf("export at %s exceeds %d bytes", url, MaxFetchBytes)
		}
		return data, nil
	}
	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", url, fetchAttempts, lastErr)
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid export url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q: only http and https exports can be fetched", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("export url %q has no host", raw)
	}
	return nil
}
