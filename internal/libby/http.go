package libby

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	shelfsyncerrors "github.com/lepinkainen/shelfsync/internal/errors"
)

// getJSON issues a GET with retries. Only transport-level failures and rate
// limit responses are retried; anything else surfaces immediately.
func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if err := c.doJSONRequest(ctx, http.MethodGet, endpoint, nil, target); err != nil {
			lastErr = err
			if !isRetryable(err) || attempt == c.retryAttempts {
				return err
			}
			time.Sleep(backoffDelay(attempt))
			continue
		}
		return nil
	}
	return lastErr
}

// sendJSON issues a single write request with a JSON body. Writes are never
// retried: a timed-out tagging call may still have been applied, and a
// second attempt would not be idempotent from the server's point of view.
func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload any) error {
	return c.doJSONRequest(ctx, method, endpoint, payload, nil)
}

func (c *Client) doJSONRequest(ctx context.Context, method, endpoint string, payload, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	// The services only answer requests that look like the Libby web app.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Origin", "https://libbyapp.com")
	req.Header.Set("Referer", "https://libbyapp.com")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return shelfsyncerrors.NewRateLimitErrorWithRetry("libby: rate limited", retryAfter(resp))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("libby: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

func retryAfter(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isRetryable(err error) bool {
	if shelfsyncerrors.IsRateLimitError(err) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		// Network errors (connection resets etc.)
		if strings.Contains(urlErr.Error(), "connection") {
			return true
		}
	}
	return false
}

func backoffDelay(attempt int) time.Duration {
	// exponential backoff capped at 10 seconds
	delay := time.Duration(1<<uint(attempt-1)) * time.Second
	if delay > 10*time.Second {
		return 10 * time.Second
	}
	return delay
}
