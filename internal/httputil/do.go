// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single-attempt HTTP helper shared by the
// external API clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/research-assistant/internal/apperr"
)

// DefaultTimeout bounds a request whose context carries no deadline.
// Tests override this to exercise the timeout path quickly.
var DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 10 << 20

// StatusError records a non-2xx upstream response. It unwraps to
// apperr.ErrRateLimited for HTTP 429 and apperr.ErrUpstream otherwise.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return apperr.ErrRateLimited
	}
	return apperr.ErrUpstream
}

// Do executes req exactly once and returns the response body. There is no
// retry: a 429 comes back immediately as a StatusError wrapping
// apperr.ErrRateLimited so callers can surface it distinctly.
//
// When ctx has no deadline, DefaultTimeout is applied. Transport failures
// wrap apperr.ErrUpstream and keep the underlying cause (including
// context.DeadlineExceeded) reachable through errors.Is.
func Do(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", apperr.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

// snippet trims an error body to something safe to log.
func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
