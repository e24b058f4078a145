// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the error kinds shared across the service and maps
// them to HTTP status codes. Callers wrap a kind with fmt.Errorf("...: %w")
// and test for it with errors.Is.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrRateLimited indicates an upstream API answered HTTP 429.
	ErrRateLimited = errors.New("upstream rate limit exceeded")

	// ErrUpstream indicates any other failure talking to an external API.
	ErrUpstream = errors.New("upstream request failed")

	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a lookup matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates LLM output that does not match the expected shape.
	// Call sites recover from it with an explicit fallback.
	ErrParse = errors.New("unparseable model output")

	// ErrRefine indicates the refinement flow could not produce results.
	ErrRefine = errors.New("failed to refine query")
)

// IsRateLimited reports whether err carries ErrRateLimited.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// HTTPStatus maps an error to the status code the HTTP layer responds with.
// Rate limiting wins over every other kind so the UI can always branch on it.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
