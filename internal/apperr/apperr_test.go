// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"rate limited", fmt.Errorf("recommend: %w", ErrRateLimited), http.StatusTooManyRequests},
		{"validation", fmt.Errorf("add paper: %w", ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("resolve: %w", ErrNotFound), http.StatusNotFound},
		{"deadline", fmt.Errorf("search: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"upstream", fmt.Errorf("search: %w", ErrUpstream), http.StatusInternalServerError},
		{"refine", fmt.Errorf("%w: boom", ErrRefine), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"rate limit inside refine", fmt.Errorf("%w: %w", ErrRefine, ErrRateLimited), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(fmt.Errorf("wrapped: %w", ErrRateLimited)))
	assert.False(t, IsRateLimited(ErrUpstream))
}
