// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the generative model behind a single Generate call.
// Classifier, refiner and chat assistant depend only on Generator so tests
// can supply a fake and deployments can switch between Gemini and Claude.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Request is one single-turn generation.
type Request struct {
	// Model overrides the backend default when non-empty.
	Model string

	// System is the persona or instruction block. Backends that support
	// system instructions send it separately; otherwise it is prefixed.
	System string

	// Prompt is the user turn.
	Prompt string
}

// Generator produces text for a prompt. Implementations must map provider
// rate limiting to apperr.ErrRateLimited and other provider failures to
// apperr.ErrUpstream.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New builds the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg types.LLMConfig, httpClient *http.Client) (Generator, error) {
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Models.Chat, httpClient)
	case types.ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required for provider %q", cfg.Provider)
		}
		return &ClaudeBackend{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.Models.Chat,
			MaxTokens: cfg.MaxTokens,
			Client:    httpClient,
		}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
