// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/research-assistant/internal/apperr"
)

// geminiBaseURL overrides the Gemini API endpoint when non-empty.
// Package-level var for test substitution.
var geminiBaseURL = ""

// GeminiBackend generates text with the Gemini API via google.golang.org/genai.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini backend. model is the default used when
// a Request carries none.
func NewGeminiBackend(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", apperr.ErrValidation)
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if geminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Generate sends one user turn, with req.System as the system instruction.
func (g *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	var cfg *genai.GenerateContentConfig
	if strings.TrimSpace(req.System) != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text: %w", apperr.ErrUpstream)
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("gemini: %w: %s", apperr.ErrRateLimited, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("gemini: %w", err)
	}
	return fmt.Errorf("gemini: %w: %w", apperr.ErrUpstream, err)
}
