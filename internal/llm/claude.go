// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/httputil"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	// defaultClaudeModel replaces Gemini model names the shared config carries.
	defaultClaudeModel = "claude-sonnet-4-5"

	// defaultClaudeMaxTokens caps a response when MaxTokens is unset.
	defaultClaudeMaxTokens = 2048
)

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate calls the Claude API with one user message and returns the
// concatenated text blocks.
func (c *ClaudeBackend) Generate(ctx context.Context, req Request) (string, error) {
	model := claudeModel(req.Model)
	if model == "" {
		model = claudeModel(c.Model)
	}
	if model == "" {
		model = defaultClaudeModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []claudeMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := httputil.Do(ctx, client, httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var cResp claudeResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w: %w", apperr.ErrUpstream, err)
	}

	var sb strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response: %w", apperr.ErrUpstream)
	}
	return sb.String(), nil
}

// claudeModel drops model names that belong to another provider.
func claudeModel(name string) string {
	if strings.HasPrefix(name, "claude") {
		return name
	}
	return ""
}
