// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func withClaudeURL(t *testing.T, url string) {
	t.Helper()
	orig := claudeAPIURL
	claudeAPIURL = url
	t.Cleanup(func() { claudeAPIURL = orig })
}

func withGeminiURL(t *testing.T, url string) {
	t.Helper()
	orig := geminiBaseURL
	geminiBaseURL = url
	t.Cleanup(func() { geminiBaseURL = orig })
}

// --- Claude ---

func TestClaudeGenerate(t *testing.T) {
	var got claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Hello "},{"type":"tool_use"},{"type":"text","text":"there"}]}`)
	}))
	defer ts.Close()
	withClaudeURL(t, ts.URL)

	b := &ClaudeBackend{APIKey: "sk-test", Model: "claude-sonnet-4-5", Client: ts.Client()}
	text, err := b.Generate(context.Background(), Request{System: "persona", Prompt: "hi", Model: "gemini-2.5-pro"})
	require.NoError(t, err)

	assert.Equal(t, "Hello there", text)
	assert.Equal(t, "claude-sonnet-4-5", got.Model, "gemini model names are replaced")
	assert.Equal(t, "persona", got.System)
	assert.Equal(t, defaultClaudeMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[0].Content)
}

func TestClaudeDefaultModel(t *testing.T) {
	var got claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer ts.Close()
	withClaudeURL(t, ts.URL)

	b := &ClaudeBackend{APIKey: "k", Model: "gemini-2.5-pro", MaxTokens: 99, Client: ts.Client()}
	_, err := b.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, defaultClaudeModel, got.Model)
	assert.Equal(t, 99, got.MaxTokens)
}

func TestClaudeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error"}}`, apperr.ErrRateLimited},
		{"server error", http.StatusInternalServerError, `{}`, apperr.ErrUpstream},
		{"empty content", http.StatusOK, `{"content":[]}`, apperr.ErrUpstream},
		{"malformed", http.StatusOK, `{"content":`, apperr.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()
			withClaudeURL(t, ts.URL)

			b := &ClaudeBackend{APIKey: "k", Client: ts.Client()}
			_, err := b.Generate(context.Background(), Request{Prompt: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "err = %v", err)
		})
	}
}

// --- Gemini ---

func TestGeminiGenerate(t *testing.T) {
	var path string
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"generated"}]}}]}`)
	}))
	defer ts.Close()
	withGeminiURL(t, ts.URL)

	g, err := NewGeminiBackend(context.Background(), "test-key", "gemini-2.5-pro", ts.Client())
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{Model: "gemini-2.5-flash-lite", System: "be brief", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "generated", text)
	assert.Contains(t, path, "gemini-2.5-flash-lite")
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer ts.Close()
	withGeminiURL(t, ts.URL)

	g, err := NewGeminiBackend(context.Background(), "test-key", "", ts.Client())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, apperr.IsRateLimited(err), "err = %v", err)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiBackend(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// --- Factory ---

func TestNewSelectsProvider(t *testing.T) {
	g, err := New(context.Background(), types.LLMConfig{
		Provider:        types.ProviderClaude,
		AnthropicAPIKey: "k",
		Models:          types.LLMModels{Chat: "claude-opus-4"},
		MaxTokens:       512,
	}, nil)
	require.NoError(t, err)
	cb, ok := g.(*ClaudeBackend)
	require.True(t, ok, "got %T", g)
	assert.Equal(t, "claude-opus-4", cb.Model)
	assert.Equal(t, 512, cb.MaxTokens)

	_, err = New(context.Background(), types.LLMConfig{Provider: types.ProviderClaude}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), types.LLMConfig{Provider: "openai"}, nil)
	assert.Error(t, err)
}

func TestGeneratorFunc(t *testing.T) {
	var f Generator = GeneratorFunc(func(_ context.Context, req Request) (string, error) {
		return strings.ToUpper(req.Prompt), nil
	})
	got, err := f.Generate(context.Background(), Request{Prompt: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "ABC", got)
}

// --- Prompts ---

func TestClarityPromptIncludesQuery(t *testing.T) {
	p, err := ClarityPrompt("Animal")
	require.NoError(t, err)
	assert.Equal(t, "User query: Animal", p)
	assert.Contains(t, ClaritySystem, `"clarity"`)
	assert.Contains(t, ClaritySystem, "5. Other (please specify)")
}

func TestTitlePrompt(t *testing.T) {
	p, err := TitlePrompt("2. Animal behavior", "Animal")
	require.NoError(t, err)
	assert.Contains(t, p, "User query: 2. Animal behavior")
	assert.Contains(t, p, "Context: Animal")
	assert.Contains(t, TitleSystem, "{title:")
}

func TestSummaryPrompt(t *testing.T) {
	y := 2017
	p, err := SummaryPrompt("attention", []types.RecommendedPaper{
		{Title: "Attention Is All You Need", Authors: []types.Author{{Name: "Vaswani"}, {Name: "Shazeer"}}, Year: &y},
		{Title: "Untitled Draft"},
	})
	require.NoError(t, err)
	assert.Contains(t, p, `searched for "attention"`)
	assert.Contains(t, p, "1. Attention Is All You Need by Vaswani, Shazeer (2017)")
	assert.Contains(t, p, "2. Untitled Draft\n")
}
