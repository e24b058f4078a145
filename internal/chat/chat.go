// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat answers free-form research questions with a fixed
// academic-mentor persona. Each call is independent; history is not sent
// to the model.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultModel is the model used for chat replies.
const DefaultModel = "gemini-2.5-pro"

// Assistant produces chat replies and paper summaries.
type Assistant struct {
	gen    llm.Generator
	model  string
	logger *zap.Logger
}

// New returns an Assistant. An empty model selects DefaultModel.
func New(gen llm.Generator, model string, logger *zap.Logger) *Assistant {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{gen: gen, model: model, logger: logger}
}

// Chat returns the assistant's reply to message. userID is only used for
// logging; an empty one is reported as types.DefaultUserID.
func (a *Assistant) Chat(ctx context.Context, message, userID string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message is required: %w", apperr.ErrValidation)
	}
	if userID == "" {
		userID = types.DefaultUserID
	}

	prompt, err := llm.ChatPrompt(message)
	if err != nil {
		return "", fmt.Errorf("rendering chat prompt: %w", err)
	}
	reply, err := a.gen.Generate(ctx, llm.Request{Model: a.model, System: llm.ChatSystem, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}

	a.logger.Debug("chat reply", zap.String("user_id", userID), zap.Int("reply_len", len(reply)))
	return reply, nil
}

// Summarize describes papers found for query in one paragraph. Callers
// decide what to do on error.
func (a *Assistant) Summarize(ctx context.Context, query string, papers []types.RecommendedPaper) (string, error) {
	if len(papers) == 0 {
		return "", fmt.Errorf("no papers to summarize: %w", apperr.ErrValidation)
	}
	prompt, err := llm.SummaryPrompt(query, papers)
	if err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}
	summary, err := a.gen.Generate(ctx, llm.Request{Model: a.model, System: llm.ChatSystem, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("summarizing: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("empty summary: %w", apperr.ErrParse)
	}
	return summary, nil
}
