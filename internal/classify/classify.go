// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a free-text query is specific enough to
// search for papers or needs a clarifying question first.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultModel is the model used for clarity checks.
const DefaultModel = "gemini-2.5-flash-lite"

// fencePattern matches markdown code fence markers, with or without a
// language tag.
var fencePattern = regexp.MustCompile("```[a-zA-Z]*\\n?")

// Classifier asks the LLM for a ClarityVerdict.
type Classifier struct {
	gen    llm.Generator
	model  string
	logger *zap.Logger
}

// New returns a Classifier. An empty model selects DefaultModel.
func New(gen llm.Generator, model string, logger *zap.Logger) *Classifier {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{gen: gen, model: model, logger: logger}
}

// Classify returns the clarity verdict for query. A reply that does not
// parse as a verdict is treated as clear, with the raw reply as message.
// LLM errors are returned unchanged.
func (c *Classifier) Classify(ctx context.Context, query string) (types.ClarityVerdict, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.ClarityVerdict{}, fmt.Errorf("query is required: %w", apperr.ErrValidation)
	}

	prompt, err := llm.ClarityPrompt(query)
	if err != nil {
		return types.ClarityVerdict{}, fmt.Errorf("rendering clarity prompt: %w", err)
	}

	text, err := c.gen.Generate(ctx, llm.Request{Model: c.model, System: llm.ClaritySystem, Prompt: prompt})
	if err != nil {
		return types.ClarityVerdict{}, fmt.Errorf("classifying query: %w", err)
	}

	verdict, err := ParseVerdict(text)
	if err != nil {
		c.logger.Warn("clarity reply did not parse, treating query as clear",
			zap.String("query", query), zap.Error(err))
		return fallbackVerdict(text), nil
	}
	return verdict, nil
}

// ParseVerdict strictly decodes an LLM reply into a ClarityVerdict. Markdown
// code fences are stripped first. The clarity field must be "ambiguous" or
// "clear"; any violation returns an error wrapping apperr.ErrParse.
func ParseVerdict(text string) (types.ClarityVerdict, error) {
	clean := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if clean == "" {
		return types.ClarityVerdict{}, fmt.Errorf("empty reply: %w", apperr.ErrParse)
	}

	var v types.ClarityVerdict
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&v); err != nil {
		return types.ClarityVerdict{}, fmt.Errorf("decoding verdict: %w: %v", apperr.ErrParse, err)
	}
	if dec.More() {
		return types.ClarityVerdict{}, fmt.Errorf("trailing content after verdict: %w", apperr.ErrParse)
	}
	if !v.Clarity.Valid() {
		return types.ClarityVerdict{}, fmt.Errorf("clarity %q: %w", v.Clarity, apperr.ErrParse)
	}
	if v.Options == nil {
		v.Options = []string{}
	}
	if v.RefinedQuery != nil && strings.TrimSpace(*v.RefinedQuery) == "" {
		v.RefinedQuery = nil
	}
	return v, nil
}

func fallbackVerdict(raw string) types.ClarityVerdict {
	return types.ClarityVerdict{
		Clarity: types.ClarityClear,
		Message: raw,
		Options: []string{},
	}
}
