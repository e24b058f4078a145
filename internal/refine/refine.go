// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine turns a clarification choice into one canonical paper
// title and searches for papers related to it.
package refine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// DefaultModel is the model used to name a paper title.
	DefaultModel = "gemini-2.5-flash-lite"

	// DefaultSearchTimeout bounds the search run after refinement.
	DefaultSearchTimeout = 30 * time.Second
)

// titleEnvelope matches the {title: ...} reply format, with or without a
// quoted key.
var titleEnvelope = regexp.MustCompile(`(?is)\{\s*"?title"?\s*:\s*(.+?)\s*\}`)

// Searcher runs a recommendation search for a query. The orchestrator
// implements it in-process; RemoteSearcher implements it over HTTP.
type Searcher interface {
	Search(ctx context.Context, query string) (types.SearchOutcome, error)
}

// Refiner names a paper for a refinement choice and searches for it.
type Refiner struct {
	gen      llm.Generator
	searcher Searcher
	model    string
	timeout  time.Duration
	logger   *zap.Logger
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithModel sets the model used to name the title.
func WithModel(model string) Option {
	return func(r *Refiner) {
		if model != "" {
			r.model = model
		}
	}
}

// WithSearchTimeout sets the bound on the follow-up search.
func WithSearchTimeout(d time.Duration) Option {
	return func(r *Refiner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Refiner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Refiner.
func New(gen llm.Generator, searcher Searcher, opts ...Option) *Refiner {
	r := &Refiner{
		gen:      gen,
		searcher: searcher,
		model:    DefaultModel,
		timeout:  DefaultSearchTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refine asks the LLM for one paper title matching option in the light of
// the conversation context, then searches for related papers.
//
// LLM failures return apperr.ErrRefine wrapping the cause. A search that
// exceeds the bound returns apperr.ErrRefine. A rate-limited search keeps
// apperr.ErrRateLimited and returns the refined title with an empty
// recommendation list.
func (r *Refiner) Refine(ctx context.Context, option, convContext string) (types.RefineResult, error) {
	option = strings.TrimSpace(option)
	if option == "" {
		return types.RefineResult{}, fmt.Errorf("option is required: %w", apperr.ErrValidation)
	}

	prompt, err := llm.TitlePrompt(option, convContext)
	if err != nil {
		return types.RefineResult{}, fmt.Errorf("rendering title prompt: %w", err)
	}
	text, err := r.gen.Generate(ctx, llm.Request{Model: r.model, System: llm.TitleSystem, Prompt: prompt})
	if err != nil {
		return types.RefineResult{}, fmt.Errorf("%w: naming paper: %w", apperr.ErrRefine, err)
	}

	title, err := ParseTitle(text)
	if err != nil {
		title = cleanTitle(text)
		r.logger.Warn("title reply had no envelope, using raw text",
			zap.String("option", option), zap.String("title", title))
	}
	if title == "" {
		return types.RefineResult{}, fmt.Errorf("%w: model returned no title", apperr.ErrRefine)
	}

	result := types.RefineResult{RefinedQuery: title, Recommendations: []types.RecommendedPaper{}}

	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outcome, err := r.searcher.Search(sctx, title)
	switch {
	case err == nil:
	case apperr.IsRateLimited(err):
		return result, fmt.Errorf("searching %q: %w", title, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(sctx.Err(), context.DeadlineExceeded):
		return result, fmt.Errorf("%w: search for %q exceeded %s: %v", apperr.ErrRefine, title, r.timeout, err)
	default:
		return result, fmt.Errorf("%w: searching %q: %v", apperr.ErrRefine, title, err)
	}

	if outcome.Recommendations != nil {
		result.Recommendations = outcome.Recommendations
	}
	r.logger.Info("query refined",
		zap.String("option", option),
		zap.String("title", title),
		zap.Int("recommendations", len(result.Recommendations)))
	return result, nil
}

// ParseTitle extracts the title from a {title: ...} reply. It returns an
// error wrapping apperr.ErrParse when no envelope is present or the title
// is empty.
func ParseTitle(text string) (string, error) {
	m := titleEnvelope.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("no title envelope: %w", apperr.ErrParse)
	}
	title := cleanTitle(m[1])
	if title == "" {
		return "", fmt.Errorf("empty title: %w", apperr.ErrParse)
	}
	return title, nil
}

// cleanTitle trims whitespace, wrapping quotes and a trailing period.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.Trim(s, "\"'` ")
	return strings.TrimSpace(s)
}
