// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend runs the top-level discovery flow: classify a query,
// and when it is clear resolve it to a paper, fetch recommendations,
// record the search and summarize the results.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// MaxRecommendations is the upstream cap on recommendations per search.
	MaxRecommendations = 10

	// MaxSummaryPapers is the number of top results described in a summary.
	MaxSummaryPapers = 5
)

// Classifier judges query clarity.
type Classifier interface {
	Classify(ctx context.Context, query string) (types.ClarityVerdict, error)
}

// PaperSource resolves queries to papers and fetches recommendations.
type PaperSource interface {
	ResolvePaperID(ctx context.Context, query string) (string, error)
	Recommend(ctx context.Context, paperID string, limit int) ([]types.RecommendedPaper, error)
}

// Summarizer describes a set of papers in prose.
type Summarizer interface {
	Summarize(ctx context.Context, query string, papers []types.RecommendedPaper) (string, error)
}

// SearchRecorder persists search records.
type SearchRecorder interface {
	AddSearchResult(ctx context.Context, in types.NewSearchResult) (types.SearchResult, error)
}

// Outcome is the result of HandleQuery: one of NeedsClarification, Results
// or Noop.
type Outcome interface {
	isOutcome()
}

// NeedsClarification asks the user to pick one of Options.
type NeedsClarification struct {
	Message string
	Options []string
	Verdict types.ClarityVerdict
}

// Results carries the papers found for a clear query.
type Results struct {
	Query   string
	Verdict types.ClarityVerdict
	types.SearchOutcome
}

// Noop means the verdict was ambiguous but gave the user nothing to
// answer; the caller renders nothing.
type Noop struct {
	Verdict types.ClarityVerdict
}

func (NeedsClarification) isOutcome() {}
func (Results) isOutcome()            {}
func (Noop) isOutcome()               {}

// Orchestrator wires the classifier, paper source, summarizer and store.
type Orchestrator struct {
	classifier Classifier
	source     PaperSource
	summarizer Summarizer
	recorder   SearchRecorder
	limit      int
	maxSummary int
	logger     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecommendationLimit sets how many recommendations are fetched,
// clamped to 1..MaxRecommendations.
func WithRecommendationLimit(n int) Option {
	return func(o *Orchestrator) { o.limit = clamp(n, 1, MaxRecommendations) }
}

// WithSummaryPapers sets how many top results feed the summary, clamped
// to 1..MaxSummaryPapers.
func WithSummaryPapers(n int) Option {
	return func(o *Orchestrator) { o.maxSummary = clamp(n, 1, MaxSummaryPapers) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an Orchestrator. summarizer and recorder may be nil, in
// which case summaries use the fallback text and searches are not saved.
func New(classifier Classifier, source PaperSource, summarizer Summarizer, recorder SearchRecorder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: classifier,
		source:     source,
		summarizer: summarizer,
		recorder:   recorder,
		limit:      MaxRecommendations,
		maxSummary: MaxSummaryPapers,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleQuery classifies query and either asks for clarification or runs
// exactly one Search. An ambiguous verdict never searches.
func (o *Orchestrator) HandleQuery(ctx context.Context, query string) (Outcome, error) {
	verdict, err := o.classifier.Classify(ctx, query)
	if err != nil {
		return nil, err
	}

	switch verdict.Clarity {
	case types.ClarityAmbiguous:
		if strings.TrimSpace(verdict.Message) == "" {
			o.logger.Warn("ambiguous verdict without a message", zap.String("query", query))
			return Noop{Verdict: verdict}, nil
		}
		return NeedsClarification{Message: verdict.Message, Options: verdict.Options, Verdict: verdict}, nil
	case types.ClarityClear:
		q := query
		if verdict.RefinedQuery != nil && strings.TrimSpace(*verdict.RefinedQuery) != "" {
			q = strings.TrimSpace(*verdict.RefinedQuery)
		}
		out, err := o.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		return Results{Query: q, Verdict: verdict, SearchOutcome: out}, nil
	default:
		return nil, fmt.Errorf("clarity %q: %w", verdict.Clarity, apperr.ErrParse)
	}
}

// Search resolves query to a paper, fetches its recommendations, records
// the search and summarizes the top results. Summary and persistence
// failures are logged and never fail the search.
func (o *Orchestrator) Search(ctx context.Context, query string) (types.SearchOutcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.SearchOutcome{}, fmt.Errorf("query is required: %w", apperr.ErrValidation)
	}

	paperID, err := o.source.ResolvePaperID(ctx, query)
	if err != nil {
		return types.SearchOutcome{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	recs, err := o.source.Recommend(ctx, paperID, o.limit)
	if err != nil {
		return types.SearchOutcome{}, fmt.Errorf("recommendations for %s: %w", paperID, err)
	}
	if recs == nil {
		recs = []types.RecommendedPaper{}
	}

	out := types.SearchOutcome{Recommendations: recs}
	out.SearchID = o.record(ctx, query, paperID, recs)
	out.Summary = o.summarize(ctx, query, recs)

	o.logger.Info("search complete",
		zap.String("query", query),
		zap.String("paper_id", paperID),
		zap.Int("recommendations", len(recs)),
		zap.String("search_id", out.SearchID))
	return out, nil
}

func (o *Orchestrator) record(ctx context.Context, query, paperID string, recs []types.RecommendedPaper) string {
	if o.recorder == nil {
		return ""
	}
	saved, err := o.recorder.AddSearchResult(ctx, types.NewSearchResult{
		Query:      query,
		Results:    recs,
		PaperID:    paperID,
		SearchType: types.SearchTypeRecommendations,
	})
	if err != nil {
		o.logger.Error("saving search result", zap.String("query", query), zap.Error(err))
		return ""
	}
	return saved.ID
}

func (o *Orchestrator) summarize(ctx context.Context, query string, recs []types.RecommendedPaper) string {
	if len(recs) == 0 || o.summarizer == nil {
		return FallbackSummary(len(recs))
	}
	top := recs
	if len(top) > o.maxSummary {
		top = top[:o.maxSummary]
	}
	summary, err := o.summarizer.Summarize(ctx, query, top)
	if err != nil {
		o.logger.Warn("summary failed, using fallback", zap.String("query", query), zap.Error(err))
		return FallbackSummary(len(recs))
	}
	return summary
}

// FallbackSummary is the summary used when none could be generated.
func FallbackSummary(n int) string {
	if n == 0 {
		return "No related papers were found."
	}
	return fmt.Sprintf("Found %d related papers.", n)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
