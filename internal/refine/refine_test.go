// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

type fakeSearcher struct {
	outcome types.SearchOutcome
	err     error
	block   bool
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (types.SearchOutcome, error) {
	f.queries = append(f.queries, query)
	if f.block {
		<-ctx.Done()
		return types.SearchOutcome{}, ctx.Err()
	}
	return f.outcome, f.err
}

func replyWith(text string, err error) (llm.Generator, *llm.Request) {
	var last llm.Request
	return llm.GeneratorFunc(func(_ context.Context, req llm.Request) (string, error) {
		last = req
		return text, err
	}), &last
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"envelope", "{title: Attention Is All You Need}", "Attention Is All You Need", false},
		{"quoted envelope with period", `"{title: Transformer Efficiency and Post-Training Quantization}."`, "Transformer Efficiency and Post-Training Quantization", false},
		{"case insensitive", "Here you go: {Title:   Deep Residual Learning }", "Deep Residual Learning", false},
		{"inner quotes", `{title: "BERT: Pre-training of Deep Bidirectional Transformers"}`, "BERT: Pre-training of Deep Bidirectional Transformers", false},
		{"json quoted key", `{"title": "Animal Behaviour"}`, "Animal Behaviour", false},
		{"no envelope", "Attention Is All You Need", "", true},
		{"empty envelope", "{title:   }", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTitle(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A numbered option is refined to a title and searched.
func TestRefineAnimalBehavior(t *testing.T) {
	gen, last := replyWith("{title: Animal Behaviour: Mechanism, Development, Function and Evolution}", nil)
	recs := []types.RecommendedPaper{{PaperID: "r1", Title: "Rec One"}, {PaperID: "r2", Title: "Rec Two"}}
	s := &fakeSearcher{outcome: types.SearchOutcome{Recommendations: recs, Summary: "s", SearchID: "search_1"}}

	r := New(gen, s)
	res, err := r.Refine(context.Background(), "2. Animal behavior or psychology", "")
	require.NoError(t, err)

	assert.Equal(t, "Animal Behaviour: Mechanism, Development, Function and Evolution", res.RefinedQuery)
	assert.Equal(t, recs, res.Recommendations)
	assert.Equal(t, []string{res.RefinedQuery}, s.queries)
	assert.Equal(t, DefaultModel, last.Model)
	assert.Equal(t, llm.TitleSystem, last.System)
	assert.Contains(t, last.Prompt, "2. Animal behavior or psychology")
}

func TestRefineRawTitleFallback(t *testing.T) {
	gen, _ := replyWith("  \"Attention Is All You Need\".\n", nil)
	s := &fakeSearcher{}

	res, err := New(gen, s).Refine(context.Background(), "transformers", "ctx")
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", res.RefinedQuery)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestRefineEmptyOption(t *testing.T) {
	gen, _ := replyWith("", nil)
	s := &fakeSearcher{}

	_, err := New(gen, s).Refine(context.Background(), "   ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, s.queries)
}

func TestRefineLLMFailure(t *testing.T) {
	gen, _ := replyWith("", errors.New("boom"))
	s := &fakeSearcher{}

	_, err := New(gen, s).Refine(context.Background(), "x", "")
	assert.ErrorIs(t, err, apperr.ErrRefine)
	assert.Empty(t, s.queries)
}

func TestRefineBlankTitle(t *testing.T) {
	gen, _ := replyWith("  ", nil)
	s := &fakeSearcher{}

	_, err := New(gen, s).Refine(context.Background(), "x", "")
	assert.ErrorIs(t, err, apperr.ErrRefine)
	assert.Empty(t, s.queries)
}

func TestRefineRateLimitedSearch(t *testing.T) {
	gen, _ := replyWith("{title: T}", nil)
	s := &fakeSearcher{err: apperr.ErrRateLimited}

	res, err := New(gen, s).Refine(context.Background(), "x", "")
	require.Error(t, err)
	assert.True(t, apperr.IsRateLimited(err))
	assert.Equal(t, 429, apperr.HTTPStatus(err))
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestRefineSearchTimeout(t *testing.T) {
	gen, _ := replyWith("{title: T}", nil)
	s := &fakeSearcher{block: true}

	start := time.Now()
	_, err := New(gen, s, WithSearchTimeout(20*time.Millisecond)).Refine(context.Background(), "x", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrRefine)
	assert.Equal(t, 500, apperr.HTTPStatus(err), "timeouts surface as a refine failure")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRefineOtherSearchFailure(t *testing.T) {
	gen, _ := replyWith("{title: T}", nil)
	s := &fakeSearcher{err: apperr.ErrNotFound}

	_, err := New(gen, s).Refine(context.Background(), "x", "")
	assert.ErrorIs(t, err, apperr.ErrRefine)
	assert.Equal(t, 500, apperr.HTTPStatus(err))
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	gen, _ := replyWith("", nil)
	r := New(gen, &fakeSearcher{}, WithModel(""), WithSearchTimeout(0), WithLogger(nil))
	assert.Equal(t, DefaultModel, r.model)
	assert.Equal(t, DefaultSearchTimeout, r.timeout)
	assert.NotNil(t, r.logger)
}
