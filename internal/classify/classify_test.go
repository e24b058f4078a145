// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const animalReply = "```json\n" + `{
  "clarity": "ambiguous",
  "message": "Could you clarify what aspect of animals you are interested in?",
  "options": [
    "1. Animal biology or physiology",
    "2. Animal behavior or psychology",
    "3. Conservation or environmental impact",
    "4. Machine learning applications on animal datasets",
    "5. Other (please specify)"
  ],
  "refined_query": null
}` + "\n```"

// fakeGenerator returns a fixed reply and records the last request.
type fakeGenerator struct {
	reply string
	err   error
	calls int
	last  llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

// --- Parsing ---

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantClarity types.Clarity
		wantOptions int
		wantRefined string
		wantErr     bool
	}{
		{"fenced ambiguous", animalReply, types.ClarityAmbiguous, 5, "", false},
		{"bare clear", `{"clarity":"clear","message":"ok","options":[],"refined_query":"Animal cognition"}`, types.ClarityClear, 0, "Animal cognition", false},
		{"missing options", `{"clarity":"clear","message":"ok"}`, types.ClarityClear, 0, "", false},
		{"blank refined query", `{"clarity":"clear","message":"ok","refined_query":"  "}`, types.ClarityClear, 0, "", false},
		{"fence without tag", "```\n{\"clarity\":\"clear\",\"message\":\"m\"}\n```", types.ClarityClear, 0, "", false},
		{"unknown clarity", `{"clarity":"maybe","message":"m"}`, "", 0, "", true},
		{"missing clarity", `{"message":"m"}`, "", 0, "", true},
		{"prose", "I think this query is clear.", "", 0, "", true},
		{"empty", "   ", "", 0, "", true},
		{"trailing garbage", `{"clarity":"clear","message":"m"} {"x":1}`, "", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.text)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrParse) {
					t.Fatalf("err = %v, want ErrParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVerdict: %v", err)
			}
			if v.Clarity != tt.wantClarity {
				t.Errorf("clarity = %q, want %q", v.Clarity, tt.wantClarity)
			}
			if v.Options == nil {
				t.Errorf("options must never be nil")
			}
			if len(v.Options) != tt.wantOptions {
				t.Errorf("options = %d, want %d", len(v.Options), tt.wantOptions)
			}
			gotRefined := ""
			if v.RefinedQuery != nil {
				gotRefined = *v.RefinedQuery
			}
			if gotRefined != tt.wantRefined {
				t.Errorf("refined_query = %q, want %q", gotRefined, tt.wantRefined)
			}
		})
	}
}

// --- Classification ---

func TestClassifyAmbiguousAnimal(t *testing.T) {
	gen := &fakeGenerator{reply: animalReply}
	c := New(gen, "", nil)

	v, err := c.Classify(context.Background(), "Animal")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if v.Clarity != types.ClarityAmbiguous {
		t.Fatalf("clarity = %q, want ambiguous", v.Clarity)
	}
	if len(v.Options) != 5 {
		t.Errorf("options = %d, want 5", len(v.Options))
	}
	if gen.last.Model != DefaultModel {
		t.Errorf("model = %q, want %q", gen.last.Model, DefaultModel)
	}
	if gen.last.System != llm.ClaritySystem {
		t.Errorf("clarity instruction not sent as system prompt")
	}
	if gen.last.Prompt != "User query: Animal" {
		t.Errorf("prompt = %q", gen.last.Prompt)
	}
}

func TestClassifyFallsBackToClearOnParseFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gen := &fakeGenerator{reply: "Sure! Here are some papers about transformers."}
	c := New(gen, "custom-model", zap.New(core))

	v, err := c.Classify(context.Background(), "transformers")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if v.Clarity != types.ClarityClear {
		t.Errorf("clarity = %q, want clear", v.Clarity)
	}
	if v.Message != gen.reply {
		t.Errorf("message = %q, want raw reply", v.Message)
	}
	if v.Options == nil || len(v.Options) != 0 {
		t.Errorf("options = %#v, want empty", v.Options)
	}
	if v.RefinedQuery != nil {
		t.Errorf("refined_query should be nil")
	}
	if gen.last.Model != "custom-model" {
		t.Errorf("model = %q", gen.last.Model)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestClassifyEmptyQuery(t *testing.T) {
	gen := &fakeGenerator{}
	c := New(gen, "", nil)

	_, err := c.Classify(context.Background(), "  \t ")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if gen.calls != 0 {
		t.Errorf("LLM must not be called for an empty query")
	}
}

func TestClassifyPropagatesLLMError(t *testing.T) {
	gen := &fakeGenerator{err: apperr.ErrRateLimited}
	c := New(gen, "", nil)

	_, err := c.Classify(context.Background(), "Animal")
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
