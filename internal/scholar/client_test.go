// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/research-assistant/internal/apperr"
)

// fakeScholar serves both API bases from one httptest server:
// /graph/... and /recs/...
type fakeScholar struct {
	search          func(w http.ResponseWriter, r *http.Request)
	recommendations func(w http.ResponseWriter, r *http.Request)
	calls           atomic.Int32
	lastReq         *http.Request
}

func (f *fakeScholar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.lastReq = r
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/graph/paper/search"):
		f.search(w, r)
	case strings.HasPrefix(r.URL.Path, "/recs/papers/forpaper/"):
		f.recommendations(w, r)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeScholar, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	base := []Option{
		WithHTTPClient(ts.Client()),
		WithBaseURLs(ts.URL+"/graph", ts.URL+"/recs"),
		WithRateLimit(0),
	}
	return NewClient(append(base, opts...)...)
}

// --- Request construction ---

func TestSearchTitlesRequestParams(t *testing.T) {
	f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}}
	c := newTestClient(t, f)

	if _, _, err := c.SearchTitles(context.Background(), "  attention is all you need ", 5, ""); err != nil {
		t.Fatalf("SearchTitles: %v", err)
	}

	q := f.lastReq.URL.Query()
	if got := q.Get("query"); got != "attention is all you need" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "5" {
		t.Errorf("limit param = %q, want 5", got)
	}
	if got := q.Get("fields"); got != SearchFields {
		t.Errorf("fields param = %q, want %q", got, SearchFields)
	}
}

func TestAPIKeyHeader(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
	}{
		{"with API key", "test-key-123"},
		{"without API key", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":[]}`)
			}}
			c := newTestClient(t, f, WithAPIKey(tt.apiKey))
			if _, _, err := c.SearchTitles(context.Background(), "x", 1, ""); err != nil {
				t.Fatalf("SearchTitles: %v", err)
			}
			_, present := f.lastReq.Header["X-Api-Key"]
			if tt.apiKey == "" && present {
				t.Errorf("x-api-key header should be absent")
			}
			if tt.apiKey != "" && f.lastReq.Header.Get("x-api-key") != tt.apiKey {
				t.Errorf("x-api-key = %q, want %q", f.lastReq.Header.Get("x-api-key"), tt.apiKey)
			}
		})
	}
}

func TestSearchTitlesReturnsRawPayload(t *testing.T) {
	payload := `{"total":2,"offset":0,"next":2,"data":[{"paperId":"p1","title":"One","authors":[{"authorId":"a1","name":"Ada"}]},{"paperId":"p2","title":"Two","authors":[]}]}`
	f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}}
	c := newTestClient(t, f)

	raw, sr, err := c.SearchTitles(context.Background(), "one", 2, "")
	if err != nil {
		t.Fatalf("SearchTitles: %v", err)
	}
	if string(raw) != payload {
		t.Errorf("raw payload altered:\n got %s\nwant %s", raw, payload)
	}
	if sr.Total != 2 || len(sr.Data) != 2 {
		t.Fatalf("decoded = %+v", sr)
	}
	if sr.Data[0].Authors[0].Name != "Ada" {
		t.Errorf("author = %q, want Ada", sr.Data[0].Authors[0].Name)
	}
}

func TestSearchTitlesEmptyQuery(t *testing.T) {
	f := &fakeScholar{}
	c := newTestClient(t, f)
	_, _, err := c.SearchTitles(context.Background(), "   ", 1, "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("no request should be sent for an empty query")
	}
}

// --- Paper id resolution ---

func TestResolvePaperID(t *testing.T) {
	f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("resolve must request limit=1, got %q", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"total":1,"data":[{"paperId":"abc123","title":"Animal Behavior"}]}`)
	}}
	c := newTestClient(t, f)

	id, err := c.ResolvePaperID(context.Background(), "animal behavior")
	if err != nil {
		t.Fatalf("ResolvePaperID: %v", err)
	}
	if id != "abc123" {
		t.Errorf("id = %q, want abc123", id)
	}
}

func TestResolvePaperIDNoMatches(t *testing.T) {
	f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}}
	c := newTestClient(t, f)

	_, err := c.ResolvePaperID(context.Background(), "zzzz")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// --- Recommendations ---

func TestRecommend(t *testing.T) {
	f := &fakeScholar{recommendations: func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/forpaper/abc123") {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("fields") != RecommendationFields {
			t.Errorf("fields = %q", q.Get("fields"))
		}
		if q.Get("limit") != "10" {
			t.Errorf("limit = %q, want clamped 10", q.Get("limit"))
		}
		fmt.Fprint(w, `{"recommendedPapers":[{"paperId":"r1","title":"Rec One","authors":[{"name":"B. Author"}],"year":2021,"url":"https://example.org/r1"},{"paperId":"r2","title":"Rec Two","authors":[],"year":null}]}`)
	}}
	c := newTestClient(t, f)

	recs, err := c.Recommend(context.Background(), "abc123", 50)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].Year == nil || *recs[0].Year != 2021 {
		t.Errorf("year = %v, want 2021", recs[0].Year)
	}
	if recs[1].Year != nil {
		t.Errorf("null year should decode to nil, got %v", *recs[1].Year)
	}
	if recs[0].URL != "https://example.org/r1" {
		t.Errorf("url = %q", recs[0].URL)
	}
}

func TestRecommendMissingListIsEmpty(t *testing.T) {
	f := &fakeScholar{recommendations: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}}
	c := newTestClient(t, f)

	recs, err := c.Recommend(context.Background(), "abc", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", recs)
	}
}

// --- Error classification ---

func TestRateLimitSurfacedAtEveryCallSite(t *testing.T) {
	limited := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"Too Many Requests"}`)
	}
	f := &fakeScholar{search: limited, recommendations: limited}
	c := newTestClient(t, f)

	_, _, err := c.SearchTitles(context.Background(), "x", 5, "")
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Errorf("SearchTitles err = %v, want ErrRateLimited", err)
	}
	_, err = c.ResolvePaperID(context.Background(), "x")
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Errorf("ResolvePaperID err = %v, want ErrRateLimited", err)
	}
	_, err = c.Recommend(context.Background(), "abc", 10)
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Errorf("Recommend err = %v, want ErrRateLimited", err)
	}
	if got := f.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (no retries)", got)
	}
}

func TestServerErrorIsUpstream(t *testing.T) {
	f := &fakeScholar{recommendations: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}}
	c := newTestClient(t, f)

	_, err := c.Recommend(context.Background(), "abc", 10)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if errors.Is(err, apperr.ErrRateLimited) {
		t.Errorf("500 must not be classified as rate limited")
	}
}

func TestMalformedJSONIsUpstream(t *testing.T) {
	f := &fakeScholar{search: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}}
	c := newTestClient(t, f)

	_, _, err := c.SearchTitles(context.Background(), "x", 1, "")
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestSearchResponseShape(t *testing.T) {
	var sr SearchResponse
	if err := json.Unmarshal([]byte(`{"total":1,"data":[{"paperId":"p","title":"t","authors":[{"name":"n"}]}]}`), &sr); err != nil {
		t.Fatal(err)
	}
	if sr.Data[0].PaperID != "p" {
		t.Errorf("paperId = %q", sr.Data[0].PaperID)
	}
}
