// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is the client for the Semantic Scholar academic graph:
// title search, paper id resolution and recommendations.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// DefaultGraphURL is the Semantic Scholar graph API base.
	DefaultGraphURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRecommendationsURL is the Semantic Scholar recommendations API base.
	DefaultRecommendationsURL = "https://api.semanticscholar.org/recommendations/v1"

	// SearchFields are requested for title searches.
	SearchFields = "title,authors.name"

	// RecommendationFields are requested for recommendations.
	RecommendationFields = "title,authors.name,url,year"

	// MaxRecommendations is the most recommendations fetched per call.
	MaxRecommendations = 10

	// DefaultRateLimit is the client-side pacing in requests per second.
	DefaultRateLimit = 10.0
)

// Client is a rate-paced HTTP client for Semantic Scholar. Each call is a
// single attempt; HTTP 429 surfaces as apperr.ErrRateLimited.
type Client struct {
	httpClient         *http.Client
	limiter            *rate.Limiter
	apiKey             string
	graphURL           string
	recommendationsURL string
	userAgent          string
	timeout            time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the x-api-key header value. Empty means anonymous access.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the graph and recommendations API bases (for testing).
func WithBaseURLs(graph, recommendations string) Option {
	return func(c *Client) {
		if graph != "" {
			c.graphURL = strings.TrimRight(graph, "/")
		}
		if recommendations != "" {
			c.recommendationsURL = strings.TrimRight(recommendations, "/")
		}
	}
}

// WithRateLimit sets the request pacing. Values <= 0 disable pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout bounds every call. Zero falls back to httputil.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Semantic Scholar client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:         &http.Client{},
		limiter:            rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		graphURL:           DefaultGraphURL,
		recommendationsURL: DefaultRecommendationsURL,
		userAgent:          "research-assistant",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the service configuration.
func NewClientFromConfig(cfg types.ScholarConfig, httpCfg types.HTTPConfig) *Client {
	return NewClient(
		WithAPIKey(cfg.APIKey),
		WithBaseURLs(cfg.GraphURL, cfg.RecommendationsURL),
		WithRateLimit(cfg.RateLimit),
		WithUserAgent(httpCfg.UserAgent),
		WithTimeout(httpCfg.Timeout),
	)
}

// SearchResponse is the graph API paper-search payload.
type SearchResponse struct {
	Total  int                      `json:"total"`
	Offset int                      `json:"offset"`
	Next   int                      `json:"next,omitempty"`
	Data   []types.RecommendedPaper `json:"data"`
}

type recommendationsResponse struct {
	RecommendedPapers []types.RecommendedPaper `json:"recommendedPapers"`
}

// SearchTitles runs a relevance search over paper titles. It returns the raw
// upstream payload (passed through verbatim by the suggestions endpoint)
// alongside its decoded form.
func (c *Client) SearchTitles(ctx context.Context, query string, limit int, fields string) (json.RawMessage, *SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: query is required", apperr.ErrValidation)
	}
	if limit <= 0 {
		limit = 1
	}
	if fields == "" {
		fields = SearchFields
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {fields},
	}
	body, err := c.get(ctx, c.graphURL+"/paper/search?"+params.Encode())
	if err != nil {
		return nil, nil, fmt.Errorf("Semantic Scholar paper search: %w", err)
	}

	var sr SearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing Semantic Scholar search response: %v", apperr.ErrUpstream, err)
	}
	return json.RawMessage(body), &sr, nil
}

// ResolvePaperID returns the id of the single best title match for query.
// Zero matches is apperr.ErrNotFound.
func (c *Client) ResolvePaperID(ctx context.Context, query string) (string, error) {
	_, sr, err := c.SearchTitles(ctx, query, 1, SearchFields)
	if err != nil {
		return "", err
	}
	if len(sr.Data) == 0 || sr.Data[0].PaperID == "" {
		return "", fmt.Errorf("%w: no paper matches %q", apperr.ErrNotFound, query)
	}
	return sr.Data[0].PaperID, nil
}

// Recommend fetches papers related to paperID. limit is clamped to
// [1, MaxRecommendations].
func (c *Client) Recommend(ctx context.Context, paperID string, limit int) ([]types.RecommendedPaper, error) {
	if paperID == "" {
		return nil, fmt.Errorf("%w: paper id is required", apperr.ErrValidation)
	}
	if limit <= 0 || limit > MaxRecommendations {
		limit = MaxRecommendations
	}

	params := url.Values{
		"fields": {RecommendationFields},
		"limit":  {strconv.Itoa(limit)},
	}
	reqURL := fmt.Sprintf("%s/papers/forpaper/%s?%s", c.recommendationsURL, url.PathEscape(paperID), params.Encode())
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar recommendations for %s: %w", paperID, err)
	}

	var rr recommendationsResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("%w: parsing Semantic Scholar recommendations: %v", apperr.ErrUpstream, err)
	}
	if rr.RecommendedPapers == nil {
		return []types.RecommendedPaper{}, nil
	}
	return rr.RecommendedPapers, nil
}

// get performs one paced GET against the API.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", apperr.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	return httputil.Do(ctx, c.httpClient, req)
}
