// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// RemoteSearcher runs Search against another instance's POST /search
// endpoint. It lets the refiner and the search API live in separate
// deployments.
type RemoteSearcher struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteSearcher returns a RemoteSearcher for baseURL.
func NewRemoteSearcher(baseURL string, client *http.Client) *RemoteSearcher {
	return &RemoteSearcher{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

// Search posts query to /search and decodes the outcome. Error statuses
// keep their kind: 429 maps to apperr.ErrRateLimited, 404 to
// apperr.ErrNotFound.
func (r *RemoteSearcher) Search(ctx context.Context, query string) (types.SearchOutcome, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return types.SearchOutcome{}, fmt.Errorf("marshaling search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return types.SearchOutcome{}, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, err := httputil.Do(ctx, r.Client, req)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return types.SearchOutcome{}, fmt.Errorf("remote search: %w: %s", apperr.ErrNotFound, se.Body)
		}
		return types.SearchOutcome{}, fmt.Errorf("remote search: %w", err)
	}

	var out types.SearchOutcome
	if err := json.Unmarshal(data, &out); err != nil {
		return types.SearchOutcome{}, fmt.Errorf("decoding remote search: %w: %w", apperr.ErrUpstream, err)
	}
	if out.Recommendations == nil {
		out.Recommendations = []types.RecommendedPaper{}
	}
	return out, nil
}
