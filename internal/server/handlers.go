// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/recommend"
	"github.com/pdiddy/research-assistant/internal/scholar"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Client-facing error messages.
const (
	msgQueryRequired   = "Query is required"
	msgOptionRequired  = "Option is required"
	msgMessageRequired = "Message is required"
	msgRateLimited     = "Rate limit exceeded. Please wait a moment and try again, or consider getting an API key for higher limits."
	msgSearchFailed    = "Failed to fetch data from Semantic Scholar"
	msgPaperNotFound   = "No paper matched the query"
	msgRefineFailed    = "Failed to refine query and fetch recommendations"
	msgSuggestFailed   = "Failed to fetch suggestions from Semantic Scholar"
	msgQualityFailed   = "Failed to check query quality"
	msgChatFailed      = "Failed to generate a reply"
	msgQueryFailed     = "Failed to process query"
	msgStoreFailed     = "Failed to access the saved context"
)

// Summaries sent with failed searches, keyed by status.
var failedSearchSummaries = map[int]string{
	http.StatusTooManyRequests:     "The paper search service is busy. Recommendations will be available again shortly.",
	http.StatusNotFound:            "No matching paper was found, so no recommendations could be made. Try a more specific title.",
	http.StatusInternalServerError: "Recommendations could not be loaded right now.",
}

type errorBody struct {
	Error string `json:"error"`
}

type failedSearchBody struct {
	Error           string                   `json:"error"`
	Recommendations []types.RecommendedPaper `json:"recommendations"`
	Summary         string                   `json:"summary"`
}

type failedRefineBody struct {
	Error           string                   `json:"error"`
	Recommendations []types.RecommendedPaper `json:"recommendations"`
}

type queryRequest struct {
	Query string `json:"query" validate:"required"`
}

type refineRequest struct {
	Context string `json:"context"`
	Option  string `json:"option" validate:"required"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
	UserID  string `json:"userId"`
}

type qualityResponse struct {
	QueryQuality types.Clarity         `json:"queryQuality"`
	Message      *types.ClarityVerdict `json:"message,omitempty"`
}

type queryResponse struct {
	QueryQuality    types.Clarity            `json:"queryQuality"`
	Message         string                   `json:"message,omitempty"`
	Options         []string                 `json:"options,omitempty"`
	RefinedQuery    string                   `json:"refined_query,omitempty"`
	Recommendations []types.RecommendedPaper `json:"recommendations,omitempty"`
	Summary         string                   `json:"summary,omitempty"`
	SearchID        string                   `json:"searchId,omitempty"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	UserID string `json:"userId"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

// bindQuery decodes and validates a {query} body.
func (s *Server) bindQuery(c echo.Context) (string, error) {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, msgQueryRequired)
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := c.Validate(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, msgQueryRequired)
	}
	return req.Query, nil
}

// qualityCheck classifies a query. The full verdict is included only when
// the query is ambiguous.
func (s *Server) qualityCheck(c echo.Context) error {
	query, err := s.bindQuery(c)
	if err != nil {
		return err
	}
	verdict, err := s.deps.Classifier.Classify(c.Request().Context(), query)
	if err != nil {
		return s.upstreamError(err, msgQualityFailed)
	}
	s.metrics.Verdicts.WithLabelValues(string(verdict.Clarity)).Inc()

	resp := qualityResponse{QueryQuality: verdict.Clarity}
	if verdict.Clarity == types.ClarityAmbiguous {
		resp.Message = &verdict
	}
	return c.JSON(http.StatusOK, resp)
}

// refineQuery names a paper for the chosen option and returns its
// recommendations.
func (s *Server) refineQuery(c echo.Context) error {
	var req refineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgOptionRequired)
	}
	req.Option = strings.TrimSpace(req.Option)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgOptionRequired)
	}

	res, err := s.deps.Refiner.Refine(c.Request().Context(), req.Option, req.Context)
	if err != nil {
		status := apperr.HTTPStatus(err)
		msg := msgRefineFailed
		switch status {
		case http.StatusTooManyRequests:
			msg = msgRateLimited
		case http.StatusBadRequest:
			msg = msgOptionRequired
		default:
			status = http.StatusInternalServerError
			s.logger.Error("refine failed", zap.String("option", req.Option), zap.Error(err))
		}
		return c.JSON(status, failedRefineBody{Error: msg, Recommendations: []types.RecommendedPaper{}})
	}
	if res.Recommendations == nil {
		res.Recommendations = []types.RecommendedPaper{}
	}
	return c.JSON(http.StatusOK, res)
}

// search resolves the query to a paper and returns its recommendations.
// Failures keep the recommendations and summary fields.
func (s *Server) search(c echo.Context) error {
	query, err := s.bindQuery(c)
	if err != nil {
		return err
	}
	out, err := s.deps.Orchestrator.Search(c.Request().Context(), query)
	if err != nil {
		status, body := failedSearch(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		}
		s.metrics.searchResult(status)
		return c.JSON(status, body)
	}
	s.metrics.searchResult(http.StatusOK)
	return c.JSON(http.StatusOK, out)
}

func failedSearch(err error) (int, failedSearchBody) {
	status := apperr.HTTPStatus(err)
	msg := msgSearchFailed
	switch status {
	case http.StatusTooManyRequests:
		msg = msgRateLimited
	case http.StatusNotFound:
		msg = msgPaperNotFound
	case http.StatusBadRequest:
		msg = msgQueryRequired
	default:
		status = http.StatusInternalServerError
	}
	return status, failedSearchBody{Error: msg, Recommendations: []types.RecommendedPaper{}, Summary: failedSearchSummaries[status]}
}

// suggestions passes the raw title-search payload through.
func (s *Server) suggestions(c echo.Context) error {
	query, err := s.bindQuery(c)
	if err != nil {
		return err
	}
	raw, _, err := s.deps.Titles.SearchTitles(c.Request().Context(), query, s.deps.SuggestLimit, scholar.SearchFields)
	if err != nil {
		return s.upstreamError(err, msgSuggestFailed)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// query runs classification and, for clear queries, one search.
func (s *Server) query(c echo.Context) error {
	query, err := s.bindQuery(c)
	if err != nil {
		return err
	}
	outcome, err := s.deps.Orchestrator.HandleQuery(c.Request().Context(), query)
	if err != nil {
		if errors.Is(err, apperr.ErrRateLimited) || errors.Is(err, apperr.ErrNotFound) {
			status, body := failedSearch(err)
			s.metrics.searchResult(status)
			return c.JSON(status, body)
		}
		return s.upstreamError(err, msgQueryFailed)
	}

	switch o := outcome.(type) {
	case recommend.NeedsClarification:
		s.metrics.Verdicts.WithLabelValues(string(types.ClarityAmbiguous)).Inc()
		return c.JSON(http.StatusOK, queryResponse{
			QueryQuality: types.ClarityAmbiguous,
			Message:      o.Message,
			Options:      o.Options,
		})
	case recommend.Results:
		s.metrics.Verdicts.WithLabelValues(string(types.ClarityClear)).Inc()
		s.metrics.searchResult(http.StatusOK)
		recs := o.Recommendations
		if recs == nil {
			recs = []types.RecommendedPaper{}
		}
		return c.JSON(http.StatusOK, queryResponse{
			QueryQuality:    types.ClarityClear,
			RefinedQuery:    o.Query,
			Recommendations: recs,
			Summary:         o.Summary,
			SearchID:        o.SearchID,
		})
	case recommend.Noop:
		s.metrics.Verdicts.WithLabelValues(string(types.ClarityAmbiguous)).Inc()
		return c.NoContent(http.StatusNoContent)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgQueryFailed)
	}
}

// chat replies to a message and records both sides once the reply exists.
func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgMessageRequired)
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgMessageRequired)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx := c.Request().Context()
	reply, err := s.deps.Chat.Chat(ctx, req.Message, userID)
	if err != nil {
		return s.upstreamError(err, msgChatFailed)
	}
	s.metrics.ChatReplies.Inc()

	if _, err := s.deps.Store.AddChatMessages(ctx,
		types.NewChatMessage{Role: types.RoleUser, Content: req.Message, UserID: userID},
		types.NewChatMessage{Role: types.RoleAssistant, Content: reply, UserID: userID},
	); err != nil {
		s.logger.Error("saving chat exchange", zap.String("user_id", userID), zap.Error(err))
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply, UserID: userID})
}

// upstreamError maps an LLM or search failure to an HTTPError with a
// stable client message.
func (s *Server) upstreamError(err error, fallback string) error {
	status := apperr.HTTPStatus(err)
	switch status {
	case http.StatusTooManyRequests:
		return echo.NewHTTPError(status, msgRateLimited).SetInternal(err)
	case http.StatusBadRequest:
		return echo.NewHTTPError(status, err.Error()).SetInternal(err)
	default:
		s.logger.Error(fallback, zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}
