// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research assistant over HTTP with echo.
// Handlers translate apperr kinds into status codes and keep the response
// field names the browser client depends on.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/internal/recommend"
	"github.com/pdiddy/research-assistant/internal/scholar"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "research_assistant"

// Classifier judges query clarity.
type Classifier interface {
	Classify(ctx context.Context, query string) (types.ClarityVerdict, error)
}

// Refiner turns a clarification choice into a title and recommendations.
type Refiner interface {
	Refine(ctx context.Context, option, convContext string) (types.RefineResult, error)
}

// Orchestrator runs searches and the combined query flow.
type Orchestrator interface {
	Search(ctx context.Context, query string) (types.SearchOutcome, error)
	HandleQuery(ctx context.Context, query string) (recommend.Outcome, error)
}

// TitleSearcher returns the raw Semantic Scholar title-search payload.
type TitleSearcher interface {
	SearchTitles(ctx context.Context, query string, limit int, fields string) (json.RawMessage, *scholar.SearchResponse, error)
}

// Chatter produces chat replies.
type Chatter interface {
	Chat(ctx context.Context, message, userID string) (string, error)
}

// ContextStore is the part of the context store the handlers use.
type ContextStore interface {
	AddPaper(ctx context.Context, in types.NewPaper) (types.Paper, error)
	GetPaperByID(ctx context.Context, id string) (types.Paper, error)
	UpdatePaper(ctx context.Context, id string, upd types.PaperUpdate) (types.Paper, error)
	DeletePaper(ctx context.Context, id string) (bool, error)
	SearchPapers(ctx context.Context, query string) ([]types.Paper, error)
	AddChatMessages(ctx context.Context, in ...types.NewChatMessage) ([]types.ChatMessage, error)
	GetChatHistory(ctx context.Context) ([]types.ChatMessage, error)
	GetChatHistoryByUser(ctx context.Context, userID string) ([]types.ChatMessage, error)
	ClearChatHistory(ctx context.Context) error
	DeleteChatMessage(ctx context.Context, id string) (bool, error)
	GetSearchResults(ctx context.Context) ([]types.SearchResult, error)
	GetSearchResultByID(ctx context.Context, id string) (types.SearchResult, error)
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Classifier   Classifier
	Refiner      Refiner
	Orchestrator Orchestrator
	Titles       TitleSearcher
	Chat         Chatter
	Store        ContextStore
	Metrics      *Metrics
	Logger       *zap.Logger
	AllowOrigins []string
	SuggestLimit int
}

// Server is the HTTP front end.
type Server struct {
	echo    *echo.Echo
	deps    Deps
	logger  *zap.Logger
	metrics *Metrics
}

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// New builds the echo instance and registers every route.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(MetricsNamespace)
	}
	if deps.SuggestLimit <= 0 {
		deps.SuggestLimit = 5
	}
	if len(deps.AllowOrigins) == 0 {
		deps.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}

	s := &Server{echo: e, deps: deps, logger: deps.Logger, metrics: deps.Metrics}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(s.observe())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: deps.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	e.POST("/qualityCheck", s.qualityCheck)
	e.POST("/refineQuery", s.refineQuery)
	e.POST("/search", s.search)
	e.POST("/suggestions", s.suggestions)
	e.POST("/query", s.query)
	e.POST("/chat", s.chat)

	e.GET("/history", s.listHistory)
	e.DELETE("/history", s.clearHistory)
	e.DELETE("/history/:id", s.deleteMessage)

	e.GET("/papers", s.listPapers)
	e.POST("/papers", s.addPaper)
	e.GET("/papers/:id", s.getPaper)
	e.PATCH("/papers/:id", s.updatePaper)
	e.DELETE("/papers/:id", s.deletePaper)

	e.GET("/searches", s.listSearches)
	e.GET("/searches/:id", s.getSearch)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// handleError renders any unhandled error as {"error": message} with the
// status derived from its apperr kind.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := apperr.HTTPStatus(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorBody{Error: msg})
}

// observe logs every request and records its metrics.
func (s *Server) observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			latency := time.Since(start)

			s.metrics.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())
			s.logger.Info("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", latency),
				zap.String("remote_ip", c.RealIP()))
			return nil
		}
	}
}
