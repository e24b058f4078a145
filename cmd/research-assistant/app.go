// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/chat"
	"github.com/pdiddy/research-assistant/internal/classify"
	"github.com/pdiddy/research-assistant/internal/contextstore"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/recommend"
	"github.com/pdiddy/research-assistant/internal/refine"
	"github.com/pdiddy/research-assistant/internal/scholar"
	"github.com/pdiddy/research-assistant/internal/server"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg          types.Config
	store        *contextstore.Store
	scholar      *scholar.Client
	classifier   *classify.Classifier
	assistant    *chat.Assistant
	orchestrator *recommend.Orchestrator
	refiner      *refine.Refiner
}

// openStore opens only the context store, for commands that do not call
// upstream services.
func openStore() (*contextstore.Store, error) {
	return contextstore.Open(appConfig.Store, contextstore.WithLogger(logger.Named("store")))
}

// newApp wires every component from appConfig.
func newApp(ctx context.Context) (*app, error) {
	cfg := appConfig
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}

	gen, err := llm.New(ctx, cfg.LLM, httpClient)
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}

	sc := scholar.NewClientFromConfig(cfg.Scholar, cfg.HTTP)
	classifier := classify.New(gen, cfg.LLM.Models.Classify, logger.Named("classify"))
	assistant := chat.New(gen, cfg.LLM.Models.Chat, logger.Named("chat"))
	orchestrator := recommend.New(classifier, sc, assistant, store,
		recommend.WithRecommendationLimit(cfg.Scholar.RecommendationLimit),
		recommend.WithSummaryPapers(cfg.Summary.MaxPapers),
		recommend.WithLogger(logger.Named("recommend")),
	)

	var searcher refine.Searcher = orchestrator
	if cfg.Refine.RemoteSearch {
		searcher = recommend.NewRemoteSearcher(cfg.Server.BaseURL, httpClient)
		logger.Info("refiner searches through the HTTP API", zap.String("base_url", cfg.Server.BaseURL))
	}
	refiner := refine.New(gen, searcher,
		refine.WithModel(cfg.LLM.Models.Refine),
		refine.WithSearchTimeout(cfg.Refine.SearchTimeout),
		refine.WithLogger(logger.Named("refine")),
	)

	return &app{
		cfg:          cfg,
		store:        store,
		scholar:      sc,
		classifier:   classifier,
		assistant:    assistant,
		orchestrator: orchestrator,
		refiner:      refiner,
	}, nil
}

// server builds the HTTP API over the wired components.
func (a *app) server() *server.Server {
	return server.New(server.Deps{
		Classifier:   a.classifier,
		Refiner:      a.refiner,
		Orchestrator: a.orchestrator,
		Titles:       a.scholar,
		Chat:         a.assistant,
		Store:        a.store,
		Metrics:      server.NewMetrics(server.MetricsNamespace),
		Logger:       logger.Named("http"),
		AllowOrigins: a.cfg.Server.AllowOrigins,
		SuggestLimit: a.cfg.Scholar.SuggestionLimit,
	})
}

func (a *app) Close() error {
	return a.store.Close()
}
