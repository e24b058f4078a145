// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the service configuration from viper (config
// file, RESEARCH_ASSISTANT_* environment, legacy variable names) with the
// .secrets/ directory as the lowest-priority credential source.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// EnvPrefix namespaces every config key in the environment, e.g.
// RESEARCH_ASSISTANT_STORE_PATH for store.path.
const EnvPrefix = "RESEARCH_ASSISTANT"

const (
	// MaxRecommendations is the upstream cap on recommendations per call.
	MaxRecommendations = 10

	// MaxSummaryPapers is the cap on papers described in a summary.
	MaxSummaryPapers = 5
)

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "research-assistant/0.1")

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("scholar.graph_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("scholar.recommendations_url", "https://api.semanticscholar.org/recommendations/v1")
	v.SetDefault("scholar.rate_limit", 10.0)
	v.SetDefault("scholar.recommendation_limit", MaxRecommendations)
	v.SetDefault("scholar.suggestion_limit", 5)

	v.SetDefault("llm.provider", string(types.ProviderGemini))
	v.SetDefault("llm.models.classify", "gemini-2.5-flash-lite")
	v.SetDefault("llm.models.refine", "gemini-2.5-flash-lite")
	v.SetDefault("llm.models.chat", "gemini-2.5-pro")
	v.SetDefault("llm.max_tokens", 2048)

	v.SetDefault("store.backend", string(types.StoreJSON))
	v.SetDefault("store.path", "data/paper_context.json")

	v.SetDefault("refine.search_timeout", 30*time.Second)
	v.SetDefault("refine.remote_search", false)

	v.SetDefault("summary.max_papers", MaxSummaryPapers)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// BindEnv enables RESEARCH_ASSISTANT_* overrides and the variable names the
// front end deployment already uses.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"scholar.api_key":       {EnvPrefix + "_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY"},
		"llm.api_key":           {EnvPrefix + "_LLM_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"},
		"llm.anthropic_api_key": {EnvPrefix + "_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"server.base_url":       {EnvPrefix + "_SERVER_BASE_URL", "NEXT_PUBLIC_BASE_URL"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config, fills credentials from sec where the
// config left them empty, and validates the result.
func Load(v *viper.Viper, sec secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Scholar.APIKey == "" {
		cfg.Scholar.APIKey = sec.Get(secrets.SemanticScholarAPIKey)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = sec.Get(secrets.GeminiAPIKey)
	}
	if cfg.LLM.AnthropicAPIKey == "" {
		cfg.LLM.AnthropicAPIKey = sec.Get(secrets.AnthropicAPIKey)
	}

	if err := normalize(&cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// normalize clamps limits and rejects unknown enum values.
func normalize(cfg *types.Config) error {
	switch cfg.LLM.Provider {
	case types.ProviderGemini, types.ProviderClaude:
	default:
		return fmt.Errorf("llm.provider: unknown provider %q (want gemini or claude)", cfg.LLM.Provider)
	}

	switch cfg.Store.Backend {
	case types.StoreJSON, types.StoreSQLite:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (want json or sqlite)", cfg.Store.Backend)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if cfg.Scholar.RecommendationLimit <= 0 || cfg.Scholar.RecommendationLimit > MaxRecommendations {
		cfg.Scholar.RecommendationLimit = MaxRecommendations
	}
	if cfg.Scholar.SuggestionLimit <= 0 {
		cfg.Scholar.SuggestionLimit = 5
	}
	if cfg.Summary.MaxPapers <= 0 || cfg.Summary.MaxPapers > MaxSummaryPapers {
		cfg.Summary.MaxPapers = MaxSummaryPapers
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.Refine.SearchTimeout <= 0 {
		cfg.Refine.SearchTimeout = 30 * time.Second
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	return nil
}
