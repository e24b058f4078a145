// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP and LLM calls.
type HTTPConfig struct {
	// Timeout bounds every outbound call that has no tighter bound of its own.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Address is the listen address (e.g. ":3000").
	Address string `json:"address" yaml:"address" mapstructure:"address"`

	// BaseURL is the service-to-service base URL used when the refiner
	// searches through the HTTP API instead of in-process.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// AllowOrigins lists CORS origins for the browser front end.
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
}

// ScholarConfig holds settings for the Semantic Scholar client.
type ScholarConfig struct {
	// APIKey is optional; it enables higher upstream rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// GraphURL is the graph API base (paper search).
	GraphURL string `json:"graph_url" yaml:"graph_url" mapstructure:"graph_url"`

	// RecommendationsURL is the recommendations API base.
	RecommendationsURL string `json:"recommendations_url" yaml:"recommendations_url" mapstructure:"recommendations_url"`

	// RateLimit is the client-side request pacing in requests per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// RecommendationLimit is the number of recommendations fetched (max 10).
	RecommendationLimit int `json:"recommendation_limit" yaml:"recommendation_limit" mapstructure:"recommendation_limit"`

	// SuggestionLimit is the number of title matches returned by /suggestions.
	SuggestionLimit int `json:"suggestion_limit" yaml:"suggestion_limit" mapstructure:"suggestion_limit"`
}

// LLMProvider selects the generative backend.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderClaude LLMProvider = "claude"
)

// LLMModels maps each call site to a model identifier.
type LLMModels struct {
	Classify string `json:"classify" yaml:"classify" mapstructure:"classify"`
	Refine   string `json:"refine" yaml:"refine" mapstructure:"refine"`
	Chat     string `json:"chat" yaml:"chat" mapstructure:"chat"`
}

// LLMConfig holds settings for the generative AI backend.
type LLMConfig struct {
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// APIKey is the Gemini credential (GOOGLE_API_KEY or GEMINI_API_KEY).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// AnthropicAPIKey is used when Provider is "claude".
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty" mapstructure:"anthropic_api_key"`

	Models LLMModels `json:"models" yaml:"models" mapstructure:"models"`

	// MaxTokens caps the Claude response length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreBackend selects how the context document is persisted.
type StoreBackend string

const (
	StoreJSON   StoreBackend = "json"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the context store.
type StoreConfig struct {
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the JSON file or SQLite database path.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// RefineConfig holds settings for the query refiner.
type RefineConfig struct {
	// SearchTimeout bounds the search issued after a title is refined.
	SearchTimeout time.Duration `json:"search_timeout" yaml:"search_timeout" mapstructure:"search_timeout"`

	// RemoteSearch routes the refiner's search through Server.BaseURL.
	RemoteSearch bool `json:"remote_search" yaml:"remote_search" mapstructure:"remote_search"`
}

// SummaryConfig holds settings for recommendation summaries.
type SummaryConfig struct {
	// MaxPapers is the number of top results described in the summary (max 5).
	MaxPapers int `json:"max_papers" yaml:"max_papers" mapstructure:"max_papers"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the service.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Scholar ScholarConfig `json:"scholar" yaml:"scholar" mapstructure:"scholar"`
	LLM     LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Refine  RefineConfig  `json:"refine" yaml:"refine" mapstructure:"refine"`
	Summary SummaryConfig `json:"summary" yaml:"summary" mapstructure:"summary"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
