package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "golazo/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FixturesConfig holds settings for the fixture document source.
type FixturesConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the fixtures API. May also be
	// supplied through .secrets/api-football-key or API_FOOTBALL_KEY.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timezone is the reference timezone for "today" and kickoff
	// times (default "America/Argentina/Buenos_Aires").
	Timezone string `json:"timezone" yaml:"timezone"`
}

// IndexConfig holds settings for the semantic index and its storage.
type IndexConfig struct {
	// IndexPath is the directory holding the index artifacts. The
	// freshness metadata file lives next to this directory (default
	// "vector_store/index").
	IndexPath string `json:"index_path" yaml:"index_path"`
}

// LLMConfig holds settings for the answer generation backend.
type LLMConfig struct {
	// Model is the completion model identifier.
	Model string `json:"llm_model" yaml:"llm_model"`

	// APIKey authenticates against the completion API. May also be
	// supplied through .secrets/openrouter-api-key or OPENROUTER_API_KEY.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.2).
	Temperature float64 `json:"llm_temperature" yaml:"llm_temperature" validate:"gte=0,lte=2"`

	// Timeout bounds a single completion call (default 10s).
	Timeout time.Duration `json:"llm_timeout" yaml:"llm_timeout"`

	// MaxTokens caps the generated answer size (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
}

// EngineConfig groups all settings for the query engine.
type EngineConfig struct {
	// MaxResults is the retrieval fan-out per query (default 3).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=0"`

	// CacheSize is the query cache capacity in entries (default 100).
	CacheSize int `json:"cache_size" yaml:"cache_size" validate:"gte=1"`

	Index    IndexConfig    `json:"index" yaml:"index"`
	Fixtures FixturesConfig `json:"fixtures" yaml:"fixtures"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
}

// Defaults from the reference deployment.
const (
	DefaultMaxResults  = 3
	DefaultCacheSize   = 100
	DefaultModel       = "google/gemma-3n-e4b-it"
	DefaultTemperature = 0.2
	DefaultLLMTimeout  = 10 * time.Second
	DefaultMaxTokens   = 500
	DefaultTimezone    = "America/Argentina/Buenos_Aires"
	DefaultIndexPath   = "vector_store/index"
)

// DefaultEngineConfig returns an EngineConfig populated with defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxResults: DefaultMaxResults,
		CacheSize:  DefaultCacheSize,
		Index:      IndexConfig{IndexPath: DefaultIndexPath},
		Fixtures: FixturesConfig{
			HTTPConfig: HTTPConfig{Timeout: 15 * time.Second, UserAgent: "golazo/0.1"},
			Timezone:   DefaultTimezone,
		},
		LLM: LLMConfig{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			Timeout:     DefaultLLMTimeout,
			MaxTokens:   DefaultMaxTokens,
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c EngineConfig) Validate() error {
	return validator.New().Struct(c)
}
