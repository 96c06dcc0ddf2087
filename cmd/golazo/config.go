// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/golazo-dev/golazo/pkg/types"
)

// engineConfig assembles the engine configuration: defaults, overridden
// by the config file and GOLAZO_* environment variables, with API keys
// resolved from config, conventional environment variables, or .secrets/.
func engineConfig() (types.EngineConfig, error) {
	cfg := types.DefaultEngineConfig()

	if viper.IsSet("max_results") {
		cfg.MaxResults = viper.GetInt("max_results")
	}
	if viper.IsSet("cache_size") {
		cfg.CacheSize = viper.GetInt("cache_size")
	}
	if v := viper.GetString("index.index_path"); v != "" {
		cfg.Index.IndexPath = v
	}
	if v := viper.GetString("fixtures.timezone"); v != "" {
		cfg.Fixtures.Timezone = v
	}
	if v := viper.GetDuration("fixtures.timeout"); v > 0 {
		cfg.Fixtures.Timeout = v
	}
	if v := viper.GetString("llm.llm_model"); v != "" {
		cfg.LLM.Model = v
	}
	if viper.IsSet("llm.llm_temperature") {
		cfg.LLM.Temperature = viper.GetFloat64("llm.llm_temperature")
	}
	if v := viper.GetDuration("llm.llm_timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}

	cfg.Fixtures.APIKey = resolveKey(viper.GetString("fixtures.api_key"), "API_FOOTBALL_KEY", "api-football-key")
	cfg.LLM.APIKey = resolveKey(viper.GetString("llm.api_key"), "OPENROUTER_API_KEY", "openrouter-api-key")

	if err := cfg.Validate(); err != nil {
		return types.EngineConfig{}, err
	}
	return cfg, nil
}

// resolveKey picks the first non-empty credential: explicit config
// value, environment variable, then the .secrets/ file.
func resolveKey(configured, envVar, secretFile string) string {
	if configured != "" {
		return configured
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return secretDefault(secretFile, "")
}

// queryTimeout bounds an entire ask invocation; generation has its own
// tighter per-call deadline inside the pipeline.
const queryTimeout = 60 * time.Second
