// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/secrets"
	"github.com/pdiddy/research-agent/pkg/types"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.public_url", "http://localhost:8000")

	v.SetDefault("search.backend", string(types.SearchDuckDuckGo))
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("extraction.timeout", 10*time.Second)
	v.SetDefault("extraction.max_content_length", 50000)
	v.SetDefault("extraction.concurrency", 5)
	v.SetDefault("extraction.fingerprint", "chrome")

	v.SetDefault("llm.provider", string(types.ProviderAnthropic))
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 4096)

	v.SetDefault("store.driver", string(types.StoreMemory))
	v.SetDefault("store.dsn", "research-agent.db")

	v.SetDefault("webhook.timeout", 30*time.Second)
	v.SetDefault("jobs.max_concurrent", 4)
	v.SetDefault("log.level", "info")
}

// loadConfig reads the merged viper settings and fills API keys from the
// secrets directory where configuration leaves them empty.
func loadConfig(v *viper.Viper, s secrets.Set) types.Config {
	cfg := types.Config{
		Server: types.ServerConfig{
			Addr:      v.GetString("server.addr"),
			PublicURL: v.GetString("server.public_url"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("search.timeout"),
				UserAgent: v.GetString("search.user_agent"),
			},
			Backend:    types.SearchBackendName(v.GetString("search.backend")),
			BaseURL:    v.GetString("search.base_url"),
			MaxResults: v.GetInt("search.max_results"),
		},
		Extraction: types.ExtractionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("extraction.timeout"),
				UserAgent: v.GetString("extraction.user_agent"),
			},
			MaxContentLength: v.GetInt("extraction.max_content_length"),
			Concurrency:      v.GetInt("extraction.concurrency"),
			Fingerprint:      v.GetString("extraction.fingerprint"),
		},
		LLM: types.AIConfig{
			Provider:    types.LLMProviderName(v.GetString("llm.provider")),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			Timeout:     v.GetDuration("llm.timeout"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Store: types.StoreConfig{
			Driver: types.StoreDriver(v.GetString("store.driver")),
			DSN:    v.GetString("store.dsn"),
		},
		Export: types.ExportConfig{
			Dir:       v.GetString("export.dir"),
			PublicURL: v.GetString("export.public_url"),
		},
		Webhook: types.WebhookConfig{
			URL:     v.GetString("webhook.url"),
			APIKey:  v.GetString("webhook.api_key"),
			Timeout: v.GetDuration("webhook.timeout"),
		},
		Jobs: types.JobsConfig{
			MaxConcurrent: v.GetInt("jobs.max_concurrent"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if cfg.Export.PublicURL == "" {
		cfg.Export.PublicURL = cfg.Server.PublicURL
	}

	keyName := secrets.AnthropicAPIKey
	if cfg.LLM.Provider == types.ProviderOpenAI {
		keyName = secrets.OpenAIAPIKey
	}
	cfg.LLM.APIKey = s.Fill(keyName, cfg.LLM.APIKey)
	cfg.Webhook.APIKey = s.Fill(secrets.WebhookAPIKey, cfg.Webhook.APIKey)
	return cfg
}
