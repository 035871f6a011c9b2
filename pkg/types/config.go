package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent overrides the User-Agent header. Empty means the stage default.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchBackendName selects the web search provider.
type SearchBackendName string

const (
	SearchDuckDuckGo SearchBackendName = "duckduckgo"
	SearchSearxNG    SearchBackendName = "searxng"
)

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the search provider.
	Backend SearchBackendName `json:"backend" yaml:"backend"`

	// BaseURL overrides the provider endpoint (required for searxng).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxResults is the default result count when a request does not set one (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExtractionConfig holds settings for content extraction.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxContentLength caps the extracted text of one page, in characters (default 50000).
	MaxContentLength int `json:"max_content_length" yaml:"max_content_length"`

	// Concurrency is the number of pages fetched in parallel (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Fingerprint is the TLS client profile: go, chrome, firefox, or safari.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// LLMProviderName selects the language-model API.
type LLMProviderName string

const (
	ProviderAnthropic LLMProviderName = "anthropic"
	ProviderOpenAI    LLMProviderName = "openai"
)

// AIConfig holds settings for the language-model capability.
type AIConfig struct {
	Provider LLMProviderName `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout bounds one generation call including retries' individual attempts.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// StoreDriver selects the job registry backend.
type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

// StoreConfig holds settings for the job registry.
type StoreConfig struct {
	Driver StoreDriver `json:"driver" yaml:"driver"`

	// DSN is the SQLite path or Postgres connection string.
	DSN string `json:"dsn" yaml:"dsn"`
}

// ExportConfig holds settings for the document-export integration.
type ExportConfig struct {
	// Dir is where exported documents are written. Empty disables export.
	Dir string `json:"dir" yaml:"dir"`

	// PublicURL is the base under which Dir is served (e.g. "http://localhost:8000").
	PublicURL string `json:"public_url" yaml:"public_url"`
}

// WebhookConfig holds settings for the workflow-notification integration.
type WebhookConfig struct {
	// URL is the webhook endpoint. Empty disables notification.
	URL string `json:"url" yaml:"url"`

	// APIKey, when set, is sent as a bearer token.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	PublicURL string `json:"public_url" yaml:"public_url"`
}

// JobsConfig holds settings for the job runner.
type JobsConfig struct {
	// MaxConcurrent caps the number of pipelines running at once (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`
}

// Config groups all settings for the service.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	LLM        AIConfig         `json:"llm" yaml:"llm"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Export     ExportConfig     `json:"export" yaml:"export"`
	Webhook    WebhookConfig    `json:"webhook" yaml:"webhook"`
	Jobs       JobsConfig       `json:"jobs" yaml:"jobs"`
	LogLevel   string           `json:"log_level" yaml:"log_level"`
}
