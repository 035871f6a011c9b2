// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language-model capability used by the research
// pipeline: a single Generate call taking a user prompt and a system
// instruction. Providers speak the Claude Messages API or any
// OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Generator produces text from a prompt and a system instruction.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// ErrMissingAPIKey is returned by providers constructed without a key.
var ErrMissingAPIKey = errors.New("missing API key for language-model provider")

// ErrUnsupportedProvider names a provider New does not know.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

// StatusError is a non-200 response from a provider API.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.Code, e.Body)
}

// Temporary reports whether the call may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || httputil.Retryable(e.Code)
}

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 3
	defaultTemperature = 0.3
	defaultMaxTokens   = 4096
)

// New builds the provider named in cfg and wraps it with per-call timeouts
// and retries.
func New(cfg types.AIConfig) (Generator, error) {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	var g Generator
	switch cfg.Provider {
	case "", types.ProviderAnthropic:
		g = &ClaudeProvider{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}
	case types.ProviderOpenAI:
		g = NewOpenAIProvider(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, ErrUnsupportedProvider{Provider: string(cfg.Provider)}
	}

	return WithRetry(g, cfg.MaxRetries, cfg.Timeout), nil
}

// Retrying wraps a Generator so that each attempt runs under its own
// timeout and transient failures are retried with exponential backoff.
type Retrying struct {
	Next       Generator
	MaxRetries int
	Timeout    time.Duration
}

// WithRetry wraps g. Zero values select the defaults (3 retries, 60s).
func WithRetry(g Generator, maxRetries int, timeout time.Duration) *Retrying {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Retrying{Next: g, MaxRetries: maxRetries, Timeout: timeout}
}

// Generate calls the wrapped generator with retries.
func (r *Retrying) Generate(ctx context.Context, prompt, system string) (string, error) {
	return callWithRetry(ctx, r.MaxRetries, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, r.Timeout)
		defer cancel()
		return r.Next.Generate(ctx, prompt, system)
	})
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry runs call until it succeeds, fails permanently, or
// maxRetries retries have been spent.
func callWithRetry(ctx context.Context, maxRetries int, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := call(ctx)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
