// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs web searches and normalizes provider hits into
// types.SearchResult records. Each provider is a Backend; Tool wraps one
// backend and guarantees a usable (possibly empty) result slice.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// DefaultMaxResults is used when a caller asks for zero or fewer results.
const DefaultMaxResults = 10

// ErrUnavailable wraps every backend failure returned by Tool.Search.
var ErrUnavailable = errors.New("search unavailable")

// Hit is one raw provider result before normalization. Fields the provider
// omitted or sent in an unexpected shape are empty.
type Hit struct {
	Title   string
	URL     string
	Snippet string
}

// Backend queries a single search provider.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Hit, error)
}

// Tool is the web search capability used by the research pipeline.
type Tool struct {
	Backend Backend
	Log     logging.Logger
}

// NewTool returns a Tool over b. A nil logger discards output.
func NewTool(b Backend, log logging.Logger) *Tool {
	if log == nil {
		log = logging.Nop()
	}
	return &Tool{Backend: b, Log: log}
}

// Search returns up to maxResults normalized results for query.
//
// The returned slice is never nil. When the backend fails Search returns an
// empty slice together with an error wrapping ErrUnavailable, so callers
// that only want results can ignore the error and callers that need to tell
// "no hits" from "provider down" can check it.
func (t *Tool) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	hits, err := t.Backend.Search(ctx, query, maxResults)
	if err != nil {
		t.Log.Warn("search backend failed",
			logging.String("backend", t.Backend.Name()),
			logging.Err(err))
		return []types.SearchResult{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, t.Backend.Name(), err)
	}

	results := make([]types.SearchResult, 0, len(hits))
	for _, h := range hits {
		if len(results) == maxResults {
			break
		}
		results = append(results, Normalize(h))
	}
	return results, nil
}

// Normalize converts a provider hit into a SearchResult. Source is the host
// of the URL, or empty when the URL cannot be parsed.
func Normalize(h Hit) types.SearchResult {
	return types.SearchResult{
		Title:   strings.TrimSpace(h.Title),
		URL:     strings.TrimSpace(h.URL),
		Snippet: strings.TrimSpace(h.Snippet),
		Source:  hostOf(h.URL),
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}

// NewBackend builds the backend named in cfg.
func NewBackend(cfg types.SearchConfig) (Backend, error) {
	client := newClient(cfg.Timeout)
	switch cfg.Backend {
	case "", types.SearchDuckDuckGo:
		return &DuckDuckGoBackend{Client: client, UserAgent: cfg.UserAgent, BaseURL: cfg.BaseURL}, nil
	case types.SearchSearxNG:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("searxng backend requires search.base_url")
		}
		return &SearxNGBackend{Client: client, UserAgent: cfg.UserAgent, BaseURL: cfg.BaseURL}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}

const defaultSearchTimeout = 15 * time.Second

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &http.Client{Timeout: timeout}
}
