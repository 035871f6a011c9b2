// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Fetcher retrieves the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

const (
	defaultFetchTimeout = 10 * time.Second

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 5 << 20
)

// HTTPFetcher fetches pages over HTTP with a browser-like identity.
type HTTPFetcher struct {
	Client *http.Client
	Agents *AgentPool

	// UserAgent, when set, is used for every request instead of Agents.
	UserAgent string
}

// NewHTTPFetcher builds a fetcher from cfg. The client timeout defaults to
// 10 seconds and the TLS fingerprint to Go's own.
func NewHTTPFetcher(cfg types.ExtractionConfig) (*HTTPFetcher, error) {
	rt, err := Transport(Fingerprint(cfg.Fingerprint))
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout, Transport: rt},
		Agents:    NewAgentPool(nil),
		UserAgent: cfg.UserAgent,
	}, nil
}

// Fetch GETs url and returns the body. Non-2xx statuses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

func (f *HTTPFetcher) userAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	if f.Agents == nil {
		return DefaultUserAgents[0]
	}
	return f.Agents.Random()
}
