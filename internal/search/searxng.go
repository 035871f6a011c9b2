// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/research-agent/internal/httputil"
)

// SearxNGBackend queries a SearxNG instance through its JSON API. The
// instance must have the json output format enabled.
type SearxNGBackend struct {
	Client    *http.Client
	UserAgent string
	BaseURL   string
}

// Name returns the backend identifier.
func (b *SearxNGBackend) Name() string { return "searxng" }

// Search calls <BaseURL>/search?format=json and returns up to maxResults
// hits.
func (b *SearxNGBackend) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	u := strings.TrimRight(b.BaseURL, "/") + "/search?" + url.Values{
		"q":      {query},
		"format": {"json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng returned HTTP %d", resp.StatusCode)
	}

	// Results are decoded loosely: a field with an unexpected type becomes
	// an empty string instead of failing the whole response.
	var body struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing searxng response: %w", err)
	}

	var hits []Hit
	for _, r := range body.Results {
		if maxResults > 0 && len(hits) >= maxResults {
			break
		}
		hits = append(hits, Hit{
			Title:   stringField(r, "title"),
			URL:     stringField(r, "url"),
			Snippet: stringField(r, "content"),
		})
	}
	return hits, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
