// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/research-agent/internal/httputil"
)

// duckDuckGoURL is the DuckDuckGo HTML endpoint. Declared as a var so tests
// can substitute an httptest server.
var duckDuckGoURL = "https://html.duckduckgo.com/html/"

const defaultSearchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DuckDuckGoBackend scrapes the DuckDuckGo HTML results page. It needs no
// API key.
type DuckDuckGoBackend struct {
	Client    *http.Client
	UserAgent string

	// BaseURL overrides duckDuckGoURL when set.
	BaseURL string
}

// Name returns the backend identifier.
func (b *DuckDuckGoBackend) Name() string { return "duckduckgo" }

// Search fetches the results page for query and parses up to maxResults
// organic hits. Sponsored results are skipped.
func (b *DuckDuckGoBackend) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	endpoint := duckDuckGoURL
	if b.BaseURL != "" {
		endpoint = b.BaseURL
	}

	u := endpoint + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ua := b.UserAgent
	if ua == "" {
		ua = defaultSearchUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html")

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing duckduckgo response: %w", err)
	}
	return parseDuckDuckGo(doc, maxResults), nil
}

func parseDuckDuckGo(doc *goquery.Document, maxResults int) []Hit {
	var hits []Hit
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if maxResults > 0 && len(hits) >= maxResults {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		hits = append(hits, Hit{
			Title:   strings.TrimSpace(link.Text()),
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return hits
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" click-tracking
// links. Any other href is returned as is.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
