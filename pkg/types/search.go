// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-agent pipeline.
// It holds the research state threaded through every pipeline step, the
// records derived from search results, job records kept by the registry,
// and the configuration structs for each stage.
package types

// SearchResult is one normalized web search hit.
type SearchResult struct {
	// Title is the page title as reported by the search provider.
	Title string `json:"title" yaml:"title"`

	// URL is the address of the result page.
	URL string `json:"url" yaml:"url"`

	// Snippet is the short text excerpt the provider returned.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Source is the host component of URL (e.g. "en.wikipedia.org").
	Source string `json:"source" yaml:"source"`

	// RelevanceScore counts the distinct query terms found in the title or
	// snippet. It is nil until the relevance filter has scored the result.
	RelevanceScore *int `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}

// Score returns the relevance score, or 0 when the result is unscored.
func (r SearchResult) Score() int {
	if r.RelevanceScore == nil {
		return 0
	}
	return *r.RelevanceScore
}

// ExtractedPage is the cleaned text of one fetched result page.
type ExtractedPage struct {
	URL     string `json:"url" yaml:"url"`
	Content string `json:"content" yaml:"content"`
}

// Citation is a source attribution derived from a filtered search result.
type Citation struct {
	Title        string `json:"title" yaml:"title"`
	URL          string `json:"url" yaml:"url"`
	Source       string `json:"source" yaml:"source"`
	AccessedDate string `json:"accessed_date" yaml:"accessed_date"`
	Snippet      string `json:"snippet" yaml:"snippet"`
}

// ReportSection is one headed block of the final report.
type ReportSection struct {
	Heading string `json:"heading" yaml:"heading"`
	Content string `json:"content" yaml:"content"`
}
