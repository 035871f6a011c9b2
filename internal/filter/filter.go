// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter scores web search results against a research query and
// ranks them. Filtering is pure: it performs no I/O and never fails.
package filter

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-agent/pkg/types"
)

// DefaultMinSnippetLength is the shortest snippet, in characters, that
// survives filtering.
const DefaultMinSnippetLength = 50

// Filter drops results whose snippet is shorter than minSnippetLength,
// scores the rest by the number of distinct query terms found in the
// lowercased title or snippet, and returns them ordered by descending score.
// Results with equal scores keep their input order. The input slice is not
// modified.
func Filter(results []types.SearchResult, query string, minSnippetLength int) []types.SearchResult {
	terms := Terms(query)

	out := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if utf8.RuneCountInString(r.Snippet) < minSnippetLength {
			continue
		}
		score := Score(r, terms)
		r.RelevanceScore = &score
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}

// Terms splits query on whitespace and returns its distinct lowercased terms
// in first-seen order.
func Terms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// Score counts how many of terms occur as substrings of the result's
// lowercased snippet or title.
func Score(r types.SearchResult, terms []string) int {
	snippet := strings.ToLower(r.Snippet)
	title := strings.ToLower(r.Title)

	n := 0
	for _, t := range terms {
		if strings.Contains(snippet, t) || strings.Contains(title, t) {
			n++
		}
	}
	return n
}
