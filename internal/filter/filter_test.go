// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/pkg/types"
)

var longPad = strings.Repeat(" lorem ipsum", 5)

func result(title, snippet string) types.SearchResult {
	return types.SearchResult{Title: title, URL: "https://example.com/" + title, Snippet: snippet + longPad}
}

func titles(rs []types.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name       string
		results    []types.SearchResult
		query      string
		wantTitles []string
		wantScores []int
	}{
		{
			name: "ranks by distinct matching terms",
			results: []types.SearchResult{
				result("a", "nothing relevant here"),
				result("b", "quantum computing advances"),
				result("c", "quantum physics"),
			},
			query:      "quantum computing",
			wantTitles: []string{"b", "c", "a"},
			wantScores: []int{2, 1, 0},
		},
		{
			name: "title matches count",
			results: []types.SearchResult{
				result("x", "unrelated text"),
				result("Golang generics", "unrelated text"),
			},
			query:      "golang",
			wantTitles: []string{"Golang generics", "x"},
			wantScores: []int{1, 0},
		},
		{
			name: "repeated query terms count once",
			results: []types.SearchResult{
				result("a", "rust rust rust"),
			},
			query:      "rust Rust RUST",
			wantTitles: []string{"a"},
			wantScores: []int{1},
		},
		{
			name: "terms match as substrings",
			results: []types.SearchResult{
				result("a", "computational methods"),
			},
			query:      "comput",
			wantTitles: []string{"a"},
			wantScores: []int{1},
		},
		{
			name: "empty query keeps original order",
			results: []types.SearchResult{
				result("first", "alpha"),
				result("second", "beta"),
				result("third", "gamma"),
			},
			query:      "   ",
			wantTitles: []string{"first", "second", "third"},
			wantScores: []int{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.results, tt.query, DefaultMinSnippetLength)
			assert.Equal(t, tt.wantTitles, titles(got))
			require.Len(t, got, len(tt.wantScores))
			for i, want := range tt.wantScores {
				require.NotNil(t, got[i].RelevanceScore)
				assert.Equal(t, want, *got[i].RelevanceScore, "result %d", i)
			}
		})
	}
}

func TestFilterDropsShortSnippets(t *testing.T) {
	results := []types.SearchResult{
		{Title: "short", Snippet: "too short"},
		{Title: "exact", Snippet: strings.Repeat("x", 50)},
		{Title: "just under", Snippet: strings.Repeat("x", 49)},
		{Title: "empty"},
	}

	got := Filter(results, "query", 50)
	assert.Equal(t, []string{"exact"}, titles(got))
}

func TestFilterCountsCharactersNotBytes(t *testing.T) {
	snippet := strings.Repeat("é", 50)
	got := Filter([]types.SearchResult{{Title: "accented", Snippet: snippet}}, "x", 50)
	assert.Len(t, got, 1)
}

func TestFilterStableOnTies(t *testing.T) {
	results := []types.SearchResult{
		result("a1", "go"),
		result("b1", "nothing"),
		result("a2", "go"),
		result("b2", "nothing"),
		result("a3", "go"),
	}

	got := Filter(results, "go", DefaultMinSnippetLength)
	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, titles(got))
}

func TestFilterIsIdempotent(t *testing.T) {
	results := []types.SearchResult{
		result("a", "solar panels"),
		result("b", "solar energy storage panels"),
		result("c", "wind"),
		result("d", "energy"),
	}
	query := "solar energy panels"

	once := Filter(results, query, DefaultMinSnippetLength)
	twice := Filter(once, query, DefaultMinSnippetLength)

	assert.Equal(t, titles(once), titles(twice))
	for i := range once {
		assert.Equal(t, once[i].Score(), twice[i].Score())
	}
}

func TestFilterOutputProperties(t *testing.T) {
	results := []types.SearchResult{
		result("a", "one two"),
		{Title: "short", Snippet: "two"},
		result("b", "three"),
		result("c", "one two three"),
	}

	got := Filter(results, "one two three", DefaultMinSnippetLength)
	assert.LessOrEqual(t, len(got), len(results))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score(), got[i].Score())
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	results := []types.SearchResult{result("b", "nothing"), result("a", "match")}

	Filter(results, "match", DefaultMinSnippetLength)
	assert.Nil(t, results[0].RelevanceScore)
	assert.Equal(t, "b", results[0].Title)
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"what", "is", "go"}, Terms("What is  Go\tgo"))
	assert.Empty(t, Terms(""))
}
