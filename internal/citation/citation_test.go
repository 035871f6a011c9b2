// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

var accessed = time.Date(2026, 3, 9, 17, 45, 0, 0, time.UTC)

func TestFromResults(t *testing.T) {
	results := []types.SearchResult{
		{Title: "Go", URL: "https://go.dev", Source: "go.dev", Snippet: "The Go site"},
		{URL: "https://example.com/x", Source: "example.com"},
		{Title: "Third", URL: "https://third.example"},
	}

	tests := []struct {
		name    string
		max     int
		wantLen int
	}{
		{"uncapped", 0, 3},
		{"cap above length", 10, 3},
		{"cap below length", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromResults(results, accessed, tt.max)
			require.Len(t, got, tt.wantLen)
			for i, c := range got {
				assert.Equal(t, "2026-03-09", c.AccessedDate)
				assert.Equal(t, results[i].URL, c.URL)
			}
		})
	}
}

func TestFromResultsFields(t *testing.T) {
	got := FromResults([]types.SearchResult{
		{Title: "Go", URL: "https://go.dev", Source: "go.dev", Snippet: "The Go site"},
		{URL: "https://example.com/x"},
	}, accessed, 0)

	assert.Equal(t, types.Citation{
		Title: "Go", URL: "https://go.dev", Source: "go.dev",
		AccessedDate: "2026-03-09", Snippet: "The Go site",
	}, got[0])
	assert.Equal(t, "Unknown", got[1].Title)
}

func TestFromResultsEmpty(t *testing.T) {
	got := FromResults(nil, accessed, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReference(t *testing.T) {
	c := types.Citation{Title: "Go", URL: "https://go.dev", AccessedDate: "2026-03-09"}
	assert.Equal(t, "Go. Retrieved 2026-03-09 from https://go.dev", Reference(c))
}

func TestWriteCSL(t *testing.T) {
	citations := []types.Citation{
		{Title: "Go", URL: "https://go.dev", Source: "www.go.dev", AccessedDate: "2026-03-09", Snippet: "site"},
		{Title: "Undated", URL: "https://x.example"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSL(&buf, citations))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "ref1", items[0].ID)
	assert.Equal(t, "webpage", items[0].Type)
	assert.Equal(t, "go.dev", items[0].ContainerTitle)
	require.NotNil(t, items[0].Accessed)
	assert.Equal(t, [][]int{{2026, 3, 9}}, items[0].Accessed.DateParts)

	assert.Equal(t, "ref2", items[1].ID)
	assert.Nil(t, items[1].Accessed)
	assert.Contains(t, buf.String(), "URL: https://x.example")
}
