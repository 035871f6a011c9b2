// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// fakeFetcher serves canned pages; URLs without a page fail.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	delays map[string]time.Duration
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if d := f.delays[url]; d > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(d):
		}
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetch %s: connection refused", url)
	}
	return page, nil
}

// filler keeps test pages above the readability fallback threshold.
var filler = strings.Repeat("Background paragraph with enough words to count as content. ", 5)

func article(body string) string {
	return "<html><body><nav>Home | About</nav><article><p>" + body + "</p><p>" + filler +
		"</p></article><footer>Copyright</footer></body></html>"
}

func TestExtract(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://ok.example": article("Quantum computers use qubits."),
	}}
	e := New(f, types.ExtractionConfig{}, logging.Nop())

	page, ok := e.Extract(context.Background(), "https://ok.example")
	require.True(t, ok)
	assert.Equal(t, "https://ok.example", page.URL)
	assert.Contains(t, page.Content, "Quantum computers use qubits.")
	assert.NotContains(t, page.Content, "Home | About")
	assert.NotContains(t, page.Content, "Copyright")

	_, ok = e.Extract(context.Background(), "https://missing.example")
	assert.False(t, ok)
}

func TestExtractTruncates(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://long.example": article(strings.Repeat("word ", 400)),
	}}
	e := New(f, types.ExtractionConfig{MaxContentLength: 100}, nil)

	page, ok := e.Extract(context.Background(), "https://long.example")
	require.True(t, ok)
	assert.Equal(t, 103, len([]rune(page.Content)))
	assert.True(t, strings.HasSuffix(page.Content, "..."))
}

func TestExtractTimeout(t *testing.T) {
	f := &fakeFetcher{
		pages:  map[string]string{"https://slow.example": article("late")},
		delays: map[string]time.Duration{"https://slow.example": time.Second},
	}
	e := New(f, types.ExtractionConfig{HTTPConfig: types.HTTPConfig{Timeout: 20 * time.Millisecond}}, nil)

	start := time.Now()
	_, ok := e.Extract(context.Background(), "https://slow.example")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBatchExtractIsolatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		pages   []string
		want    []string
		delayed string
	}{
		{
			name:  "all succeed",
			urls:  []string{"https://a", "https://b", "https://c"},
			pages: []string{"https://a", "https://b", "https://c"},
			want:  []string{"https://a", "https://b", "https://c"},
		},
		{
			name:  "middle fails",
			urls:  []string{"https://a", "https://b", "https://c"},
			pages: []string{"https://a", "https://c"},
			want:  []string{"https://a", "https://c"},
		},
		{
			name:  "all fail",
			urls:  []string{"https://a", "https://b"},
			pages: nil,
			want:  []string{},
		},
		{
			name:    "slow first page keeps its position",
			urls:    []string{"https://a", "https://b", "https://c", "https://d"},
			pages:   []string{"https://a", "https://b", "https://d"},
			want:    []string{"https://a", "https://b", "https://d"},
			delayed: "https://a",
		},
		{
			name: "empty input",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{pages: map[string]string{}, delays: map[string]time.Duration{}}
			for _, u := range tt.pages {
				f.pages[u] = article("content of " + u)
			}
			if tt.delayed != "" {
				f.delays[tt.delayed] = 30 * time.Millisecond
			}
			e := New(f, types.ExtractionConfig{Concurrency: 4}, nil)

			got, err := e.BatchExtract(context.Background(), tt.urls)
			require.NoError(t, err)

			urls := make([]string, len(got))
			for i, p := range got {
				urls[i] = p.URL
				assert.Contains(t, p.Content, "content of "+p.URL)
			}
			assert.Equal(t, tt.want, urls)
			assert.Len(t, f.calls, len(tt.urls))
		})
	}
}

func TestBatchExtractContextCancelled(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://a": article("x")}}
	e := New(f, types.ExtractionConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := e.BatchExtract(ctx, []string{"https://a"})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, got)
}

func TestBatchExtractZeroValueExtractor(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://a": article("x")}}
	e := &Extractor{Fetcher: f}

	got, err := e.BatchExtract(context.Background(), []string{"https://a", "https://b"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a", got[0].URL)
}
