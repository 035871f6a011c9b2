// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract fetches web pages and turns them into clean, length-capped
// text for the synthesis step. Fetch faults never propagate: a page that
// cannot be fetched or cleaned is simply absent from the output.
package extract

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	// DefaultMaxContentLength caps one page's text, in characters.
	DefaultMaxContentLength = 50000

	defaultConcurrency = 5
)

// Extractor applies the extraction policy over a Fetcher.
type Extractor struct {
	Fetcher          Fetcher
	MaxContentLength int
	Concurrency      int
	Timeout          time.Duration
	Log              logging.Logger
}

// New returns an Extractor with cfg's limits. Zero values select the
// defaults: 50000 characters, 5 concurrent fetches, 10 second timeout.
func New(f Fetcher, cfg types.ExtractionConfig, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.Nop()
	}
	e := &Extractor{
		Fetcher:          f,
		MaxContentLength: cfg.MaxContentLength,
		Concurrency:      cfg.Concurrency,
		Timeout:          cfg.Timeout,
		Log:              log,
	}
	if e.MaxContentLength <= 0 {
		e.MaxContentLength = DefaultMaxContentLength
	}
	if e.Concurrency <= 0 {
		e.Concurrency = defaultConcurrency
	}
	if e.Timeout <= 0 {
		e.Timeout = defaultFetchTimeout
	}
	return e
}

// Extract fetches url and returns its cleaned text. The second result is
// false when the page could not be fetched or parsed; the fault is logged.
func (e *Extractor) Extract(ctx context.Context, url string) (types.ExtractedPage, bool) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := e.Log
	if log == nil {
		log = logging.Nop()
	}

	raw, err := e.Fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn("extraction fetch failed", logging.String("url", url), logging.Err(err))
		return types.ExtractedPage{}, false
	}

	text, err := Clean(raw, url)
	if err != nil {
		log.Warn("extraction cleanup failed", logging.String("url", url), logging.Err(err))
		return types.ExtractedPage{}, false
	}

	content := Truncate(text, e.MaxContentLength)
	log.Debug("extracted page",
		logging.String("url", url),
		logging.Int("chars", len([]rune(content))))
	return types.ExtractedPage{URL: url, Content: content}, true
}

// BatchExtract extracts every url, fetching up to Concurrency pages at once.
// Pages that fail are omitted; the rest keep the order of urls. The only
// error is the context's, when it ends before the batch completes.
func (e *Extractor) BatchExtract(ctx context.Context, urls []string) ([]types.ExtractedPage, error) {
	slots := make([]*types.ExtractedPage, len(urls))

	var g errgroup.Group
	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			if page, ok := e.Extract(ctx, u); ok {
				slots[i] = &page
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return []types.ExtractedPage{}, err
	}

	pages := make([]types.ExtractedPage, 0, len(urls))
	for _, p := range slots {
		if p != nil {
			pages = append(pages, *p)
		}
	}
	return pages, nil
}
