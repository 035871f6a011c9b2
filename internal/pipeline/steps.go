// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/research-agent/internal/citation"
	"github.com/pdiddy/research-agent/internal/filter"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	minQueryLength = 5

	// maxExtractURLs caps how many filtered results are fetched, whatever
	// MaxResults is.
	maxExtractURLs = 5

	pageExcerptChars     = 2000
	synthesisInputCap    = 15000
	chunkSeparator       = "\n\n---\n\n"
	synthesisPlaceholder = "Error synthesizing content"
)

func (p *Pipeline) queryIntake(_ context.Context, st *types.ResearchState) error {
	st.Progress("Processing query: " + st.Query)
	if utf8.RuneCountInString(strings.TrimSpace(st.Query)) < minQueryLength {
		return &Fault{Kind: KindValidation, Step: types.StepQueryIntake, Err: ErrQueryTooShort}
	}
	return nil
}

func (p *Pipeline) webSearch(ctx context.Context, st *types.ResearchState) error {
	st.Progress("Searching the web...")
	results, err := p.search.Search(ctx, st.Query, st.MaxResults)
	if err != nil {
		return &Fault{Kind: KindSearch, Step: types.StepWebSearch, Err: err}
	}
	if results == nil {
		results = []types.SearchResult{}
	}
	st.RawResults = results
	st.Progress(fmt.Sprintf("Found %d search results", len(results)))
	return nil
}

func (p *Pipeline) contentFilter(_ context.Context, st *types.ResearchState) error {
	st.Progress("Filtering relevant results...")

	filtered, err := p.safeFilter(st)
	if err != nil {
		p.log.Warn("relevance filter failed, keeping raw results",
			logging.String("job_id", st.JobID), logging.Err(err))
		filtered = st.RawResults
	}

	st.FilteredResults = capResults(filtered, st.MaxResults)
	st.Progress(fmt.Sprintf("Filtered to %d relevant sources", len(st.FilteredResults)))
	return nil
}

func (p *Pipeline) safeFilter(st *types.ResearchState) (out []types.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.filter(st.RawResults, st.Query, filter.DefaultMinSnippetLength), nil
}

func capResults(rs []types.SearchResult, max int) []types.SearchResult {
	if max > 0 && len(rs) > max {
		rs = rs[:max]
	}
	out := make([]types.SearchResult, len(rs))
	copy(out, rs)
	return out
}

func (p *Pipeline) contentExtraction(ctx context.Context, st *types.ResearchState) error {
	st.Progress("Extracting content from sources...")

	n := min(len(st.FilteredResults), maxExtractURLs)
	urls := make([]string, 0, n)
	for _, r := range st.FilteredResults[:n] {
		urls = append(urls, r.URL)
	}

	pages, err := p.extract.BatchExtract(ctx, urls)
	if err != nil {
		return &Fault{Kind: KindExtraction, Step: types.StepContentExtraction, Err: err}
	}
	if pages == nil {
		pages = []types.ExtractedPage{}
	}
	st.ExtractedContent = pages
	st.Progress(fmt.Sprintf("Extracted content from %d sources", len(pages)))
	return nil
}

var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(
	"Research Query: {{.Query}}\n\nWeb Content:\n{{.Content}}\n\nProvide a comprehensive synthesis."))

const synthesisSystem = `You are a research analyst. Synthesize the provided web content into a comprehensive, well-structured analysis that answers the research query. Be objective, factual, and cite key findings.`

func (p *Pipeline) synthesize(ctx context.Context, st *types.ResearchState) error {
	st.Progress("Synthesizing findings...")

	prompt, err := render(synthesisPromptTmpl, map[string]string{
		"Query":   st.Query,
		"Content": combineContent(st.ExtractedContent),
	})
	if err != nil {
		return &Fault{Kind: KindSynthesis, Step: types.StepSynthesizer, Err: err}
	}

	text, err := p.llm.Generate(ctx, prompt, synthesisSystem)
	if err != nil {
		return &Fault{Kind: KindSynthesis, Step: types.StepSynthesizer, Err: err}
	}
	st.SynthesizedText = text
	st.Progress("Synthesized research findings")
	return nil
}

// combineContent joins an excerpt of each page under a "Source:" line and
// caps the whole at synthesisInputCap characters.
func combineContent(pages []types.ExtractedPage) string {
	chunks := make([]string, 0, len(pages))
	for _, pg := range pages {
		chunks = append(chunks, "Source: "+pg.URL+"\n"+firstRunes(pg.Content, pageExcerptChars))
	}
	return firstRunes(strings.Join(chunks, chunkSeparator), synthesisInputCap)
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (p *Pipeline) citations(_ context.Context, st *types.ResearchState) error {
	st.Progress("Generating citations...")
	if !st.IncludeCitations {
		st.Citations = []types.Citation{}
		st.Progress("Citations disabled")
		return nil
	}
	st.Citations = citation.FromResults(st.FilteredResults, p.now(), st.MaxResults)
	st.Progress(fmt.Sprintf("Generated %d citations", len(st.Citations)))
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
