// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-agent/internal/citation"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	summaryInputChars = 3000
	keySourcesLimit   = 5

	generatedLayout = "2006-01-02 15:04:05"

	headingSummary    = "Executive Summary"
	headingFindings   = "Research Findings"
	headingKeySources = "Key Sources"
	headingReferences = "References"
)

var (
	titlePromptTmpl   = template.Must(template.New("title").Parse("Research Query: {{.Query}}"))
	summaryPromptTmpl = template.Must(template.New("summary").Parse("Research Query: {{.Query}}\n\nFindings: {{.Findings}}"))
)

const (
	titleSystem   = "Generate a concise, professional title for this research report."
	summarySystem = "Create a brief executive summary (2-3 sentences) of the research findings."
)

func (p *Pipeline) generateReport(ctx context.Context, st *types.ResearchState) error {
	st.Progress("Generating final report...")

	title, err := p.generateTitle(ctx, st.Query)
	if err != nil {
		return reportFault(err)
	}
	st.ReportTitle = title

	summary, err := p.generateSummary(ctx, st)
	if err != nil {
		return reportFault(err)
	}
	st.ExecutiveSummary = summary

	st.ReportSections = []types.ReportSection{
		{Heading: headingSummary, Content: st.ExecutiveSummary},
		{Heading: headingFindings, Content: st.SynthesizedText},
		{Heading: headingKeySources, Content: keySources(st.FilteredResults)},
	}

	completed := p.now()
	st.ReportMarkdown = renderReport(st, completed.Format(generatedLayout))
	st.CompletedAt = &completed
	st.Progress("Report generated successfully")
	return nil
}

func reportFault(err error) error {
	return &Fault{Kind: KindReport, Step: types.StepReportGenerator, Err: err}
}

// reportFailed replaces the report with a minimal error document. The
// report step is terminal, so this is the markdown the caller receives.
func (p *Pipeline) reportFailed(st *types.ResearchState, err error) {
	st.ReportMarkdown = "# Error Generating Report\n\n" + err.Error()
	completed := p.now()
	st.CompletedAt = &completed
}

func (p *Pipeline) generateTitle(ctx context.Context, query string) (string, error) {
	prompt, err := render(titlePromptTmpl, map[string]string{"Query": query})
	if err != nil {
		return "", err
	}
	title, err := p.llm.Generate(ctx, prompt, titleSystem)
	if err != nil {
		return "", fmt.Errorf("generating title: %w", err)
	}
	return cleanTitle(title), nil
}

func (p *Pipeline) generateSummary(ctx context.Context, st *types.ResearchState) (string, error) {
	prompt, err := render(summaryPromptTmpl, map[string]string{
		"Query":    st.Query,
		"Findings": firstRunes(st.SynthesizedText, summaryInputChars),
	})
	if err != nil {
		return "", err
	}
	summary, err := p.llm.Generate(ctx, prompt, summarySystem)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return summary, nil
}

// cleanTitle strips surrounding whitespace and double quotes, which models
// tend to wrap titles in.
func cleanTitle(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

func keySources(results []types.SearchResult) string {
	n := min(len(results), keySourcesLimit)
	lines := make([]string, 0, n)
	for _, r := range results[:n] {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}

func renderReport(st *types.ResearchState, generated string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", st.ReportTitle)
	fmt.Fprintf(&b, "**Research Query:** %s\n\n", st.Query)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generated)
	b.WriteString("---\n\n")

	for _, s := range st.ReportSections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading, s.Content)
	}

	if st.IncludeCitations && len(st.Citations) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", headingReferences)
		for i, c := range st.Citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, citation.Reference(c))
		}
	}
	return b.String()
}

// errorReport is the document written when a run fails before the report
// step. The heading names both the failed step and the query.
func errorReport(st *types.ResearchState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report Error: %s failed for %q\n\n", st.CurrentStep, st.Query)
	fmt.Fprintf(&b, "**Query:** %s\n\n", st.Query)
	fmt.Fprintf(&b, "**Error:** %s\n\n", st.ErrorMessage)
	fmt.Fprintf(&b, "**Step Failed:** %s\n\n", st.CurrentStep)
	b.WriteString("Please try again or contact support if the issue persists.\n")
	return b.String()
}
