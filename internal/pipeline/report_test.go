// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/research-agent/pkg/types"
)

func TestCombineContent(t *testing.T) {
	long := strings.Repeat("é", 5000)
	pages := []types.ExtractedPage{
		{URL: "https://a", Content: long},
		{URL: "https://b", Content: "short"},
	}

	got := combineContent(pages)
	chunks := strings.Split(got, chunkSeparator)
	assert.Len(t, chunks, 2)
	assert.Equal(t, "Source: https://a\n"+strings.Repeat("é", 2000), chunks[0])
	assert.Equal(t, "Source: https://b\nshort", chunks[1])
}

func TestCombineContentCapsTotal(t *testing.T) {
	pages := make([]types.ExtractedPage, 10)
	for i := range pages {
		pages[i] = types.ExtractedPage{URL: "https://x", Content: strings.Repeat("w", 3000)}
	}
	got := combineContent(pages)
	assert.Equal(t, synthesisInputCap, utf8.RuneCountInString(got))
	assert.Equal(t, "", combineContent(nil))
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Quantum Leap", cleanTitle(`  "Quantum Leap"  `))
	assert.Equal(t, "Plain", cleanTitle("Plain"))
}

func TestKeySources(t *testing.T) {
	rs := make([]types.SearchResult, 7)
	for i := range rs {
		rs[i] = types.SearchResult{Title: "T", URL: "https://u"}
	}
	got := keySources(rs)
	assert.Equal(t, 5, strings.Count(got, "- T: https://u"))
	assert.Equal(t, "", keySources(nil))
}

func TestRenderReportReferences(t *testing.T) {
	st := &types.ResearchState{
		Query:            "q1234",
		ReportTitle:      "Title",
		IncludeCitations: true,
		ReportSections:   []types.ReportSection{{Heading: "Executive Summary", Content: "S"}},
		Citations: []types.Citation{
			{Title: "One", URL: "https://one", AccessedDate: "2026-03-09"},
			{Title: "Two", URL: "https://two", AccessedDate: "2026-03-09"},
		},
	}

	got := renderReport(st, "2026-03-09 10:00:00")
	assert.Equal(t, "# Title\n\n"+
		"**Research Query:** q1234\n\n"+
		"**Generated:** 2026-03-09 10:00:00\n\n"+
		"---\n\n"+
		"## Executive Summary\n\nS\n\n"+
		"## References\n\n"+
		"1. One. Retrieved 2026-03-09 from https://one\n"+
		"2. Two. Retrieved 2026-03-09 from https://two\n", got)

	st.IncludeCitations = false
	assert.NotContains(t, renderReport(st, "x"), "References")

	st.IncludeCitations = true
	st.Citations = nil
	assert.NotContains(t, renderReport(st, "x"), "References")
}

func TestErrorReport(t *testing.T) {
	st := &types.ResearchState{Query: "ab", CurrentStep: types.StepQueryIntake, ErrorMessage: "Query too short or empty"}
	got := errorReport(st)

	assert.True(t, strings.HasPrefix(got, "# Research Report Error: queryIntake failed for \"ab\"\n\n"))
	assert.Contains(t, got, "**Query:** ab")
	assert.Contains(t, got, "**Error:** Query too short or empty")
	assert.Contains(t, got, "**Step Failed:** queryIntake")
}
