// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Step names one stage of the research pipeline.
type Step string

const (
	StepInitialized       Step = "initialized"
	StepQueryIntake       Step = "queryIntake"
	StepWebSearch         Step = "webSearch"
	StepContentFilter     Step = "contentFilter"
	StepContentExtraction Step = "contentExtraction"
	StepSynthesizer       Step = "synthesizer"
	StepCitationHandler   Step = "citationHandler"
	StepReportGenerator   Step = "reportGenerator"
	StepErrorHandler      Step = "errorHandler"
)

// ResearchState is the single record threaded through every pipeline step.
// One state belongs to exactly one pipeline run and is never shared.
type ResearchState struct {
	// Inputs. Set by NewResearchState and never modified afterwards.
	Query            string `json:"query" yaml:"query"`
	JobID            string `json:"job_id" yaml:"job_id"`
	UserID           string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	MaxResults       int    `json:"max_results" yaml:"max_results"`
	IncludeCitations bool   `json:"include_citations" yaml:"include_citations"`

	RawResults       []SearchResult  `json:"raw_results" yaml:"raw_results"`
	FilteredResults  []SearchResult  `json:"filtered_results" yaml:"filtered_results"`
	ExtractedContent []ExtractedPage `json:"extracted_content" yaml:"extracted_content"`
	SynthesizedText  string          `json:"synthesized_text" yaml:"synthesized_text"`

	ReportTitle      string          `json:"report_title" yaml:"report_title"`
	ExecutiveSummary string          `json:"executive_summary" yaml:"executive_summary"`
	ReportSections   []ReportSection `json:"report_sections" yaml:"report_sections"`
	Citations        []Citation      `json:"citations" yaml:"citations"`
	ReportMarkdown   string          `json:"report_markdown" yaml:"report_markdown"`

	CurrentStep  Step     `json:"current_step" yaml:"current_step"`
	ErrorMessage string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	ProgressLog  []string `json:"progress_log" yaml:"progress_log"`

	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// NewResearchState builds the initial state for a job. Derived fields start
// empty and CurrentStep is StepInitialized.
func NewResearchState(query, jobID, userID string, maxResults int, includeCitations bool, now time.Time) *ResearchState {
	return &ResearchState{
		Query:            query,
		JobID:            jobID,
		UserID:           userID,
		MaxResults:       maxResults,
		IncludeCitations: includeCitations,
		RawResults:       []SearchResult{},
		FilteredResults:  []SearchResult{},
		ExtractedContent: []ExtractedPage{},
		ReportSections:   []ReportSection{},
		Citations:        []Citation{},
		CurrentStep:      StepInitialized,
		ProgressLog:      []string{},
		StartedAt:        now,
	}
}

// Failed reports whether a step has set the error sentinel.
func (s *ResearchState) Failed() bool {
	return s.ErrorMessage != ""
}

// Progress appends a line to the progress log.
func (s *ResearchState) Progress(msg string) {
	s.ProgressLog = append(s.ProgressLog, msg)
}
