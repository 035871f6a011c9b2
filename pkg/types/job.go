// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobStatus is the lifecycle state of a research job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ResearchRequest is the caller's input for a new research job.
type ResearchRequest struct {
	Query            string `json:"query" yaml:"query"`
	UserID           string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	MaxResults       int    `json:"max_results" yaml:"max_results"`
	IncludeCitations bool   `json:"include_citations" yaml:"include_citations"`
}

// Job is the registry record for one research run. The result fields are
// filled in when the run terminates.
type Job struct {
	ID               string    `json:"job_id" yaml:"job_id"`
	Status           JobStatus `json:"status" yaml:"status"`
	Query            string    `json:"query" yaml:"query"`
	UserID           string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	MaxResults       int       `json:"max_results" yaml:"max_results"`
	IncludeCitations bool      `json:"include_citations" yaml:"include_citations"`

	// Progress is the pipeline step currently (or last) executing.
	Progress Step `json:"progress,omitempty" yaml:"progress,omitempty"`

	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	Title          string     `json:"title,omitempty" yaml:"title,omitempty"`
	Summary        string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Citations      []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`
	ReportMarkdown string     `json:"report_markdown,omitempty" yaml:"report_markdown,omitempty"`
	DocumentURL    string     `json:"document_url,omitempty" yaml:"document_url,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// WebhookResponse is the decoded body returned by the notifier, if any.
	WebhookResponse map[string]any `json:"webhook_response,omitempty" yaml:"webhook_response,omitempty"`
}
