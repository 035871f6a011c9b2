// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Kind classifies a pipeline fault.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindSearch      Kind = "search"
	KindExtraction  Kind = "extraction"
	KindSynthesis   Kind = "synthesis"
	KindCitation    Kind = "citation"
	KindReport      Kind = "report"
	KindIntegration Kind = "integration"
)

var kindPrefix = map[Kind]string{
	KindSearch:      "Search error",
	KindExtraction:  "Extraction error",
	KindSynthesis:   "Synthesis error",
	KindCitation:    "Citation error",
	KindReport:      "Report generation error",
	KindIntegration: "Integration error",
}

// ErrQueryTooShort is the validation failure for a blank or short query.
var ErrQueryTooShort = errors.New("Query too short or empty")

// Fault is the failure outcome of a step. Its Error text is what the state's
// ErrorMessage records.
type Fault struct {
	Kind Kind
	Step types.Step
	Err  error
}

func (f *Fault) Error() string {
	if p, ok := kindPrefix[f.Kind]; ok {
		return p + ": " + f.Err.Error()
	}
	return f.Err.Error()
}

func (f *Fault) Unwrap() error { return f.Err }

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, k Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == k
}
