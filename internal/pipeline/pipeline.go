// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the research state machine: a fixed, linear sequence
// of steps over one ResearchState, with a single escape to the error step.
//
//	queryIntake → webSearch → contentFilter → contentExtraction →
//	synthesizer → citationHandler → reportGenerator
//
// Each step returns nil or a *Fault. On a fault the driver records the
// message, lets the step write its fallback values, and (unless the step is
// terminal) runs the error step. Run never returns an error and always
// leaves a renderable ReportMarkdown.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/research-agent/internal/filter"
	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Searcher is the web search capability.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// BatchExtractor is the content extraction capability.
type BatchExtractor interface {
	BatchExtract(ctx context.Context, urls []string) ([]types.ExtractedPage, error)
}

// FilterFunc ranks search results against a query.
type FilterFunc func(results []types.SearchResult, query string, minSnippetLength int) []types.SearchResult

// Observer is told when a run enters a step.
type Observer func(jobID string, step types.Step)

// Deps are the capabilities a Pipeline is built from.
type Deps struct {
	Search  Searcher
	Extract BatchExtractor
	LLM     llm.Generator

	// Filter defaults to filter.Filter.
	Filter FilterFunc

	// Now defaults to time.Now.
	Now func() time.Time

	Log logging.Logger
}

// Pipeline is safe for concurrent use: all per-run data lives in the state.
type Pipeline struct {
	search  Searcher
	extract BatchExtractor
	llm     llm.Generator
	filter  FilterFunc
	now     func() time.Time
	log     logging.Logger

	steps []step
}

// step is one stage. run returns nil or a *Fault; onFail writes the
// fallback values a failed step leaves in the state.
type step struct {
	name     types.Step
	kind     Kind
	run      func(ctx context.Context, st *types.ResearchState) error
	onFail   func(st *types.ResearchState, err error)
	terminal bool
}

// New builds a Pipeline from d.
func New(d Deps) *Pipeline {
	p := &Pipeline{
		search:  d.Search,
		extract: d.Extract,
		llm:     d.LLM,
		filter:  d.Filter,
		now:     d.Now,
		log:     d.Log,
	}
	if p.filter == nil {
		p.filter = filter.Filter
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = logging.Nop()
	}

	p.steps = []step{
		{name: types.StepQueryIntake, kind: KindValidation, run: p.queryIntake},
		{name: types.StepWebSearch, kind: KindSearch, run: p.webSearch, onFail: func(st *types.ResearchState, _ error) {
			st.RawResults = []types.SearchResult{}
		}},
		// contentFilter recovers internally and never fails.
		{name: types.StepContentFilter, run: p.contentFilter},
		{name: types.StepContentExtraction, kind: KindExtraction, run: p.contentExtraction, onFail: func(st *types.ResearchState, _ error) {
			st.ExtractedContent = []types.ExtractedPage{}
		}},
		{name: types.StepSynthesizer, kind: KindSynthesis, run: p.synthesize, onFail: func(st *types.ResearchState, _ error) {
			st.SynthesizedText = synthesisPlaceholder
		}},
		{name: types.StepCitationHandler, kind: KindCitation, run: p.citations, onFail: func(st *types.ResearchState, _ error) {
			st.Citations = []types.Citation{}
		}},
		{name: types.StepReportGenerator, kind: KindReport, run: p.generateReport, onFail: p.reportFailed, terminal: true},
	}
	return p
}

// Run executes the pipeline over st and returns it. A nil observer is
// allowed.
func (p *Pipeline) Run(ctx context.Context, st *types.ResearchState, observe Observer) *types.ResearchState {
	log := p.log.With(logging.String("job_id", st.JobID))

	for _, s := range p.steps {
		st.CurrentStep = s.name
		if observe != nil {
			observe(st.JobID, s.name)
		}
		log.Info("pipeline step", logging.String("step", string(s.name)))

		start := time.Now()
		err := p.runStep(ctx, s, st)
		recordStep(s.name, time.Since(start), err)
		if err == nil {
			continue
		}

		fault := asFault(err, s)
		st.ErrorMessage = fault.Error()
		if s.onFail != nil {
			s.onFail(st, fault.Err)
		}
		log.Error("pipeline step failed",
			logging.String("step", string(s.name)),
			logging.String("kind", string(fault.Kind)),
			logging.Err(fault.Err))

		if s.terminal {
			return st
		}
		if observe != nil {
			observe(st.JobID, types.StepErrorHandler)
		}
		p.handleError(st)
		return st
	}
	return st
}

// runStep runs s, converting a panic into a fault of the step's kind.
func (p *Pipeline) runStep(ctx context.Context, s step, st *types.ResearchState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Fault{Kind: s.kind, Step: s.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.run(ctx, st)
}

func asFault(err error, s step) *Fault {
	if f, ok := err.(*Fault); ok {
		if f.Step == "" {
			f.Step = s.name
		}
		return f
	}
	return &Fault{Kind: s.kind, Step: s.name, Err: err}
}

// handleError writes the error report. It leaves CurrentStep on the step
// that failed so the report and the job status name it.
func (p *Pipeline) handleError(st *types.ResearchState) {
	start := time.Now()
	st.ReportMarkdown = errorReport(st)
	st.Progress(fmt.Sprintf("Research failed at %s: %s", st.CurrentStep, st.ErrorMessage))
	completed := p.now()
	st.CompletedAt = &completed
	recordStep(types.StepErrorHandler, time.Since(start), nil)
}
