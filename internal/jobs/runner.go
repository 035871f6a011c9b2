// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/research-agent/internal/export"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/internal/notify"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	defaultMaxConcurrent = 4
	defaultMaxResults    = 10
)

var JobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_agent_jobs_total",
		Help: "Research jobs finished, by final status",
	},
	[]string{"status"},
)

// PipelineRunner executes one research run.
type PipelineRunner interface {
	Run(ctx context.Context, st *types.ResearchState, observe pipeline.Observer) *types.ResearchState
}

// Exporter is the document-export collaborator.
type Exporter interface {
	Configured() bool
	CreateDocument(ctx context.Context, title, markdown string) (*export.Document, error)
}

// Notifier is the webhook collaborator.
type Notifier interface {
	Configured() bool
	Notify(ctx context.Context, p notify.Payload) (map[string]any, error)
}

// RunnerDeps are the collaborators a Runner is built from. Exporter and
// Notifier may be nil.
type RunnerDeps struct {
	Store         Store
	Pipeline      PipelineRunner
	Exporter      Exporter
	Notifier      Notifier
	MaxConcurrent int
	Now           func() time.Time
	Log           logging.Logger
}

// Runner executes submitted jobs in the background, at most MaxConcurrent
// pipelines at a time.
type Runner struct {
	store    Store
	pipe     PipelineRunner
	exporter Exporter
	notifier Notifier
	now      func() time.Time
	log      logging.Logger

	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunner builds a Runner. Close stops it.
func NewRunner(d RunnerDeps) *Runner {
	n := d.MaxConcurrent
	if n <= 0 {
		n = defaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		store:    d.Store,
		pipe:     d.Pipeline,
		exporter: d.Exporter,
		notifier: d.Notifier,
		now:      d.Now,
		log:      d.Log,
		sem:      semaphore.NewWeighted(int64(n)),
		ctx:      ctx,
		cancel:   cancel,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log == nil {
		r.log = logging.Nop()
	}
	return r
}

// Submit records a pending job and starts its pipeline asynchronously.
// The returned job is the pending record. Requests are expected to be
// validated by the caller; a zero MaxResults becomes the default.
func (r *Runner) Submit(ctx context.Context, req types.ResearchRequest) (*types.Job, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}
	job := &types.Job{
		ID:               uuid.NewString(),
		Status:           types.JobPending,
		Query:            strings.TrimSpace(req.Query),
		UserID:           req.UserID,
		MaxResults:       req.MaxResults,
		IncludeCitations: req.IncludeCitations,
		Progress:         types.StepInitialized,
		CreatedAt:        r.now().UTC(),
	}
	if err := r.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	r.log.Info("job submitted", logging.String("job_id", job.ID))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(job)
	}()
	return job, nil
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels jobs still waiting for a slot and waits for running ones,
// which finish with their integrations.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) execute(job *types.Job) {
	log := r.log.With(logging.String("job_id", job.ID))

	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		r.finish(job.ID, func(j *types.Job) {
			j.Status = types.JobFailed
			j.ErrorMessage = "job cancelled before start"
		})
		return
	}
	defer r.sem.Release(1)

	// A job that holds a slot runs to completion even if Close is called.
	ctx := context.WithoutCancel(r.ctx)

	if _, err := r.store.Update(ctx, job.ID, func(j *types.Job) error {
		j.Status = types.JobProcessing
		return nil
	}); err != nil {
		log.Error("marking job processing", logging.Err(err))
	}

	st := types.NewResearchState(job.Query, job.ID, job.UserID, job.MaxResults, job.IncludeCitations, r.now())
	st = r.pipe.Run(ctx, st, func(jobID string, step types.Step) {
		r.observe(ctx, jobID, step)
	})

	completed := r.finish(job.ID, func(j *types.Job) {
		j.Progress = st.CurrentStep
		j.Title = st.ReportTitle
		j.Summary = st.ExecutiveSummary
		j.Citations = st.Citations
		j.ReportMarkdown = st.ReportMarkdown
		if st.Failed() {
			j.Status = types.JobFailed
			j.ErrorMessage = st.ErrorMessage
		} else {
			j.Status = types.JobCompleted
		}
	})
	if completed == nil || completed.Status != types.JobCompleted {
		return
	}

	r.integrate(ctx, log, completed)
}

// finish applies the terminal mutation and stamps CompletedAt.
func (r *Runner) finish(id string, mutate func(*types.Job)) *types.Job {
	// The runner context may already be cancelled; the final write must land.
	ctx := context.WithoutCancel(r.ctx)
	job, err := r.store.Update(ctx, id, func(j *types.Job) error {
		mutate(j)
		now := r.now().UTC()
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		r.log.Error("recording job result", logging.String("job_id", id), logging.Err(err))
		return nil
	}
	JobsTotal.WithLabelValues(string(job.Status)).Inc()
	r.log.Info("job finished", logging.String("job_id", id), logging.String("status", string(job.Status)))
	return job
}

// integrate exports the report and, when that succeeds, notifies the
// webhook. Failures are logged and never change the job status.
func (r *Runner) integrate(ctx context.Context, log logging.Logger, job *types.Job) {
	if r.exporter == nil || !r.exporter.Configured() {
		return
	}
	doc, err := r.exporter.CreateDocument(ctx, job.Title, job.ReportMarkdown)
	if err != nil {
		log.Warn("document export failed", logging.Err(err))
		return
	}
	job, err = r.store.Update(ctx, job.ID, func(j *types.Job) error {
		j.DocumentURL = doc.URL
		return nil
	})
	if err != nil {
		log.Error("recording document url", logging.Err(err))
		return
	}

	if r.notifier == nil || !r.notifier.Configured() {
		return
	}
	resp, err := r.notifier.Notify(ctx, notify.Payload{
		JobID:          job.ID,
		DocumentURL:    job.DocumentURL,
		ReportTitle:    job.Title,
		Query:          job.Query,
		CreatedAt:      job.CreatedAt,
		UserID:         job.UserID,
		CitationsCount: len(job.Citations),
		Summary:        job.Summary,
	})
	if err != nil {
		log.Warn("webhook notification failed", logging.Err(err))
		return
	}
	if _, err := r.store.Update(ctx, job.ID, func(j *types.Job) error {
		j.WebhookResponse = resp
		return nil
	}); err != nil {
		log.Error("recording webhook response", logging.Err(err))
	}
}

func (r *Runner) observe(ctx context.Context, jobID string, step types.Step) {
	if _, err := r.store.Update(ctx, jobID, func(j *types.Job) error {
		j.Progress = step
		return nil
	}); err != nil {
		r.log.Warn("recording job progress", logging.String("job_id", jobID), logging.Err(err))
	}
}
