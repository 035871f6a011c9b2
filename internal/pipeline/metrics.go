// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/research-agent/pkg/types"
)

var (
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_agent_steps_total",
			Help: "Pipeline steps executed, by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_agent_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"step"},
	)
)

func recordStep(step types.Step, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StepsTotal.WithLabelValues(string(step), outcome).Inc()
	StepDuration.WithLabelValues(string(step)).Observe(d.Seconds())
}
