package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CoordinationMetrics records per-step and per-run coordination outcomes.
type CoordinationMetrics struct {
	stepDuration *prometheus.HistogramVec
	stepRetries  *prometheus.CounterVec
	stepFailures *prometheus.CounterVec
	runs         *prometheus.CounterVec
}

// NewCoordinationMetrics registers the coordination metrics on the provided registerer.
func NewCoordinationMetrics(reg prometheus.Registerer) *CoordinationMetrics {
	if reg == nil {
		return &CoordinationMetrics{}
	}
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coordination_step_duration_seconds",
		Help:    "Duration of coordination steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	stepRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordination_step_retries",
		Help: "Retried coordination step attempts.",
	}, []string{"step"})
	stepFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordination_step_failures",
		Help: "Coordination steps that exhausted their retries.",
	}, []string{"step"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coordination_runs",
		Help: "Completed coordination runs by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(stepDuration, stepRetries, stepFailures, runs)
	return &CoordinationMetrics{
		stepDuration: stepDuration,
		stepRetries:  stepRetries,
		stepFailures: stepFailures,
		runs:         runs,
	}
}

// ObserveStepDuration records the duration for the named step kind.
func (c *CoordinationMetrics) ObserveStepDuration(step string, duration time.Duration) {
	if c == nil || c.stepDuration == nil {
		return
	}
	c.stepDuration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

// IncStepRetry increments the retry counter for the named step kind.
func (c *CoordinationMetrics) IncStepRetry(step string) {
	if c == nil || c.stepRetries == nil {
		return
	}
	c.stepRetries.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncStepFailure increments the terminal-failure counter for the named step kind.
func (c *CoordinationMetrics) IncStepFailure(step string) {
	if c == nil || c.stepFailures == nil {
		return
	}
	c.stepFailures.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncRun increments the run counter for the given outcome.
func (c *CoordinationMetrics) IncRun(outcome string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
