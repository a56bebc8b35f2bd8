// Package metrics exposes Prometheus collectors for talent scoring and search indexing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "talent_center"

// Scoring outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics groups every collector the service records to.
type Metrics struct {
	scoreRuns      *prometheus.CounterVec
	scoreFallbacks *prometheus.CounterVec
	scoreDuration  *prometheus.HistogramVec
	scoreValue     prometheus.Histogram
	indexJobs      *prometheus.CounterVec
}

// MustNew registers the collectors on reg and panics on duplicate registration.
// Tests should pass a fresh prometheus.NewRegistry().
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		scoreRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "talent_score_runs_total",
			Help:      "Talent score flow invocations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		scoreFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "talent_score_fallbacks_total",
			Help:      "Random fallback scores assigned, by the flow stage that failed.",
		}, []string{"stage"}),
		scoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "talent_score_duration_seconds",
			Help:      "Wall time of a talent score flow run.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider"}),
		scoreValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "talent_score_value",
			Help:      "Distribution of stored talent scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		indexJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "talent_index_jobs_total",
			Help:      "Search index jobs by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.scoreRuns, m.scoreFallbacks, m.scoreDuration, m.scoreValue, m.indexJobs)
	return m
}

// ObserveScoreRun records one flow run. Safe on a nil receiver.
func (m *Metrics) ObserveScoreRun(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.scoreRuns.WithLabelValues(provider, outcome).Inc()
	m.scoreDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) IncFallback(stage string) {
	if m == nil {
		return
	}
	m.scoreFallbacks.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveScore(score float64) {
	if m == nil {
		return
	}
	m.scoreValue.Observe(score)
}

func (m *Metrics) IncIndexJob(outcome string) {
	if m == nil {
		return
	}
	m.indexJobs.WithLabelValues(outcome).Inc()
}
