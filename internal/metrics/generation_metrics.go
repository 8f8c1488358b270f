package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// GenerationMetrics is the instrumentation surface of the generation pipeline
type GenerationMetrics interface {
	IncGenerationCompleted(tool string)
	IncGenerationFailed(tool string, reason string)
	IncQuotaDenied(tool string)
	IncUsageRecorded()
	ObserveGenerationDuration(tool string, seconds float64)
	ObservePollAttempts(attempts float64)
}

type generationMetrics struct {
	log                 *logger.Logger
	generationsTotal    *prometheus.CounterVec
	quotaDenials        *prometheus.CounterVec
	usageIncrements     prometheus.Counter
	generationDurations *prometheus.HistogramVec
	pollAttempts        prometheus.Histogram
}

// NewGenerationMetrics registers and returns the generation metrics
func NewGenerationMetrics(registry *prometheus.Registry, log *logger.Logger) GenerationMetrics {
	generationsTotal := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "The total number of generation jobs by tool and outcome",
		},
		[]string{"tool", "status", "reason"},
	)

	quotaDenials := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_quota_denials_total",
			Help: "The total number of generation jobs denied by the free-tier quota",
		},
		[]string{"tool"},
	)

	usageIncrements := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "usage_increments_total",
			Help: "The total number of free-tier usage increments",
		},
	)

	generationDurations := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Generation job durations",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~4m
		},
		[]string{"tool"},
	)

	pollAttempts := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "music_poll_attempts",
			Help:    "Status checks performed per music composition task",
			Buckets: prometheus.LinearBuckets(1, 5, 12), // 1 .. 56
		},
	)

	return &generationMetrics{
		log:                 log,
		generationsTotal:    generationsTotal,
		quotaDenials:        quotaDenials,
		usageIncrements:     usageIncrements,
		generationDurations: generationDurations,
		pollAttempts:        pollAttempts,
	}
}

// IncGenerationCompleted counts a successful generation job
func (m *generationMetrics) IncGenerationCompleted(tool string) {
	m.generationsTotal.WithLabelValues(tool, "completed", "").Inc()
}

// IncGenerationFailed counts a failed generation job
func (m *generationMetrics) IncGenerationFailed(tool string, reason string) {
	m.generationsTotal.WithLabelValues(tool, "failed", reason).Inc()
}

// IncQuotaDenied counts a quota denial
func (m *generationMetrics) IncQuotaDenied(tool string) {
	m.quotaDenials.WithLabelValues(tool).Inc()
}

// IncUsageRecorded counts a usage increment
func (m *generationMetrics) IncUsageRecorded() {
	m.usageIncrements.Inc()
}

// ObserveGenerationDuration records how long a job took
func (m *generationMetrics) ObserveGenerationDuration(tool string, seconds float64) {
	m.generationDurations.WithLabelValues(tool).Observe(seconds)
}

// ObservePollAttempts records the poll count of one music task
func (m *generationMetrics) ObservePollAttempts(attempts float64) {
	m.pollAttempts.Observe(attempts)
}
