// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

/*
Package metrics exposes Prometheus collectors for the review job.

Collectors are registered on the default registry through promauto and served
by the ops HTTP server at /metrics:

	curl http://localhost:9464/metrics | grep yearly_review_
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yearly_review_db_query_duration_seconds",
			Help:    "Duration of activity store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_db_query_errors_total",
			Help: "Total number of failed activity store queries",
		},
		[]string{"query"},
	)

	// Run Metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_runs_total",
			Help: "Total number of review runs by outcome",
		},
		[]string{"outcome"}, // published, skipped, conflict, empty, failed
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yearly_review_run_duration_seconds",
			Help:    "Duration of review runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	SectionsAssembled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_sections_total",
			Help: "Total number of non-empty report sections assembled",
		},
		[]string{"kind"}, // leaderboard, visits, featured, badge
	)

	// Publication Metrics
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_publish_total",
			Help: "Total number of publish attempts by publisher and result",
		},
		[]string{"publisher", "result"}, // success, conflict, error
	)

	LastPublishedYear = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yearly_review_last_published_year",
			Help: "The most recent year a review was published for",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yearly_review_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Scheduler Metrics
	SchedulerTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yearly_review_scheduler_ticks_total",
			Help: "Total number of scheduler ticks",
		},
		[]string{"result"}, // ran, overlapped
	)
)

// RecordDBQuery records a gateway query duration and its failure, if any.
func RecordDBQuery(query string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordRun records the outcome and duration of one review run.
func RecordRun(outcome string, duration time.Duration) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSection counts an assembled section of the given kind.
func RecordSection(kind string) {
	SectionsAssembled.WithLabelValues(kind).Inc()
}

// RecordPublish records one publish attempt.
func RecordPublish(publisher, result string) {
	PublishTotal.WithLabelValues(publisher, result).Inc()
}

// SetLastPublishedYear updates the last published year gauge.
func SetLastPublishedYear(year int) {
	LastPublishedYear.Set(float64(year))
}

// RecordCircuitBreakerTransition updates breaker gauges after a state change.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordSchedulerTick counts a scheduler tick by result.
func RecordSchedulerTick(result string) {
	SchedulerTicks.WithLabelValues(result).Inc()
}
