// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Serving path labels for RecommendRequests.
const (
	PathRule     = "rule"
	PathBlended  = "blended"
	PathFallback = "fallback"
	PathEmpty    = "empty"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by phase and serving path",
		},
		[]string{"phase", "path"}, // path: "rule", "blended", "fallback", "empty"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "End-to-end recommendation engine latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"phase"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Number of eligible candidate listings per request after filtering",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_prediction_failures_total",
			Help: "Learned-model predictions replaced by the default rating",
		},
		[]string{"reason"}, // reason: "unknown_entity", "breaker_open", "error"
	)

	ModelReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_model_reloads_total",
			Help: "Learned-model artifact reload attempts",
		},
		[]string{"result"}, // result: "success", "failure"
	)

	// Phase Metrics
	PhaseCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phase_current",
			Help: "Current operating phase (1=P1, 2=P2, 3=P3)",
		},
	)

	PhaseInteractionCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phase_interaction_count",
			Help: "Interaction count persisted by the last controller run",
		},
	)

	PhaseDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phase_decisions_total",
			Help: "Phase controller outcomes by policy",
		},
		[]string{"policy", "outcome"}, // outcome: "promote", "hold", "inconclusive", "error"
	)

	PhaseEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phase_evaluation_duration_seconds",
			Help:    "Offline evaluation runtime per phase in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"phase"},
	)

	PhaseEvaluationSkippedUsers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phase_evaluation_skipped_users_total",
			Help: "Users skipped during evaluation because their recommendation failed",
		},
	)

	PhaseLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phase_last_run_timestamp",
			Help: "Unix timestamp of the last completed controller run",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed",
		},
		[]string{"topic"},
	)

	// Supervisor Metrics
	SupervisorServiceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_service_runs_total",
			Help: "Background service iterations by service and result",
		},
		[]string{"service", "result"}, // result: "success", "failure", "coalesced"
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordRecommendation records one engine invocation.
func RecordRecommendation(phase, path string, candidates int, duration time.Duration) {
	RecommendRequests.WithLabelValues(phase, path).Inc()
	RecommendDuration.WithLabelValues(phase).Observe(duration.Seconds())
	RecommendCandidates.Observe(float64(candidates))
}

// RecordPredictionFailure counts a prediction that fell back to the default rating.
func RecordPredictionFailure(reason string) {
	PredictionFailures.WithLabelValues(reason).Inc()
}

// RecordModelReload records a model artifact reload attempt.
func RecordModelReload(err error) {
	if err != nil {
		ModelReloads.WithLabelValues("failure").Inc()
		return
	}
	ModelReloads.WithLabelValues("success").Inc()
}

// RecordPhaseDecision records a controller outcome and the state it persisted.
// A zero phase leaves the phase gauge untouched (run-level errors).
func RecordPhaseDecision(policy, outcome string, current int, interactionCount int64) {
	PhaseDecisions.WithLabelValues(policy, outcome).Inc()
	if current > 0 {
		PhaseCurrent.Set(float64(current))
		PhaseInteractionCount.Set(float64(interactionCount))
		PhaseLastRun.Set(float64(time.Now().Unix()))
	}
}

// RecordPhaseEvaluation records harness runtime and skipped users for one phase.
func RecordPhaseEvaluation(phase string, duration time.Duration, skipped int) {
	PhaseEvaluationDuration.WithLabelValues(phase).Observe(duration.Seconds())
	if skipped > 0 {
		PhaseEvaluationSkippedUsers.Add(float64(skipped))
	}
}

// RecordEventPublish records an event publish attempt.
func RecordEventPublish(topic string, err error) {
	if err != nil {
		EventsPublished.WithLabelValues(topic, "failure").Inc()
		return
	}
	EventsPublished.WithLabelValues(topic, "success").Inc()
}

// RecordEventConsume records a consumed event.
func RecordEventConsume(topic string) {
	EventsConsumed.WithLabelValues(topic).Inc()
}

// RecordServiceRun records one iteration of a supervised background service.
func RecordServiceRun(service, result string) {
	SupervisorServiceRuns.WithLabelValues(service, result).Inc()
}
