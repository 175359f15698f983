// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package metrics provides Prometheus collectors for the recommendation service.

Collectors are package-level promauto variables so any package can record
without plumbing a registry through constructors. Helper functions wrap the
common label combinations.

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation path:
  - recommend_requests_total{phase,path}: requests by phase and serving path
    (rule, blended, fallback, empty)
  - recommend_request_duration_seconds{phase}: end-to-end engine latency
  - recommend_candidates: eligible candidates per request after filtering
  - recommend_prediction_failures_total{reason}: learned-model predictions
    replaced by the neutral default rating

Phase governance:
  - phase_current: current phase as a number (1, 2, 3)
  - phase_interaction_count: interaction count persisted by the last run
  - phase_decisions_total{policy,outcome}: controller outcomes
  - phase_evaluation_duration_seconds{phase}: harness runtime per phase
  - phase_evaluation_skipped_users_total: users skipped after a failed recommendation

Resilience and transport:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_state_transitions_total{name,from_state,to_state}
  - api_requests_total{method,endpoint,status}, api_request_duration_seconds{method,endpoint}
  - events_published_total{topic,result}
*/
package metrics
