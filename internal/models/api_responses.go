// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package models

import (
	"time"

	"github.com/tomtom215/roomie/internal/phase"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes used in APIError.Code.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": 7, "recommendations": [...], "total_count": 10},
//	  "metadata": {
//	    "timestamp": "2026-01-15T12:00:00Z",
//	    "query_time_ms": 12
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "limit must be between 1 and 100",
//	    "details": {"field": "limit"}
//	  },
//	  "metadata": {"timestamp": "2026-01-15T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Handler execution time in milliseconds
//   - RequestID: Correlation id, echoed from X-Request-ID when present
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - BAD_REQUEST: Malformed request body
//   - CONFLICT: An evaluation run is already in progress
//   - INTERNAL_ERROR: Unexpected failure
//   - SERVICE_UNAVAILABLE: A dependency (database, phase store) is down
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendRequest is the body of POST /api/v1/recommendations/recommend.
//
// Limit and IncludeExplanations are pointers so an omitted field can be told
// apart from an explicit zero value: limit defaults to 10 and explanations
// default to on.
type RecommendRequest struct {
	UserID              int64 `json:"user_id" validate:"required,gt=0"`
	Limit               *int  `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	IncludeExplanations *bool `json:"include_explanations,omitempty"`
}

// LimitOr returns the requested limit, or def when none was given.
func (r *RecommendRequest) LimitOr(def int) int {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

// ExplanationsEnabled reports whether explanations were requested.
func (r *RecommendRequest) ExplanationsEnabled() bool {
	return r.IncludeExplanations == nil || *r.IncludeExplanations
}

// PhaseStatus is the body of GET /api/v1/phase.
type PhaseStatus struct {
	Current          phase.Phase        `json:"current"`
	Next             *phase.Phase       `json:"next,omitempty"`
	InteractionCount int64              `json:"interaction_count"`
	AutoTransition   bool               `json:"auto_transition_enabled"`
	Policy           string             `json:"policy"`
	Running          bool               `json:"evaluation_running"`
	Weights          phase.BlendWeights `json:"weights"`
	NextThreshold    *int64             `json:"next_threshold,omitempty"`
	History          phase.History      `json:"evaluation_history"`
	LastUpdated      time.Time          `json:"last_updated"`
}

// NewPhaseStatus summarizes st for the API.
func NewPhaseStatus(st *phase.State, policy string, running bool) PhaseStatus {
	cur := st.Phase.Current
	status := PhaseStatus{
		Current:          cur,
		InteractionCount: st.Phase.InteractionCount,
		AutoTransition:   st.Phase.AutoTransitionEnabled,
		Policy:           policy,
		Running:          running,
		Weights:          st.Weights.For(cur),
		History:          st.Phase.EvaluationHistory,
		LastUpdated:      st.LastUpdated,
	}
	if next, ok := cur.Next(); ok {
		threshold := st.Phase.Thresholds.MinFor(next)
		status.Next = &next
		status.NextThreshold = &threshold
	}
	return status
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	PhaseStoreHealthy bool    `json:"phase_store_healthy"`
	CurrentPhase      string  `json:"current_phase,omitempty"`
	ModelVersion      string  `json:"model_version,omitempty"`
	EventsTransport   string  `json:"events_transport,omitempty"`
	Uptime            float64 `json:"uptime"`
}
