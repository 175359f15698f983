// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package api provides the HTTP surface of Roomie.

Routing uses the Chi router with production middleware from the Chi
ecosystem (go-chi/cors, go-chi/httprate). Every response is wrapped in a
models.APIResponse envelope so clients can rely on a single shape for
success and failure.

# Endpoints

Recommendations:
  - POST /api/v1/recommendations/recommend: ranked listings for a member

Phase:
  - GET  /api/v1/phase: current phase, blend weights and evaluation history
  - POST /api/v1/phase/evaluate: run the phase controller once
    (409 while a run is in progress, 202 with ?async=true when events are on)

Health and metrics:
  - GET /health, /health/live, /health/ready
  - GET /metrics (Prometheus exposition format)

# Middleware Stack

Applied globally in order: request id, real IP, panic recovery, CORS and
compression. API routes add IP rate limiting, security headers and
Prometheus request metrics. Phase evaluation has a stricter write limit.

# Error Handling

Handlers map domain errors to status codes:

	ErrRequesterNotFound   -> 200 with an empty recommendation list
	ErrInvalidRequest      -> 400 VALIDATION_ERROR
	phase.ErrRunInProgress -> 409 CONFLICT
	database ping failure  -> 503 SERVICE_UNAVAILABLE (readiness only)

Request bodies are validated with go-playground/validator through the
validation package before any domain call is made.
*/
package api
