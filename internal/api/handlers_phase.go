// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/logging"
	"github.com/tomtom215/roomie/internal/models"
	"github.com/tomtom215/roomie/internal/phase"
)

// EvaluationAccepted is the body of an asynchronous evaluate response.
type EvaluationAccepted struct {
	RequestID string    `json:"request_id"`
	Topic     string    `json:"topic"`
	Queued    time.Time `json:"queued_at"`
}

// PhaseStatus handles GET /api/v1/phase.
func (h *Handler) PhaseStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	st, err := h.phases.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Phase state unavailable", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, models.NewPhaseStatus(st, h.controller.Policy(), h.controller.Running()), start)
}

// PhaseEvaluate handles POST /api/v1/phase/evaluate.
//
// By default the controller runs inline and the decision is returned. With
// ?async=true and an event bus configured, an evaluation request is
// published instead and 202 is returned.
func (h *Handler) PhaseEvaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if getBoolParam(r, "async", false) {
		h.requestEvaluation(w, r, start)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.EvaluateTimeout)
	defer cancel()

	decision, err := h.controller.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, phase.ErrRunInProgress):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "A phase evaluation is already running", nil)
		return
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Phase evaluation failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("outcome", string(decision.Outcome)).
		Str("from", decision.From.String()).
		Str("to", decision.To.String()).
		Msg("phase evaluation completed")

	respondSuccess(w, r, http.StatusOK, decision, start)
}

func (h *Handler) requestEvaluation(w http.ResponseWriter, r *http.Request, start time.Time) {
	if h.events == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Event bus is not enabled", nil)
		return
	}
	if h.controller.Running() {
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "A phase evaluation is already running", nil)
		return
	}

	req, err := events.RequestEvaluation(r.Context(), h.events, "api", logging.RequestIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Failed to queue phase evaluation", err)
		return
	}

	respondSuccess(w, r, http.StatusAccepted, EvaluationAccepted{
		RequestID: req.ID,
		Topic:     events.TopicPhaseEvaluate,
		Queued:    req.RequestedAt,
	}, start)
}
