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

	"github.com/tomtom215/roomie/internal/logging"
	"github.com/tomtom215/roomie/internal/models"
	"github.com/tomtom215/roomie/internal/phase"
	"github.com/tomtom215/roomie/internal/recommend"
)

// Recommend handles POST /api/v1/recommendations/recommend.
//
// The body is a models.RecommendRequest. A member that does not exist gets
// an empty list rather than an error.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RecommendTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:              req.UserID,
		Limit:               req.LimitOr(0),
		IncludeExplanations: req.ExplanationsEnabled(),
		RequestID:           logging.RequestIDFromContext(r.Context()),
	})
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrRequesterNotFound):
		logging.Ctx(r.Context()).Info().Int64("user_id", req.UserID).Msg("recommendation requested for unknown member")
		resp = h.emptyResponse(ctx, req.UserID)
	case errors.Is(err, recommend.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to generate recommendations", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, resp, start)
}

// emptyResponse is returned for members that do not exist. The phase is the
// persisted current phase, or P1 when the store cannot be read.
func (h *Handler) emptyResponse(ctx context.Context, userID int64) *recommend.Response {
	current := phase.P1
	if h.phases != nil {
		if st, err := h.phases.Load(ctx); err == nil {
			current = st.Phase.Current
		}
	}
	return &recommend.Response{
		UserID:          userID,
		Recommendations: []recommend.ScoredListing{},
		Phase:           current,
		GeneratedAt:     time.Now().UTC(),
	}
}
