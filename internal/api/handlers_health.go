// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/roomie/internal/models"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// Health handles GET /health.
//
// It always answers 200; Status is "degraded" when the database or the
// phase store cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:            "healthy",
		Version:           h.config.Version,
		DatabaseConnected: h.databaseConnected(ctx),
		EventsTransport:   h.config.EventsTransport,
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	if h.phases != nil {
		if st, err := h.phases.Load(ctx); err == nil {
			status.PhaseStoreHealthy = true
			status.CurrentPhase = st.Phase.Current.String()
		}
	}
	if h.models != nil {
		if _, version, ok := h.models.Current(); ok {
			status.ModelVersion = version
		}
	}

	if !status.DatabaseConnected || !status.PhaseStoreHealthy {
		status.Status = "degraded"
	}

	respondSuccess(w, r, http.StatusOK, status, start)
}

// HealthLive handles GET /health/live. A response means the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady handles GET /health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if !h.databaseConnected(ctx) {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Database not reachable", nil)
		return
	}
	if h.phases != nil {
		if _, err := h.phases.Load(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Phase state unavailable", err)
			return
		}
	}

	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "ready"}, start)
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	return h.db != nil && h.db.Ping(ctx) == nil
}
