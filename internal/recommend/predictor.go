// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/roomie/internal/metrics"
)

// Prediction failure reasons reported to metrics.
const (
	failureUnknownEntity = "unknown_entity"
	failureBreakerOpen   = "breaker_open"
	failureError         = "error"
)

// GuardedPredictor runs learned-model calls through a circuit breaker with
// a per-call timeout. A slow or failing model degrades individual
// predictions instead of the whole request.
//
// The breaker uses real time for its interval and timeout; tests exercise
// it by driving failures rather than mocking the clock.
type GuardedPredictor struct {
	cb      *gobreaker.CircuitBreaker[float64]
	name    string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGuardedPredictor creates a guarded predictor. Unknown users or listings
// (ErrUnknownEntity) count as breaker successes: they are expected for
// members who joined after the model was trained.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGuardedPredictor(name string, cfg BreakerConfig, timeout time.Duration, logger zerolog.Logger) *GuardedPredictor {
	logger = logger.With().Str("component", "predictor").Str("breaker", name).Logger()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= cfg.FailureThreshold
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening learned-model circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnknownEntity)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &GuardedPredictor{cb: cb, name: name, timeout: timeout, logger: logger}
}

// State returns the breaker state.
func (g *GuardedPredictor) State() gobreaker.State {
	return g.cb.State()
}

// PredictAll predicts every listing for userID. It never fails as a whole:
// each Prediction carries its own error.
func (g *GuardedPredictor) PredictAll(ctx context.Context, p Predictor, userID int64, listingIDs []int64) []Prediction {
	out := make([]Prediction, 0, len(listingIDs))
	for _, id := range listingIDs {
		out = append(out, g.predict(ctx, p, userID, id))
	}
	return out
}

func (g *GuardedPredictor) predict(ctx context.Context, p Predictor, userID, listingID int64) Prediction {
	rating, err := g.cb.Execute(func() (float64, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return p.Predict(callCtx, userID, listingID)
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
		metrics.RecordPredictionFailure(failureBreakerOpen)
	case errors.Is(err, ErrUnknownEntity):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
		metrics.RecordPredictionFailure(failureUnknownEntity)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		metrics.RecordPredictionFailure(failureError)
		g.logger.Debug().Err(err).Int64("user_id", userID).Int64("listing_id", listingID).Msg("prediction failed")
	}
	return Prediction{ListingID: listingID, Rating: rating, Err: err}
}

// FoldPredictions maps predictions to ratings, substituting def for failures.
func FoldPredictions(preds []Prediction, def float64) map[int64]float64 {
	out := make(map[int64]float64, len(preds))
	for _, p := range preds {
		out[p.ListingID] = p.RatingOr(def)
	}
	return out
}

// stateToFloat converts circuit breaker state to float for Prometheus gauge.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
