// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/metrics"
	"github.com/tomtom215/roomie/internal/phase"
)

// EvaluationTriggerConfig holds configuration for the evaluation trigger.
type EvaluationTriggerConfig struct {
	// MinInterval is the minimum spacing between triggered runs. Requests
	// arriving sooner are acknowledged and dropped. Zero disables coalescing.
	MinInterval time.Duration

	// RunTimeout bounds a single run. Default: 10m
	RunTimeout time.Duration
}

// EvaluationTriggerService runs the phase controller for every evaluation
// request published on events.TopicPhaseEvaluate.
type EvaluationTriggerService struct {
	sub     events.Subscriber
	runner  PhaseRunner
	limiter *rate.Limiter
	config  EvaluationTriggerConfig
	logger  zerolog.Logger
	name    string
}

// NewEvaluationTriggerService creates a trigger consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluationTriggerService(sub events.Subscriber, runner PhaseRunner, cfg EvaluationTriggerConfig, logger zerolog.Logger) *EvaluationTriggerService {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &EvaluationTriggerService{
		sub:     sub,
		runner:  runner,
		limiter: rate.NewLimiter(limit, 1),
		config:  cfg,
		logger:  logger.With().Str("service", "evaluation-trigger").Logger(),
		name:    "evaluation-trigger",
	}
}

// Serve implements suture.Service. It returns when ctx is canceled or the
// subscription fails, in which case suture restarts it.
func (s *EvaluationTriggerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("topic", events.TopicPhaseEvaluate).
		Dur("min_interval", s.config.MinInterval).
		Msg("evaluation trigger starting")

	handler := events.NewMessageHandler(s.sub, events.TopicPhaseEvaluate, s.logger).
		HandleEvaluationRequests(s.handle)
	return handler.Run(ctx)
}

// handle never returns an error: a failed run leaves the phase state
// untouched and redelivery would only repeat it.
func (s *EvaluationTriggerService) handle(ctx context.Context, req events.EvaluationRequest) error {
	log := s.logger.With().
		Str("request_id", req.ID).
		Str("reason", req.Reason).
		Str("requested_by", req.RequestedBy).
		Logger()

	if !s.limiter.Allow() {
		metrics.RecordServiceRun(s.name, resultCoalesced)
		log.Info().Msg("evaluation request coalesced with a recent run")
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	d, err := s.runner.Run(runCtx)
	switch {
	case errors.Is(err, phase.ErrRunInProgress):
		metrics.RecordServiceRun(s.name, resultCoalesced)
		log.Info().Msg("evaluation request coalesced with the running evaluation")
	case err != nil:
		metrics.RecordServiceRun(s.name, resultFailure)
		log.Warn().Err(err).Msg("triggered phase run failed")
	default:
		metrics.RecordServiceRun(s.name, resultSuccess)
		log.Info().
			Str("decision_id", d.ID).
			Str("outcome", string(d.Outcome)).
			Str("phase", d.To.String()).
			Msg("triggered phase run complete")
	}
	return nil
}

// String returns the service name for logging.
func (s *EvaluationTriggerService) String() string {
	return s.name
}
