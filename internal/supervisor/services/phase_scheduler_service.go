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

	"github.com/tomtom215/roomie/internal/metrics"
	"github.com/tomtom215/roomie/internal/phase"
)

// Service run results recorded in metrics.
const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultCoalesced = "coalesced"
)

// PhaseRunner runs one phase controller pass. Implemented by *phase.Controller.
type PhaseRunner interface {
	Run(ctx context.Context) (phase.Decision, error)
}

// PhaseSchedulerConfig holds configuration for the phase scheduler.
type PhaseSchedulerConfig struct {
	// Interval between controller runs. Default: 24h
	Interval time.Duration

	// RunOnStartup triggers a run when the service starts.
	RunOnStartup bool

	// RunTimeout bounds a single run. Default: 10m
	RunTimeout time.Duration
}

// PhaseSchedulerService runs the phase controller on a fixed interval.
type PhaseSchedulerService struct {
	runner PhaseRunner
	config PhaseSchedulerConfig
	logger zerolog.Logger
	name   string
}

// NewPhaseSchedulerService creates a new phase scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPhaseSchedulerService(runner PhaseRunner, cfg PhaseSchedulerConfig, logger zerolog.Logger) *PhaseSchedulerService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	return &PhaseSchedulerService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "phase-scheduler").Logger(),
		name:   "phase-scheduler",
	}
}

// Serve implements the suture.Service interface. A failed run is logged and
// retried at the next tick; it never stops the service.
func (s *PhaseSchedulerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("phase scheduler starting")

	if s.config.RunOnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("phase scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.run(ctx, "schedule")
		}
	}
}

func (s *PhaseSchedulerService) run(ctx context.Context, trigger string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	d, err := s.runner.Run(runCtx)
	switch {
	case errors.Is(err, phase.ErrRunInProgress):
		metrics.RecordServiceRun(s.name, resultCoalesced)
		s.logger.Debug().Str("trigger", trigger).Msg("phase run already in progress, skipping")
	case err != nil:
		metrics.RecordServiceRun(s.name, resultFailure)
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("scheduled phase run failed")
	default:
		metrics.RecordServiceRun(s.name, resultSuccess)
		s.logger.Info().
			Str("trigger", trigger).
			Str("outcome", string(d.Outcome)).
			Str("phase", d.To.String()).
			Dur("duration", time.Since(start)).
			Msg("scheduled phase run complete")
	}
}

// String returns the service name for logging.
func (s *PhaseSchedulerService) String() string {
	return s.name
}
