// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/phase"
	"github.com/tomtom215/roomie/internal/recommend"
)

// Recommender produces ranked listings. Implemented by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// PhaseRunner runs the phase controller. Implemented by *phase.Controller.
type PhaseRunner interface {
	Run(ctx context.Context) (phase.Decision, error)
	Running() bool
	Policy() string
}

// PhaseReader reads the persisted phase document.
type PhaseReader interface {
	Load(ctx context.Context) (*phase.State, error)
}

// HealthChecker reports database connectivity. Implemented by *database.DB.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HandlerDeps holds the collaborators of a Handler. Models and Events are
// optional.
type HandlerDeps struct {
	Engine     Recommender
	Controller PhaseRunner
	Phases     PhaseReader
	DB         HealthChecker
	Models     recommend.ModelSource
	Events     events.Publisher
}

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	Version          string
	RecommendTimeout time.Duration
	EvaluateTimeout  time.Duration
	EventsTransport  string
}

// Handler serves every API endpoint.
type Handler struct {
	engine     Recommender
	controller PhaseRunner
	phases     PhaseReader
	db         HealthChecker
	models     recommend.ModelSource
	events     events.Publisher

	config    HandlerConfig
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a Handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(deps HandlerDeps, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.RecommendTimeout <= 0 {
		cfg.RecommendTimeout = 10 * time.Second
	}
	if cfg.EvaluateTimeout <= 0 {
		cfg.EvaluateTimeout = 10 * time.Minute
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:     deps.Engine,
		controller: deps.Controller,
		phases:     deps.Phases,
		db:         deps.DB,
		models:     deps.Models,
		events:     deps.Events,
		config:     cfg,
		startTime:  time.Now(),
		logger:     logger.With().Str("component", "api").Logger(),
	}
}
