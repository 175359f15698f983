// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/roomie/internal/api"
	"github.com/tomtom215/roomie/internal/config"
	"github.com/tomtom215/roomie/internal/database"
	"github.com/tomtom215/roomie/internal/logging"
	"github.com/tomtom215/roomie/internal/recommend"
	"github.com/tomtom215/roomie/internal/recommend/mf"
	"github.com/tomtom215/roomie/internal/supervisor"
	"github.com/tomtom215/roomie/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())
	logging.Info().Str("version", version).Msg("Starting Roomie with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("phase_policy", cfg.Phase.Policy).
		Str("phase_store", cfg.Phase.Store).
		Str("eligibility", cfg.Recommend.EligibilityPolicy).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database, logging.WithComponent("database"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := openPhaseStore(&cfg.Phase)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open phase store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing phase store")
		}
	}()

	models := mf.NewLoader(cfg.Recommend.ModelPath, logging.WithComponent("mf-loader"))

	engine, err := recommend.NewEngine(cfg.Recommend.ToEngineConfig(), recommend.EngineDeps{
		Data:   db,
		Phases: store,
		Models: models,
	}, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	bus, err := initEvents(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	if bus != nil {
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	controller, err := initPhaseController(cfg, db, store, engine, bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create phase controller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		treeConfig(&cfg.Supervisor),
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handlerDeps := api.HandlerDeps{
		Engine:     engine,
		Controller: controller,
		Phases:     store,
		DB:         db,
		Models:     models,
	}
	eventsTransport := ""
	if bus != nil {
		handlerDeps.Events = bus
		eventsTransport = bus.Transport()
	}
	handler := api.NewHandler(handlerDeps, api.HandlerConfig{
		Version:          version,
		RecommendTimeout: cfg.Server.Timeout,
		EvaluateTimeout:  cfg.Phase.RunTimeout,
		EventsTransport:  eventsTransport,
	}, logging.WithComponent("api"))

	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	))

	// Evaluation runs inline on POST /phase/evaluate, so the write
	// timeout has to cover a full run.
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      max(cfg.Server.Timeout, cfg.Phase.RunTimeout),
		IdleTimeout:       60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddEvaluationService(services.NewPhaseSchedulerService(controller, services.PhaseSchedulerConfig{
		Interval:     cfg.Phase.ScheduleInterval,
		RunOnStartup: cfg.Phase.RunOnStartup,
		RunTimeout:   cfg.Phase.RunTimeout,
	}, logging.WithComponent("supervisor")))
	logging.Info().Dur("interval", cfg.Phase.ScheduleInterval).Msg("Phase scheduler added to supervisor tree")

	if bus != nil {
		tree.AddMessagingService(services.NewEvaluationTriggerService(bus, controller, services.EvaluationTriggerConfig{
			MinInterval: cfg.Phase.TriggerMinInterval,
			RunTimeout:  cfg.Phase.RunTimeout,
		}, logging.WithComponent("supervisor")))
		logging.Info().Str("transport", bus.Transport()).Msg("Evaluation trigger added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// treeConfig converts the supervisor section of the configuration.
func treeConfig(cfg *config.SupervisorConfig) supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		ShutdownTimeout:  cfg.ShutdownTimeout,
	}
}
