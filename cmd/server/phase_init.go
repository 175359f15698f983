// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package main

import (
	"fmt"

	"github.com/tomtom215/roomie/internal/config"
	"github.com/tomtom215/roomie/internal/database"
	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/logging"
	"github.com/tomtom215/roomie/internal/phase"
	"github.com/tomtom215/roomie/internal/recommend"
	"github.com/tomtom215/roomie/internal/recommend/evaluation"
)

// openPhaseStore opens the configured phase document store.
func openPhaseStore(cfg *config.PhaseConfig) (phase.Store, error) {
	logger := logging.WithComponent("phase-store")

	switch cfg.Store {
	case config.PhaseStoreBadger:
		store, err := phase.OpenBadgerStore(cfg.BadgerPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger phase store at %s: %w", cfg.BadgerPath, err)
		}
		logging.Info().Str("path", cfg.BadgerPath).Msg("Phase state stored in BadgerDB")
		return store, nil
	case config.PhaseStoreFile:
		store, err := phase.NewFileStore(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open phase file %s: %w", cfg.Path, err)
		}
		logging.Info().Str("path", cfg.Path).Msg("Phase state stored in JSON file")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown phase store %q", cfg.Store)
	}
}

// initPhaseController wires the evaluation harness, the configured policy
// and the controller. bus may be nil, in which case decisions are not
// published.
func initPhaseController(cfg *config.Config, db *database.DB, store phase.Store, engine *recommend.Engine, bus *events.Bus) (*phase.Controller, error) {
	harness, err := evaluation.NewHarness(cfg.Phase.ToEvaluation(), db, engine, logging.WithComponent("evaluation"))
	if err != nil {
		return nil, fmt.Errorf("create evaluation harness: %w", err)
	}

	policy, err := phase.NewPolicy(cfg.Phase.Policy, harness, logging.WithComponent("phase-policy"))
	if err != nil {
		return nil, err
	}

	controllerCfg := phase.ControllerConfig{
		Store:   store,
		Counter: db,
		Policy:  policy,
	}
	if bus != nil {
		controllerCfg.Publisher = events.NewDecisionPublisher(bus)
	}

	controller, err := phase.NewController(controllerCfg, logging.WithComponent("phase"))
	if err != nil {
		return nil, err
	}
	logging.Info().Str("policy", controller.Policy()).Msg("Phase controller initialized")
	return controller, nil
}
