// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package main

import (
	"fmt"

	"github.com/tomtom215/roomie/internal/config"
	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/logging"
)

// initEvents opens the event bus. It returns nil, nil when events are
// disabled.
func initEvents(cfg *config.Config) (*events.Bus, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event bus disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	bus, err := events.NewBus(cfg.Events.ToEvents(), logging.WithComponent("events"))
	if err != nil {
		return nil, fmt.Errorf("open %s event bus: %w", cfg.Events.Transport, err)
	}

	logging.Info().
		Str("transport", bus.Transport()).
		Bool("embedded_server", cfg.Events.EmbeddedServer.Enabled).
		Msg("Event bus initialized")
	return bus, nil
}
