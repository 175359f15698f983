// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package logging provides centralized zerolog-based structured logging for Roomie.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once at startup
//   - JSON output for production, console output for development
//   - Request and correlation ids carried through context.Context
//   - An slog.Handler bridge so Suture's sutureslog logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int64("user_id", 7).Msg("recommendation served")
//	logging.Ctx(ctx).Warn().Err(err).Msg("phase store unavailable")
//
// # Component Loggers
//
// Long-lived components receive a zerolog.Logger in their constructor and
// derive a child with a component field:
//
//	logger = logger.With().Str("component", "recommend").Logger()
//
// Tests pass zerolog.Nop(), or zerolog.New(&buf) to capture output.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
