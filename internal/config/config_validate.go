// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/roomie/internal/phase"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validatePhase(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateSupervisor(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

// validateDatabase validates database configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

// validateRecommend validates the recommendation engine settings by
// delegating to the engine configuration's own checks.
func (c *Config) validateRecommend() error {
	if err := c.Recommend.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validatePhase validates phase controller, store and evaluation settings
func (c *Config) validatePhase() error {
	switch c.Phase.Policy {
	case phase.PolicyEvaluation, phase.PolicyThreshold:
	default:
		return fmt.Errorf("PHASE_POLICY must be %q or %q, got %q",
			phase.PolicyEvaluation, phase.PolicyThreshold, c.Phase.Policy)
	}

	switch c.Phase.Store {
	case PhaseStoreFile:
		if c.Phase.Path == "" {
			return fmt.Errorf("PHASE_STATE_PATH is required for the %s store", PhaseStoreFile)
		}
	case PhaseStoreBadger:
		if c.Phase.BadgerPath == "" {
			return fmt.Errorf("PHASE_BADGER_PATH is required for the %s store", PhaseStoreBadger)
		}
	default:
		return fmt.Errorf("PHASE_STORE must be %q or %q, got %q", PhaseStoreFile, PhaseStoreBadger, c.Phase.Store)
	}

	if c.Phase.ScheduleInterval < 0 {
		return fmt.Errorf("PHASE_SCHEDULE_INTERVAL must be non-negative, got %v", c.Phase.ScheduleInterval)
	}
	if c.Phase.RunTimeout <= 0 {
		return fmt.Errorf("PHASE_RUN_TIMEOUT must be positive, got %v", c.Phase.RunTimeout)
	}
	if c.Phase.TriggerMinInterval < 0 {
		return fmt.Errorf("PHASE_TRIGGER_MIN_INTERVAL must be non-negative, got %v", c.Phase.TriggerMinInterval)
	}

	if err := c.Phase.ToEvaluation().Validate(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return nil
}

// validateEvents validates event bus configuration (only if enabled)
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Transport == "nats" && c.Events.URL != "" && !c.Events.EmbeddedServer.Enabled {
		if err := validateNATSURL(c.Events.URL); err != nil {
			return fmt.Errorf("NATS_URL validation failed: %w", err)
		}
	}
	ec := c.Events.ToEvents()
	return ec.Validate()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateSecurity validates CORS and rate limiting configuration
func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must contain at least one origin")
	}
	return c.validateRateLimits()
}

// validateRateLimits validates rate limiting configuration bounds.
// Skipped when rate limiting is disabled.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateSupervisor validates supervisor tree settings
func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive, got %v", c.Supervisor.FailureThreshold)
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive, got %v", c.Supervisor.FailureDecay)
	}
	if c.Supervisor.ShutdownTimeout <= 0 {
		return fmt.Errorf("SUPERVISOR_SHUTDOWN_TIMEOUT must be positive, got %v", c.Supervisor.ShutdownTimeout)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
