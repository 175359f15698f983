// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/phase"
	"github.com/tomtom215/roomie/internal/recommend"
	"github.com/tomtom215/roomie/internal/recommend/evaluation"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/roomie/config.yaml",
	"/etc/roomie/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	eval := evaluation.DefaultConfig()
	bus := events.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "/data/roomie.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			ModelPath:         "/data/models/mf.json",
			EligibilityPolicy: string(engine.EligibilityPolicy),
			DefaultLimit:      engine.DefaultLimit,
			MaxLimit:          engine.MaxLimit,
			MFCandidateLimit:  engine.MFCandidateLimit,
			DefaultRating:     engine.DefaultRating,
			PredictionTimeout: engine.PredictionTimeout,
			Weights: FeatureWeightsConfig{
				Gender:      engine.Weights.Gender,
				Age:         engine.Weights.Age,
				Lifestyle:   engine.Weights.Lifestyle,
				Personality: engine.Weights.Personality,
				Smoking:     engine.Weights.Smoking,
				Snoring:     engine.Weights.Snoring,
				Pet:         engine.Weights.Pet,
				Occupancy:   engine.Weights.Occupancy,
			},
			Ranges: FeatureRangesConfig{
				AgeMin:       engine.Ranges.AgeMin,
				AgeMax:       engine.Ranges.AgeMax,
				OccupancyMin: engine.Ranges.OccupancyMin,
				OccupancyMax: engine.Ranges.OccupancyMax,
			},
			Breaker: BreakerConfig{
				MaxRequests:      engine.Breaker.MaxRequests,
				Interval:         engine.Breaker.Interval,
				Timeout:          engine.Breaker.Timeout,
				FailureThreshold: engine.Breaker.FailureThreshold,
			},
		},
		Phase: PhaseConfig{
			Policy:                 phase.PolicyEvaluation,
			Store:                  PhaseStoreFile,
			Path:                   "/data/phase_state.json",
			BadgerPath:             "/data/phase",
			ScheduleInterval:       24 * time.Hour,
			RunOnStartup:           false,
			RunTimeout:             10 * time.Minute,
			TriggerMinInterval:     time.Minute,
			EvalK:                  eval.K,
			EvalRelevanceThreshold: eval.RelevanceThreshold,
			EvalMinUsers:           eval.MinUsers,
			EvalSplitStrategy:      string(eval.Split.Strategy),
			EvalTestFraction:       eval.Split.TestFraction,
			EvalSeed:               eval.Split.Seed,
		},
		Events: EventsConfig{
			Enabled:       bus.Enabled,
			Transport:     bus.Transport,
			URL:           bus.URL,
			JetStream:     false,
			QueueGroup:    bus.QueueGroup,
			MaxReconnects: bus.MaxReconnects,
			ReconnectWait: bus.ReconnectWait,
			CloseTimeout:  bus.CloseTimeout,
			EmbeddedServer: EmbeddedServerConfig{
				Enabled:  false,
				Host:     bus.EmbeddedServer.Host,
				Port:     bus.EmbeddedServer.Port,
				StoreDir: "/data/nats",
			},
			BreakerTimeout:          bus.BreakerTimeout,
			BreakerFailureThreshold: bus.BreakerFailureThreshold,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port
	// PHASE_POLICY -> phase.policy
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine mappings
	"mf_model_path":                  "recommend.model_path",
	"recommend_eligibility_policy":   "recommend.eligibility_policy",
	"recommend_default_limit":        "recommend.default_limit",
	"recommend_max_limit":            "recommend.max_limit",
	"recommend_mf_candidate_limit":   "recommend.mf_candidate_limit",
	"recommend_default_rating":       "recommend.default_rating",
	"recommend_prediction_timeout":   "recommend.prediction_timeout",
	"recommend_weight_gender":        "recommend.weights.gender",
	"recommend_weight_age":           "recommend.weights.age",
	"recommend_weight_lifestyle":     "recommend.weights.lifestyle",
	"recommend_weight_personality":   "recommend.weights.personality",
	"recommend_weight_smoking":       "recommend.weights.smoking",
	"recommend_weight_snoring":       "recommend.weights.snoring",
	"recommend_weight_pet":           "recommend.weights.pet",
	"recommend_weight_occupancy":     "recommend.weights.occupancy",
	"recommend_age_min":              "recommend.ranges.age_min",
	"recommend_age_max":              "recommend.ranges.age_max",
	"recommend_breaker_timeout":      "recommend.breaker.timeout",
	"recommend_breaker_failures":     "recommend.breaker.failure_threshold",
	"recommend_breaker_max_requests": "recommend.breaker.max_requests",
	"recommend_breaker_interval":     "recommend.breaker.interval",

	// Phase controller mappings
	"phase_policy":               "phase.policy",
	"phase_store":                "phase.store",
	"phase_state_path":           "phase.path",
	"phase_badger_path":          "phase.badger_path",
	"phase_schedule_interval":    "phase.schedule_interval",
	"phase_run_on_startup":       "phase.run_on_startup",
	"phase_run_timeout":          "phase.run_timeout",
	"phase_trigger_min_interval": "phase.trigger_min_interval",
	"eval_k":                     "phase.eval_k",
	"eval_relevance_threshold":   "phase.eval_relevance_threshold",
	"eval_min_users":             "phase.eval_min_users",
	"eval_split_strategy":        "phase.eval_split_strategy",
	"eval_test_fraction":         "phase.eval_test_fraction",
	"eval_seed":                  "phase.eval_seed",

	// Event bus mappings
	"events_enabled":     "events.enabled",
	"events_transport":   "events.transport",
	"nats_url":           "events.url",
	"nats_jetstream":     "events.jetstream",
	"nats_queue_group":   "events.queue_group",
	"nats_embedded":      "events.embedded_server.enabled",
	"nats_embedded_host": "events.embedded_server.host",
	"nats_embedded_port": "events.embedded_server.port",
	"nats_store_dir":     "events.embedded_server.store_dir",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Supervisor mappings
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - PHASE_POLICY -> phase.policy
//   - MF_MODEL_PATH -> recommend.model_path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
