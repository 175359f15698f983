// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package config provides centralized configuration management for Roomie.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is validated before use
so that an invalid phase policy, store kind, feature weight or limit fails
startup rather than the first request.

# Configuration Sources

  - Defaults from defaultConfig()
  - A YAML file at CONFIG_PATH, or the first of DefaultConfigPaths that exists
  - Flat environment variables mapped through envTransformFunc

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeouts)
  - DatabaseConfig: DuckDB path and tuning
  - LoggingConfig: zerolog level and format
  - RecommendConfig: feature weights, limits, learned-model artifact and breaker
  - PhaseConfig: controller policy, phase store, schedule and evaluation harness
  - EventsConfig: watermill transport (gochannel or NATS)
  - SecurityConfig: CORS origins and rate limiting
  - SupervisorConfig: suture failure handling

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT

Database:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS

Recommendation:
  - MF_MODEL_PATH, RECOMMEND_ELIGIBILITY_POLICY, RECOMMEND_DEFAULT_LIMIT,
    RECOMMEND_MAX_LIMIT, RECOMMEND_WEIGHT_* and RECOMMEND_BREAKER_*

Phase:
  - PHASE_POLICY (evaluation, threshold), PHASE_STORE (file, badger),
    PHASE_STATE_PATH, PHASE_BADGER_PATH, PHASE_SCHEDULE_INTERVAL,
    PHASE_RUN_ON_STARTUP, PHASE_RUN_TIMEOUT, PHASE_TRIGGER_MIN_INTERVAL
  - EVAL_K, EVAL_RELEVANCE_THRESHOLD, EVAL_MIN_USERS, EVAL_SPLIT_STRATEGY,
    EVAL_TEST_FRACTION, EVAL_SEED

Events:
  - EVENTS_ENABLED, EVENTS_TRANSPORT, NATS_URL, NATS_JETSTREAM,
    NATS_QUEUE_GROUP, NATS_EMBEDDED, NATS_EMBEDDED_HOST,
    NATS_EMBEDDED_PORT, NATS_STORE_DIR

Security:
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.Logging.ToLogging())
	engineCfg := cfg.Recommend.ToEngineConfig()

# Thread Safety

Config is immutable after Load() and safe for concurrent read access.
*/
package config
