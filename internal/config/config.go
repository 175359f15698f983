// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package config

import (
	"time"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/logging"
	"github.com/tomtom215/roomie/internal/recommend"
	"github.com/tomtom215/roomie/internal/recommend/evaluation"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database, logger)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Logging    LoggingConfig    `koanf:"logging"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Phase      PhaseConfig      `koanf:"phase"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SkipIndexes            bool   `koanf:"skip_indexes"`             // Skip index creation (for fast test setup)
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// ToLogging converts the section into the logging package configuration.
func (c LoggingConfig) ToLogging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Level
	lc.Format = c.Format
	lc.Caller = c.Caller
	return lc
}

// RecommendConfig holds the recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_ELIGIBILITY_POLICY: soft or strict (default: soft)
//   - RECOMMEND_DEFAULT_LIMIT / RECOMMEND_MAX_LIMIT: result limits (default: 10 / 100)
//   - RECOMMEND_WEIGHT_GENDER, RECOMMEND_WEIGHT_AGE, ...: feature weights
//   - MF_MODEL_PATH: learned-model artifact path (default: /data/models/mf.json)
type RecommendConfig struct {
	// ModelPath is the JSON factor-model artifact. An empty path or a
	// missing file leaves the engine on the similarity-only path.
	ModelPath string `koanf:"model_path"`

	EligibilityPolicy string `koanf:"eligibility_policy"`

	DefaultLimit     int `koanf:"default_limit"`
	MaxLimit         int `koanf:"max_limit"`
	MFCandidateLimit int `koanf:"mf_candidate_limit"`

	// DefaultRating replaces failed learned-model predictions.
	DefaultRating     float64       `koanf:"default_rating"`
	PredictionTimeout time.Duration `koanf:"prediction_timeout"`

	Weights FeatureWeightsConfig `koanf:"weights"`
	Ranges  FeatureRangesConfig  `koanf:"ranges"`
	Breaker BreakerConfig        `koanf:"breaker"`
}

// FeatureWeightsConfig holds per-feature distance weights.
type FeatureWeightsConfig struct {
	Gender      float64 `koanf:"gender"`
	Age         float64 `koanf:"age"`
	Lifestyle   float64 `koanf:"lifestyle"`
	Personality float64 `koanf:"personality"`
	Smoking     float64 `koanf:"smoking"`
	Snoring     float64 `koanf:"snoring"`
	Pet         float64 `koanf:"pet"`
	Occupancy   float64 `koanf:"occupancy"`
}

// FeatureRangesConfig bounds the numeric feature axes.
type FeatureRangesConfig struct {
	AgeMin       int `koanf:"age_min"`
	AgeMax       int `koanf:"age_max"`
	OccupancyMin int `koanf:"occupancy_min"`
	OccupancyMax int `koanf:"occupancy_max"`
}

// BreakerConfig configures the learned-model circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// ToEngineConfig converts the section into the engine configuration.
func (c *RecommendConfig) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		Weights: recommend.FeatureWeights{
			Gender:      c.Weights.Gender,
			Age:         c.Weights.Age,
			Lifestyle:   c.Weights.Lifestyle,
			Personality: c.Weights.Personality,
			Smoking:     c.Weights.Smoking,
			Snoring:     c.Weights.Snoring,
			Pet:         c.Weights.Pet,
			Occupancy:   c.Weights.Occupancy,
		},
		Ranges: recommend.FeatureRanges{
			AgeMin:       c.Ranges.AgeMin,
			AgeMax:       c.Ranges.AgeMax,
			OccupancyMin: c.Ranges.OccupancyMin,
			OccupancyMax: c.Ranges.OccupancyMax,
		},
		EligibilityPolicy: recommend.EligibilityPolicy(c.EligibilityPolicy),
		DefaultLimit:      c.DefaultLimit,
		MaxLimit:          c.MaxLimit,
		MFCandidateLimit:  c.MFCandidateLimit,
		DefaultRating:     c.DefaultRating,
		PredictionTimeout: c.PredictionTimeout,
		Breaker: recommend.BreakerConfig{
			MaxRequests:      c.Breaker.MaxRequests,
			Interval:         c.Breaker.Interval,
			Timeout:          c.Breaker.Timeout,
			FailureThreshold: c.Breaker.FailureThreshold,
		},
	}
}

// Phase store kinds.
const (
	PhaseStoreFile   = "file"
	PhaseStoreBadger = "badger"
)

// PhaseConfig holds the phase controller, phase store and evaluation
// harness settings.
//
// Environment Variables:
//   - PHASE_POLICY: evaluation or threshold (default: evaluation)
//   - PHASE_STORE: file or badger (default: file)
//   - PHASE_STATE_PATH: JSON state document (default: /data/phase_state.json)
//   - PHASE_BADGER_PATH: Badger directory (default: /data/phase)
//   - PHASE_SCHEDULE_INTERVAL: scheduled evaluation interval, 0 disables (default: 24h)
type PhaseConfig struct {
	Policy     string `koanf:"policy"`
	Store      string `koanf:"store"`
	Path       string `koanf:"path"`
	BadgerPath string `koanf:"badger_path"`

	// ScheduleInterval runs the controller periodically. Zero disables the
	// scheduled service.
	ScheduleInterval time.Duration `koanf:"schedule_interval"`

	// RunOnStartup runs the controller once when the scheduler starts.
	RunOnStartup bool `koanf:"run_on_startup"`

	// RunTimeout bounds a single controller run.
	RunTimeout time.Duration `koanf:"run_timeout"`

	// TriggerMinInterval is the minimum spacing between message-triggered
	// runs. Triggers arriving sooner are coalesced.
	TriggerMinInterval time.Duration `koanf:"trigger_min_interval"`

	// Evaluation harness settings.
	EvalK                  int     `koanf:"eval_k"`
	EvalRelevanceThreshold float64 `koanf:"eval_relevance_threshold"`
	EvalMinUsers           int     `koanf:"eval_min_users"`
	EvalSplitStrategy      string  `koanf:"eval_split_strategy"`
	EvalTestFraction       float64 `koanf:"eval_test_fraction"`
	EvalSeed               uint64  `koanf:"eval_seed"`
}

// ToEvaluation converts the harness settings into the evaluation package
// configuration.
func (c *PhaseConfig) ToEvaluation() evaluation.Config {
	return evaluation.Config{
		K:                  c.EvalK,
		RelevanceThreshold: c.EvalRelevanceThreshold,
		MinUsers:           c.EvalMinUsers,
		Split: evaluation.SplitConfig{
			Strategy:     evaluation.SplitStrategy(c.EvalSplitStrategy),
			TestFraction: c.EvalTestFraction,
			Seed:         c.EvalSeed,
		},
	}
}

// EventsConfig holds the watermill event bus settings.
//
// Environment Variables:
//   - EVENTS_ENABLED: enable decision events and evaluation triggers (default: true)
//   - EVENTS_TRANSPORT: gochannel or nats (default: gochannel)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: run an embedded NATS server (default: false)
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Transport     string        `koanf:"transport"`
	URL           string        `koanf:"url"`
	JetStream     bool          `koanf:"jetstream"`
	QueueGroup    string        `koanf:"queue_group"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	CloseTimeout  time.Duration `koanf:"close_timeout"`

	EmbeddedServer EmbeddedServerConfig `koanf:"embedded_server"`

	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// EmbeddedServerConfig holds the in-process NATS server settings.
type EmbeddedServerConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	StoreDir string `koanf:"store_dir"`
}

// ToEvents converts the section into the events package configuration.
func (c *EventsConfig) ToEvents() events.Config {
	return events.Config{
		Enabled:       c.Enabled,
		Transport:     c.Transport,
		URL:           c.URL,
		JetStream:     c.JetStream,
		QueueGroup:    c.QueueGroup,
		MaxReconnects: c.MaxReconnects,
		ReconnectWait: c.ReconnectWait,
		CloseTimeout:  c.CloseTimeout,
		EmbeddedServer: events.ServerConfig{
			Enabled:  c.EmbeddedServer.Enabled,
			Host:     c.EmbeddedServer.Host,
			Port:     c.EmbeddedServer.Port,
			StoreDir: c.EmbeddedServer.StoreDir,
		},
		BreakerTimeout:          c.BreakerTimeout,
		BreakerFailureThreshold: c.BreakerFailureThreshold,
	}
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// SupervisorConfig holds the suture supervisor tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration with the following precedence (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
