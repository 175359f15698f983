// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the per-feature distance weights.
	Weights FeatureWeights `json:"feature_weights"`

	// Ranges bound the numeric axes for the maximum-distance computation.
	Ranges FeatureRanges `json:"feature_ranges"`

	// EligibilityPolicy selects soft (score-only) or strict (hard filter)
	// handling of gender and age compatibility.
	EligibilityPolicy EligibilityPolicy `json:"eligibility_policy"`

	// DefaultLimit applies when a request has no limit.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the requested limit.
	// Default: 100.
	MaxLimit int `json:"max_limit"`

	// MFCandidateLimit is the number of extra pool listings scored by the
	// learned model beyond the similarity scorer's results.
	// Default: 50.
	MFCandidateLimit int `json:"mf_candidate_limit"`

	// DefaultRating replaces failed learned-model predictions.
	// Default: 3.0.
	DefaultRating float64 `json:"default_rating"`

	// PredictionTimeout bounds each learned-model call.
	// Default: 200ms.
	PredictionTimeout time.Duration `json:"prediction_timeout"`

	// Breaker configures the circuit breaker around the learned model.
	Breaker BreakerConfig `json:"breaker"`
}

// FeatureWeights are the distance weights per feature group.
type FeatureWeights struct {
	// Gender is shared by the three gender axes. Default: 5.0.
	Gender float64 `json:"gender"`
	// Age weights the age axis. Default: 3.0.
	Age         float64 `json:"age"`
	Lifestyle   float64 `json:"lifestyle"`
	Personality float64 `json:"personality"`
	Smoking     float64 `json:"smoking"`
	Snoring     float64 `json:"snoring"`
	Pet         float64 `json:"pet"`
	Occupancy   float64 `json:"occupancy"`
}

// Vector expands the grouped weights into one weight per axis.
func (w FeatureWeights) Vector() []float64 {
	return []float64{
		w.Gender, w.Gender, w.Gender,
		w.Age,
		w.Lifestyle, w.Lifestyle,
		w.Personality, w.Personality,
		w.Smoking, w.Snoring, w.Pet,
		w.Occupancy,
	}
}

// FeatureRanges are the supported value ranges of the numeric axes.
type FeatureRanges struct {
	AgeMin       int `json:"age_min"`
	AgeMax       int `json:"age_max"`
	OccupancyMin int `json:"occupancy_min"`
	OccupancyMax int `json:"occupancy_max"`
}

// BreakerConfig configures the learned-model circuit breaker.
type BreakerConfig struct {
	// MaxRequests allowed through in the half-open state. Default: 3.
	MaxRequests uint32 `json:"max_requests"`
	// Interval clears the closed-state counts. Default: 1m.
	Interval time.Duration `json:"interval"`
	// Timeout is how long the breaker stays open. Default: 30s.
	Timeout time.Duration `json:"timeout"`
	// FailureThreshold is the consecutive failure count that trips it. Default: 5.
	FailureThreshold uint32 `json:"failure_threshold"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: FeatureWeights{
			Gender:      5.0,
			Age:         3.0,
			Lifestyle:   1.0,
			Personality: 1.0,
			Smoking:     1.0,
			Snoring:     1.0,
			Pet:         1.0,
			Occupancy:   1.0,
		},
		Ranges: FeatureRanges{
			AgeMin:       19,
			AgeMax:       34,
			OccupancyMin: 0,
			OccupancyMax: 4,
		},
		EligibilityPolicy: EligibilitySoft,
		DefaultLimit:      10,
		MaxLimit:          100,
		MFCandidateLimit:  50,
		DefaultRating:     3.0,
		PredictionTimeout: 200 * time.Millisecond,
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	for i, w := range c.Weights.Vector() {
		if w < 0 {
			return fmt.Errorf("feature_weights: axis %s must be non-negative, got %f", axisNames[i], w)
		}
	}

	if c.Ranges.AgeMax < c.Ranges.AgeMin {
		return fmt.Errorf("feature_ranges: age_max must be >= age_min, got %d < %d", c.Ranges.AgeMax, c.Ranges.AgeMin)
	}
	if c.Ranges.OccupancyMax < c.Ranges.OccupancyMin {
		return fmt.Errorf("feature_ranges: occupancy_max must be >= occupancy_min, got %d < %d",
			c.Ranges.OccupancyMax, c.Ranges.OccupancyMin)
	}

	if _, err := ParseEligibilityPolicy(string(c.EligibilityPolicy)); err != nil {
		return err
	}

	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.MFCandidateLimit < 0 {
		return fmt.Errorf("mf_candidate_limit must be non-negative, got %d", c.MFCandidateLimit)
	}
	if c.PredictionTimeout <= 0 {
		return fmt.Errorf("prediction_timeout must be positive, got %v", c.PredictionTimeout)
	}
	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("breaker.failure_threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("breaker.timeout must be positive, got %v", c.Breaker.Timeout)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	cp := *c
	return &cp
}
