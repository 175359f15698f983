// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package mf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/roomie/internal/recommend"
)

// Unknown entities wrap recommend.ErrUnknownEntity so the engine treats them
// as expected misses rather than model failures.
var (
	ErrUnknownUser = fmt.Errorf("unknown user: %w", recommend.ErrUnknownEntity)
	ErrUnknownItem = fmt.Errorf("unknown listing: %w", recommend.ErrUnknownEntity)

	// ErrNoArtifact is returned by Load when the artifact file does not exist.
	ErrNoArtifact = errors.New("no model artifact")

	// ErrInvalidModel is returned for artifacts that fail validation.
	ErrInvalidModel = errors.New("invalid model artifact")
)

// RatingScale is the closed range of ratings the model was trained on.
type RatingScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRatingScale matches the interaction rating map (1 to 5).
var DefaultRatingScale = RatingScale{Min: 1, Max: 5}

// Entity is the bias and latent factor vector of one user or listing.
type Entity struct {
	Bias    float64   `json:"bias"`
	Factors []float64 `json:"factors"`
}

// Metadata describes a trained artifact.
type Metadata struct {
	// Version is reported as model_version in responses. When empty the
	// first 12 hex digits of the checksum are used.
	Version          string    `json:"version"`
	TrainedAt        time.Time `json:"trained_at"`
	SavedAt          time.Time `json:"saved_at"`
	InteractionCount int       `json:"interaction_count"`
	UserCount        int       `json:"user_count"`
	ItemCount        int       `json:"item_count"`
	Factors          int       `json:"factors"`
	Checksum         string    `json:"checksum"`
}

// Model is a biased matrix factorization model.
type Model struct {
	Metadata   Metadata         `json:"metadata"`
	GlobalMean float64          `json:"global_mean"`
	Scale      RatingScale      `json:"rating_scale"`
	Users      map[int64]Entity `json:"users"`
	Items      map[int64]Entity `json:"items"`
}

// Validate checks that every factor vector has the same length and the
// scale is well-formed.
func (m *Model) Validate() error {
	if m.Scale.Max <= m.Scale.Min {
		return fmt.Errorf("%w: rating scale max must exceed min, got [%v, %v]", ErrInvalidModel, m.Scale.Min, m.Scale.Max)
	}
	if math.IsNaN(m.GlobalMean) || math.IsInf(m.GlobalMean, 0) {
		return fmt.Errorf("%w: global mean is not finite", ErrInvalidModel)
	}

	k := -1
	check := func(kind string, id int64, e Entity) error {
		if k < 0 {
			k = len(e.Factors)
		}
		if len(e.Factors) != k {
			return fmt.Errorf("%w: %s %d has %d factors, want %d", ErrInvalidModel, kind, id, len(e.Factors), k)
		}
		return nil
	}
	for id, e := range m.Users {
		if err := check("user", id, e); err != nil {
			return err
		}
	}
	for id, e := range m.Items {
		if err := check("listing", id, e); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the artifact version string.
func (m *Model) Version() string {
	if m.Metadata.Version != "" {
		return m.Metadata.Version
	}
	if len(m.Metadata.Checksum) >= 12 {
		return m.Metadata.Checksum[:12]
	}
	return "unversioned"
}

// Predict estimates the rating userID would give listingID, clipped to the
// rating scale.
func (m *Model) Predict(ctx context.Context, userID, listingID int64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	u, ok := m.Users[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	i, ok := m.Items[listingID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, listingID)
	}

	r := m.GlobalMean + u.Bias + i.Bias
	for f := range u.Factors {
		r += u.Factors[f] * i.Factors[f]
	}
	return math.Max(m.Scale.Min, math.Min(m.Scale.Max, r)), nil
}
