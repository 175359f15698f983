// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package evaluation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

// Interaction is one (user, listing, rating, time) tuple of the feed.
type Interaction struct {
	UserID    int64     `json:"user_id"`
	ListingID int64     `json:"listing_id"`
	Rating    float64   `json:"rating"`
	At        time.Time `json:"at"`
}

// SplitStrategy selects how the feed is partitioned.
type SplitStrategy string

const (
	// SplitRandom shuffles with a fixed seed.
	SplitRandom SplitStrategy = "random"
	// SplitTemporal holds out the most recent interactions.
	SplitTemporal SplitStrategy = "temporal"
)

// SplitConfig configures the train/test partition.
type SplitConfig struct {
	Strategy     SplitStrategy `json:"strategy"`
	TestFraction float64       `json:"test_fraction"`
	Seed         uint64        `json:"seed"`
}

// Validate checks the split configuration.
func (c SplitConfig) Validate() error {
	switch c.Strategy {
	case SplitRandom, SplitTemporal:
	default:
		return fmt.Errorf("split strategy must be %q or %q, got %q", SplitRandom, SplitTemporal, c.Strategy)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0, 1), got %f", c.TestFraction)
	}
	return nil
}

// Split partitions interactions into train and test slices. The test slice
// holds ceil(n * TestFraction) interactions. The input is not modified and
// equal inputs always yield equal splits.
func Split(interactions []Interaction, cfg SplitConfig) (train, test []Interaction) {
	n := len(interactions)
	nTest := int(math.Ceil(float64(n) * cfg.TestFraction))
	if n == 0 || nTest == 0 {
		return slices.Clone(interactions), nil
	}

	ordered := slices.Clone(interactions)
	switch cfg.Strategy {
	case SplitTemporal:
		slices.SortStableFunc(ordered, func(a, b Interaction) int {
			return a.At.Compare(b.At)
		})
	default:
		//nolint:gosec // deterministic split, not security sensitive
		rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
		rng.Shuffle(n, func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}
	return ordered[:n-nTest], ordered[n-nTest:]
}
