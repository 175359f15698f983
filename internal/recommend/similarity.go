// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"fmt"
	"sort"
	"time"
)

// Scorer ranks candidates by weighted distance between the requester's
// preferences and each author's traits.
type Scorer struct {
	vectorizer  *Vectorizer
	weights     []float64
	maxDistance float64
}

// ScoredCandidate is a candidate with its distance and score.
type ScoredCandidate struct {
	Candidate
	Distance float64
	Score    float64
}

// NewScorer creates a scorer for cfg. The maximum distance is derived from
// the configured weights so reweighting keeps scores in [0, 1].
func NewScorer(cfg *Config, now func() time.Time) (*Scorer, error) {
	weights := cfg.Weights.Vector()
	maxDist, err := MaxDistance(NewLayout(cfg.Ranges), weights)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		vectorizer:  NewVectorizer(now),
		weights:     weights,
		maxDistance: maxDist,
	}, nil
}

// MaxDistance returns the normalizing distance.
func (s *Scorer) MaxDistance() float64 {
	return s.maxDistance
}

// Score computes the distance and score of one candidate.
func (s *Scorer) Score(requester *Profile, c Candidate) (distance, score float64, err error) {
	a, b := s.vectorizer.Vectors(requester, &c.Listing, c.Author)
	distance, err = WeightedDistance(a, b, s.weights)
	if err != nil {
		return 0, 0, err
	}
	return distance, DistanceScore(distance, s.maxDistance), nil
}

// Rank scores every candidate and orders them by ascending distance,
// breaking ties by listing id.
func (s *Scorer) Rank(requester *Profile, candidates []Candidate) ([]ScoredCandidate, error) {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		d, score, err := s.Score(requester, c)
		if err != nil {
			return nil, fmt.Errorf("score listing %d: %w", c.Listing.ID, err)
		}
		out = append(out, ScoredCandidate{Candidate: c, Distance: d, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Listing.ID < out[j].Listing.ID
	})
	return out, nil
}

// TopN converts the first n ranked candidates into ranked results,
// attaching explanations when explainer is non-nil.
func (s *Scorer) TopN(requester *Profile, ranked []ScoredCandidate, n int, explainer *Explainer) []ScoredListing {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]ScoredListing, 0, n)
	for i := 0; i < n; i++ {
		sc := ranked[i]
		item := ScoredListing{
			Listing: sc.Listing,
			Score:   sc.Score,
			Rank:    i + 1,
		}
		if explainer != nil {
			item.Explanation = explainer.Explain(requester, sc.Candidate, sc.Distance, s.maxDistance, sc.Score)
		}
		out = append(out, item)
	}
	return out
}
