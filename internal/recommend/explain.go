// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"fmt"
	"math"
)

// Reason tags.
const (
	ReasonGenderFull    = "gender preference fully matched"
	ReasonGenderPartial = "gender preference partially matched"
	ReasonSmoking       = "smoking tolerated"
	ReasonSnoring       = "snoring tolerated"
	ReasonPets          = "pets allowed"
	ReasonLearnedModel  = "learned-model-based"
)

// Explanation thresholds.
const (
	genderFullThreshold    = 0.9
	genderPartialThreshold = 0.5
	ageOverlapThreshold    = 0.7
	neutralMatchScore      = 0.5
)

// Explainer turns a scored candidate into human-readable reasons.
type Explainer struct {
	genderWeight float64
	ageWeight    float64
}

// NewExplainer creates an explainer reporting the given weights.
func NewExplainer(w FeatureWeights) *Explainer {
	return &Explainer{genderWeight: w.Gender, ageWeight: w.Age}
}

// Explain describes a candidate already scored at distance out of maxDistance.
func (e *Explainer) Explain(requester *Profile, c Candidate, distance, maxDistance, score float64) *Explanation {
	author := c.Author
	l := &c.Listing
	reasons := make([]string, 0, 6)

	switch g := GenderMatchScore(requester, author, l.PreferredGender); {
	case g >= genderFullThreshold:
		reasons = append(reasons, ReasonGenderFull)
	case g >= genderPartialThreshold:
		reasons = append(reasons, ReasonGenderPartial)
	}

	overlap := AgeOverlapCoefficient(requester.PreferredAgeMin, requester.PreferredAgeMax, l.PreferredAgeMin, l.PreferredAgeMax)
	if overlap >= ageOverlapThreshold {
		reasons = append(reasons, fmt.Sprintf("age range %d%% overlapping", int(overlap*100)))
	}

	if requester.PreferredLifestyle != "" && requester.PreferredLifestyle == author.MyLifestyle {
		reasons = append(reasons, fmt.Sprintf("lifestyle matches (%s)", requester.PreferredLifestyle))
	}
	if requester.PreferredPersonality != "" && requester.PreferredPersonality == author.MyPersonality {
		reasons = append(reasons, fmt.Sprintf("personality matches (%s)", requester.PreferredPersonality))
	}

	if author.IsSmoking && requester.PossibleSmoking {
		reasons = append(reasons, ReasonSmoking)
	}
	if author.IsSnoring && requester.PossibleSnoring {
		reasons = append(reasons, ReasonSnoring)
	}
	if author.HasPet && requester.HasPetAllowed {
		reasons = append(reasons, ReasonPets)
	}

	return &Explanation{
		Score:      score,
		Percentage: Percentage(score),
		Reasons:    reasons,
		Details: ExplanationDetails{
			Distance:     ptr(round4(distance)),
			MaxDistance:  ptr(round4(maxDistance)),
			GenderWeight: ptr(e.genderWeight),
			AgeWeight:    ptr(e.ageWeight),
		},
	}
}

// LearnedOnly builds the explanation of a listing surfaced only by the
// learned model.
func LearnedOnly(score, rating float64) *Explanation {
	return &Explanation{
		Score:      score,
		Percentage: Percentage(score),
		Reasons:    []string{ReasonLearnedModel},
		Details:    ExplanationDetails{MFRating: ptr(rating)},
	}
}

// GenderMatchScore averages two directions. The listing side gives 0.5 for
// a NONE preference and 1 when the requester's gender matches it. The
// requester side gives 0.5 for an unset or NONE preference and 1 when the
// author's gender matches it.
func GenderMatchScore(requester, author *Profile, listingPref Gender) float64 {
	var score float64
	switch {
	case listingPref == GenderNone:
		score += neutralMatchScore
	case listingPref != "" && requester.Gender == listingPref:
		score += 1
	}
	switch {
	case requester.PreferredGender == "" || requester.PreferredGender == GenderNone:
		score += neutralMatchScore
	case author.Gender == requester.PreferredGender:
		score += 1
	}
	return score / 2
}

// AgeOverlapCoefficient is the inclusive overlap of two age ranges divided
// by the length of the shorter one. Any missing bound yields 0.5.
func AgeOverlapCoefficient(aMin, aMax, bMin, bMax *int) float64 {
	if aMin == nil || aMax == nil || bMin == nil || bMax == nil {
		return neutralMatchScore
	}
	overlap := max(0, min(*aMax, *bMax)-max(*aMin, *bMin)+1)
	shorter := min(*aMax-*aMin+1, *bMax-*bMin+1)
	if shorter <= 0 {
		return 0
	}
	return float64(overlap) / float64(shorter)
}

// Percentage renders a score as a truncated whole percentage.
func Percentage(score float64) string {
	return fmt.Sprintf("%d%%", int(score*100))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func ptr[T any](v T) *T {
	return &v
}
