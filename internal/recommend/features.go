// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import "time"

// AxisKind determines how an axis contributes to the maximum distance.
type AxisKind int

const (
	// AxisOneHot axes belong to a group where at most one axis is set.
	AxisOneHot AxisKind = iota
	// AxisNumeric axes hold a value within [0, Span] of their range.
	AxisNumeric
	// AxisBoolean axes hold 0 or 1.
	AxisBoolean
)

// Axis describes one feature dimension.
type Axis struct {
	Name  string
	Kind  AxisKind
	Group string
	// Span is the width of the supported value range (numeric axes only).
	Span float64
}

// Axis positions within a feature vector.
const (
	axisGenderMan = iota
	axisGenderFemale
	axisGenderNone
	axisAge
	axisLifestyleMorning
	axisLifestyleEvening
	axisPersonalityIntrovert
	axisPersonalityExtrovert
	axisSmoking
	axisSnoring
	axisPet
	axisOccupancy

	// Dimensions is the length of every feature and weight vector.
	Dimensions
)

var axisNames = [Dimensions]string{
	"gender_man", "gender_female", "gender_none",
	"age",
	"lifestyle_morning", "lifestyle_evening",
	"personality_introvert", "personality_extrovert",
	"smoking", "snoring", "pet",
	"occupancy",
}

// NewLayout describes the axes of the feature space for the given ranges.
func NewLayout(r FeatureRanges) []Axis {
	layout := make([]Axis, Dimensions)
	for i := range layout {
		layout[i] = Axis{Name: axisNames[i], Kind: AxisBoolean}
	}
	for _, i := range []int{axisGenderMan, axisGenderFemale, axisGenderNone} {
		layout[i].Kind, layout[i].Group = AxisOneHot, "gender"
	}
	for _, i := range []int{axisLifestyleMorning, axisLifestyleEvening} {
		layout[i].Kind, layout[i].Group = AxisOneHot, "lifestyle"
	}
	for _, i := range []int{axisPersonalityIntrovert, axisPersonalityExtrovert} {
		layout[i].Kind, layout[i].Group = AxisOneHot, "personality"
	}
	layout[axisAge].Kind = AxisNumeric
	layout[axisAge].Span = float64(r.AgeMax - r.AgeMin)
	layout[axisOccupancy].Kind = AxisNumeric
	layout[axisOccupancy].Span = float64(r.OccupancyMax - r.OccupancyMin)
	return layout
}

// AgeAt returns the completed years between birth and today.
// A zero birth date yields 0.
func AgeAt(birth, today time.Time) int {
	if birth.IsZero() {
		return 0
	}
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Vectorizer turns a (requester, listing, author) triple into a pair of
// axis-aligned feature vectors: the requester's preferences against the
// author's actual traits.
type Vectorizer struct {
	now func() time.Time
}

// NewVectorizer creates a vectorizer. now defaults to time.Now.
func NewVectorizer(now func() time.Time) *Vectorizer {
	if now == nil {
		now = time.Now
	}
	return &Vectorizer{now: now}
}

// Today returns the vectorizer's notion of today.
func (v *Vectorizer) Today() time.Time {
	return v.now()
}

// Vectors builds the requester and author vectors. It never fails; missing
// optional fields encode as zeros.
func (v *Vectorizer) Vectors(requester *Profile, listing *Listing, author *Profile) (req, cand []float64) {
	today := v.now()
	req = make([]float64, Dimensions)
	cand = make([]float64, Dimensions)

	switch requester.PreferredGender {
	case GenderMan:
		req[axisGenderMan] = 1
	case GenderFemale:
		req[axisGenderFemale] = 1
	default:
		// Unset and NONE share the "no preference" slot.
		req[axisGenderNone] = 1
	}
	req[axisAge] = float64(AgeAt(requester.BirthDate, today))
	setLifestyle(req, requester.PreferredLifestyle)
	setPersonality(req, requester.PreferredPersonality)
	req[axisSmoking] = boolAxis(requester.PossibleSmoking)
	req[axisSnoring] = boolAxis(requester.PossibleSnoring)
	req[axisPet] = boolAxis(requester.HasPetAllowed)
	if requester.CohabitantCount != nil {
		req[axisOccupancy] = float64(*requester.CohabitantCount)
	}

	// Authors have no "no preference" gender, so the NONE slot stays 0.
	switch author.Gender {
	case GenderMan:
		cand[axisGenderMan] = 1
	case GenderFemale:
		cand[axisGenderFemale] = 1
	}
	cand[axisAge] = float64(AgeAt(author.BirthDate, today))
	setLifestyle(cand, author.MyLifestyle)
	setPersonality(cand, author.MyPersonality)
	cand[axisSmoking] = boolAxis(author.IsSmoking)
	cand[axisSnoring] = boolAxis(author.IsSnoring)
	cand[axisPet] = boolAxis(author.HasPet)
	cand[axisOccupancy] = float64(listing.RecruitCount)

	return req, cand
}

func setLifestyle(vec []float64, l Lifestyle) {
	switch l {
	case LifestyleMorning:
		vec[axisLifestyleMorning] = 1
	case LifestyleEvening:
		vec[axisLifestyleEvening] = 1
	}
}

func setPersonality(vec []float64, p Personality) {
	switch p {
	case PersonalityIntrovert:
		vec[axisPersonalityIntrovert] = 1
	case PersonalityExtrovert:
		vec[axisPersonalityExtrovert] = 1
	}
}

func boolAxis(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
