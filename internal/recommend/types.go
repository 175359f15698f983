// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/roomie/internal/phase"
)

var (
	// ErrRequesterNotFound is returned when the requesting member does not exist.
	ErrRequesterNotFound = errors.New("requester not found")

	// ErrInvalidRequest is returned for malformed requests (non-positive ids).
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrUnknownEntity is wrapped by predictors when the user or listing was
	// not part of the learned model. It is an expected outcome, not a fault.
	ErrUnknownEntity = errors.New("unknown user or listing")
)

// Gender is a member's declared gender or a gender preference.
// The empty value means "unset".
type Gender string

const (
	GenderMan    Gender = "MAN"
	GenderFemale Gender = "FEMALE"
	// GenderNone is only meaningful as a preference ("no preference").
	GenderNone Gender = "NONE"
)

// Lifestyle is a daily rhythm. The empty value means "unset".
type Lifestyle string

const (
	LifestyleMorning Lifestyle = "MORNING"
	LifestyleEvening Lifestyle = "EVENING"
)

// Personality is a social temperament. The empty value means "unset".
type Personality string

const (
	PersonalityIntrovert Personality = "INTROVERT"
	PersonalityExtrovert Personality = "EXTROVERT"
)

// ListingStatus is the recruiting state of a listing.
type ListingStatus string

const (
	StatusRecruiting  ListingStatus = "RECRUITING"
	StatusOnContact   ListingStatus = "ON_CONTACT"
	StatusRecruitOver ListingStatus = "RECRUIT_OVER"
)

// Profile describes a member. The same shape serves both the requester
// (whose preference fields matter) and a listing author (whose actual
// trait fields matter).
type Profile struct {
	MemberID  int64     `json:"memberId"`
	Gender    Gender    `json:"gender"`
	BirthDate time.Time `json:"birthDate"`

	// Preferences and tolerances.
	PreferredGender      Gender      `json:"preferredGender,omitempty"`
	PreferredLifestyle   Lifestyle   `json:"preferredLifeStyle,omitempty"`
	PreferredPersonality Personality `json:"preferredPersonality,omitempty"`
	PossibleSmoking      bool        `json:"possibleSmoking"`
	PossibleSnoring      bool        `json:"possibleSnoring"`
	HasPetAllowed        bool        `json:"hasPetAllowed"`
	CohabitantCount      *int        `json:"cohabitantCount,omitempty"`
	PreferredAgeMin      *int        `json:"preferredAgeMin,omitempty"`
	PreferredAgeMax      *int        `json:"preferredAgeMax,omitempty"`

	// Actual traits.
	MyLifestyle   Lifestyle   `json:"myLifestyle,omitempty"`
	MyPersonality Personality `json:"myPersonality,omitempty"`
	IsSmoking     bool        `json:"isSmoking"`
	IsSnoring     bool        `json:"isSnoring"`
	HasPet        bool        `json:"hasPet"`
}

// Listing is a roommate recruitment post.
type Listing struct {
	ID       int64  `json:"recruitPostId"`
	AuthorID int64  `json:"memberId"`
	Title    string `json:"title,omitempty"`

	// RecruitCount is the number of roommates sought (occupancy).
	RecruitCount int `json:"recruitCount"`

	RentCostMin    *int `json:"rentCostMin,omitempty"`
	RentCostMax    *int `json:"rentCostMax,omitempty"`
	MonthlyCostMin *int `json:"monthlyCostMin,omitempty"`
	MonthlyCostMax *int `json:"monthlyCostMax,omitempty"`

	PreferredGender      Gender      `json:"preferredGender,omitempty"`
	PreferredLifestyle   Lifestyle   `json:"preferredLifeStyle,omitempty"`
	PreferredPersonality Personality `json:"preferredPersonality,omitempty"`
	IsSmoking            bool        `json:"isSmoking"`
	IsSnoring            bool        `json:"isSnoring"`
	IsPetAllowed         bool        `json:"isPetAllowed"`
	CohabitantCount      *int        `json:"cohabitantCount,omitempty"`
	PreferredAgeMin      *int        `json:"preferredAgeMin,omitempty"`
	PreferredAgeMax      *int        `json:"preferredAgeMax,omitempty"`

	HasRoom         bool     `json:"hasRoom"`
	Address         string   `json:"address,omitempty"`
	RegionLatitude  *float64 `json:"regionLatitude,omitempty"`
	RegionLongitude *float64 `json:"regionLongitude,omitempty"`

	Status    ListingStatus `json:"recruitStatus"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

// Candidate is an eligible listing with its resolved author.
type Candidate struct {
	Listing Listing
	Author  *Profile
}

// ExplanationDetails carries the raw diagnostics behind a score.
type ExplanationDetails struct {
	Distance     *float64 `json:"distance,omitempty"`
	MaxDistance  *float64 `json:"max_distance,omitempty"`
	GenderWeight *float64 `json:"gender_weight,omitempty"`
	AgeWeight    *float64 `json:"age_weight,omitempty"`
	MFRating     *float64 `json:"mf_rating,omitempty"`
}

// Explanation describes why a listing was recommended. It never
// influences ranking.
type Explanation struct {
	Score      float64            `json:"score"`
	Percentage string             `json:"percentage"`
	Reasons    []string           `json:"reasons"`
	Details    ExplanationDetails `json:"details"`
}

// ScoredListing is one ranked recommendation.
type ScoredListing struct {
	Listing Listing `json:"recruit_post"`

	// Score is in [0, 1], higher is better.
	Score float64 `json:"score"`

	// Rank is 1-based and contiguous within a response.
	Rank int `json:"rank"`

	Explanation *Explanation `json:"explanation,omitempty"`
}

// Request is a recommendation request.
type Request struct {
	UserID              int64
	Limit               int
	IncludeExplanations bool

	// Phase forces the serving phase when valid. The zero value uses the
	// persisted current phase. Offline evaluation sets it.
	Phase phase.Phase

	// Exclude replaces the requester's acted-upon listings when non-nil.
	Exclude map[int64]struct{}

	// RequestID correlates log lines; generated when empty.
	RequestID string
}

// Response is the result of Engine.Recommend.
type Response struct {
	UserID          int64           `json:"user_id"`
	Recommendations []ScoredListing `json:"recommendations"`
	TotalCount      int             `json:"total_count"`
	Phase           phase.Phase     `json:"phase"`
	ModelVersion    string          `json:"model_version,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`

	// Path is the serving path taken (rule, blended, fallback, empty).
	Path string `json:"-"`
	// Candidates is the eligible pool size after filtering.
	Candidates int `json:"-"`
}

// DataProvider supplies the read-only relational data the engine needs.
// It is implemented by the database package.
type DataProvider interface {
	// GetRequester returns the member, or an error wrapping ErrRequesterNotFound.
	GetRequester(ctx context.Context, memberID int64) (*Profile, error)

	// GetOpenListings returns listings currently recruiting.
	GetOpenListings(ctx context.Context) ([]Listing, error)

	// GetAuthors resolves author profiles. Unknown ids are omitted from the map.
	GetAuthors(ctx context.Context, memberIDs []int64) (map[int64]*Profile, error)

	// GetActedListingIDs returns listings the member bookmarked or applied to.
	GetActedListingIDs(ctx context.Context, memberID int64) ([]int64, error)
}

// Predictor estimates the rating a user would give a listing.
type Predictor interface {
	Predict(ctx context.Context, userID, listingID int64) (float64, error)
}

// ModelSource hands out the currently loaded learned model. ok is false when
// no artifact is available, which is a normal condition.
type ModelSource interface {
	Current() (p Predictor, version string, ok bool)
}

// Prediction is the outcome of one learned-model call.
type Prediction struct {
	ListingID int64
	Rating    float64
	Err       error
}

// OK reports whether the prediction succeeded.
func (p Prediction) OK() bool {
	return p.Err == nil
}

// RatingOr returns the predicted rating, or def when the prediction failed.
func (p Prediction) RatingOr(def float64) float64 {
	if p.Err != nil {
		return def
	}
	return p.Rating
}
