// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// EligibilityPolicy selects how gender and age compatibility are handled.
type EligibilityPolicy string

const (
	// EligibilitySoft folds gender and age into the distance score only, so
	// requesters with rare preference combinations still get a ranked list.
	EligibilitySoft EligibilityPolicy = "soft"
	// EligibilityStrict additionally drops listings that fail the
	// bidirectional gender or age-range checks.
	EligibilityStrict EligibilityPolicy = "strict"
)

// ParseEligibilityPolicy validates a policy name. Empty means soft.
func ParseEligibilityPolicy(s string) (EligibilityPolicy, error) {
	switch EligibilityPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case EligibilitySoft, "":
		return EligibilitySoft, nil
	case EligibilityStrict:
		return EligibilityStrict, nil
	default:
		return "", fmt.Errorf("eligibility_policy must be %q or %q, got %q", EligibilitySoft, EligibilityStrict, s)
	}
}

// CandidateFilter reduces the open listing pool to the listings a requester
// may be shown.
type CandidateFilter struct {
	policy EligibilityPolicy
	now    func() time.Time
}

// NewCandidateFilter creates a filter. now defaults to time.Now.
func NewCandidateFilter(policy EligibilityPolicy, now func() time.Time) *CandidateFilter {
	if policy == "" {
		policy = EligibilitySoft
	}
	if now == nil {
		now = time.Now
	}
	return &CandidateFilter{policy: policy, now: now}
}

// Policy returns the active eligibility policy.
func (f *CandidateFilter) Policy() EligibilityPolicy {
	return f.policy
}

// Filter drops listings that are not recruiting, authored by the requester,
// in the exclusion set, or whose author is missing from authors. Under the
// strict policy incompatible listings are dropped too. Input order is kept.
func (f *CandidateFilter) Filter(requester *Profile, listings []Listing, authors map[int64]*Profile, exclude map[int64]struct{}) []Candidate {
	today := f.now()
	out := make([]Candidate, 0, len(listings))
	for i := range listings {
		l := listings[i]
		if l.Status != StatusRecruiting {
			continue
		}
		if l.AuthorID == requester.MemberID {
			continue
		}
		if _, excluded := exclude[l.ID]; excluded {
			continue
		}
		author, ok := authors[l.AuthorID]
		if !ok || author == nil {
			continue
		}
		if f.policy == EligibilityStrict {
			if !GenderCompatible(requester, author, l.PreferredGender) {
				continue
			}
			if !AgeCompatibleBidirectional(requester, author, &l, today) {
				continue
			}
		}
		out = append(out, Candidate{Listing: l, Author: author})
	}
	return out
}

// GenderCompatible checks both directions: the requester's gender against
// the listing's preference, and the author's gender against the
// requester's preference. NONE and unset preferences accept anyone.
func GenderCompatible(requester, author *Profile, listingPref Gender) bool {
	if listingPref != "" && listingPref != GenderNone && requester.Gender != listingPref {
		return false
	}
	if requester.PreferredGender != "" && requester.PreferredGender != GenderNone {
		if author.Gender != requester.PreferredGender {
			return false
		}
	}
	return true
}

// AgeCompatible reports whether age lies within [minAge, maxAge]. A missing
// bound accepts any age.
func AgeCompatible(age int, minAge, maxAge *int) bool {
	if minAge == nil || maxAge == nil {
		return true
	}
	return *minAge <= age && age <= *maxAge
}

// AgeCompatibleBidirectional checks the requester's age against the
// listing's range and the author's age against the requester's range.
func AgeCompatibleBidirectional(requester, author *Profile, listing *Listing, today time.Time) bool {
	if !AgeCompatible(AgeAt(requester.BirthDate, today), listing.PreferredAgeMin, listing.PreferredAgeMax) {
		return false
	}
	return AgeCompatible(AgeAt(author.BirthDate, today), requester.PreferredAgeMin, requester.PreferredAgeMax)
}
