// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package models

import (
	"fmt"
	"time"
)

// MatchStatus is the state of an application to a listing.
type MatchStatus string

const (
	MatchStatusOnWait   MatchStatus = "ON_WAIT"
	MatchStatusMatching MatchStatus = "MATCHING"
	MatchStatusMatched  MatchStatus = "MATCHED"
	MatchStatusRejected MatchStatus = "REJECTED"
)

// Valid reports whether s is a known match status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusOnWait, MatchStatusMatching, MatchStatusMatched, MatchStatusRejected:
		return true
	default:
		return false
	}
}

// ParseMatchStatus converts a stored value to a MatchStatus.
func ParseMatchStatus(s string) (MatchStatus, error) {
	ms := MatchStatus(s)
	if !ms.Valid() {
		return "", fmt.Errorf("unknown match status %q", s)
	}
	return ms, nil
}

// ApplyRecord is a member's application to a listing.
type ApplyRecord struct {
	ID          int64       `json:"record_id"`
	MemberID    int64       `json:"member_id"`
	ListingID   int64       `json:"recruit_post_id"`
	MatchStatus MatchStatus `json:"match_status"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Bookmark is a member's bookmark of a listing.
type Bookmark struct {
	ID        int64     `json:"bookmark_id"`
	MemberID  int64     `json:"member_id"`
	ListingID int64     `json:"recruit_post_id"`
	CreatedAt time.Time `json:"created_at"`
}
