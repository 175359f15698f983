// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package models defines the data structures shared between the HTTP layer
and the relational store.

Model Categories:

1. API Request/Response Models:
  - APIResponse: Standard response wrapper
  - APIError: Error details
  - Metadata: Response metadata (timestamp, query time)
  - RecommendRequest: Body of the recommendation endpoint
  - PhaseStatus: Current phase document as reported by the API

2. Interaction Records:
  - ApplyRecord: An application to a listing and its MatchStatus
  - Bookmark: A bookmarked listing

Profiles and listings are owned by the recommend package; this package only
holds what the recommender itself does not reason about.

JSON Serialization:

All models use snake_case JSON tags for API responses. Optional fields use
omitempty to reduce payload size.
*/
package models
