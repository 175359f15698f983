// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package database provides the relational data layer of the recommender,
// backed by DuckDB.
//
// # Overview
//
// The package mirrors the four upstream tables the recommender reads:
//
//   - member_information: member profiles (traits and preferences)
//   - recruit_post: roommate listings
//   - apply_record: applications with their match status
//   - bookmark: listing bookmarks
//
// # Roles
//
// DB satisfies three consumer interfaces:
//
//   - recommend.DataProvider: requester lookup, open listings, author
//     profiles and the per-member exclusion set (bookmarks and applications)
//   - phase.InteractionCounter: applications plus bookmarks
//   - evaluation.Feed: the (user, listing, rating, time) interaction feed
//
// # Interaction Feed
//
// Applications are rated by match status (MATCHED 5, MATCHING 4, ON_WAIT 3,
// REJECTED 1) and bookmarks rate 4. Duplicate (member, listing) pairs keep
// the most recent record, a bookmark winning a timestamp tie. Applications
// with any other status are left out of the feed.
//
// # Database Technology
//
// DuckDB is opened through database/sql with the CGO driver
// (github.com/duckdb/duckdb-go/v2). Path ":memory:" opens a private
// in-memory database, which the tests use.
//
// # Files
//
//   - database.go: lifecycle (open, initialize, ping, close)
//   - database_schema.go: table and index creation
//   - crud_members.go, crud_listings.go, crud_interactions.go: queries
//   - errors.go: close helpers
package database
