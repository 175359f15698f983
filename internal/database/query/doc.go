// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package query provides SQL WHERE clause construction for the database
// package. Every value is bound through a placeholder.
package query
