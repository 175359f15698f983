// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator and translates field errors into
// human-readable messages keyed by the JSON field name, so API clients see
// "limit must be at most 100" rather than a Go struct field name.
//
// # Quick Start
//
//	type RecommendRequest struct {
//	    UserID int64 `json:"user_id" validate:"required,gt=0"`
//	    Limit  *int  `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Thread Safety
//
// The validator is initialized once and caches struct metadata; ValidateStruct
// is safe for concurrent use.
package validation
