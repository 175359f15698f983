// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package recommend implements the phase-aware roommate listing recommender.
//
// # Architecture
//
// A request flows through these stages:
//
//   - Candidate filter: drops non-recruiting, self-authored and already
//     bookmarked or applied-to listings, plus listings without a resolvable
//     author. The strict eligibility policy also applies hard gender and
//     age-range checks.
//   - Similarity scorer: encodes the requester's preferences and each
//     author's traits into 12-dimensional vectors and ranks by weighted
//     Euclidean distance, normalized against the analytic maximum distance.
//   - Blender: in P2 and P3, merges the similarity ranking with learned-model
//     ratings using the phase's blend weights.
//   - Explainer: attaches reason tags after ordering; never affects ranking.
//
// # Phases
//
// The serving phase comes from a phase.Store snapshot taken once per request.
// P1, a zero learned-model weight, or a missing model artifact all take the
// similarity-only path, which is the normal fallback rather than an error.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.EngineDeps{
//	    Data:   db,
//	    Phases: phaseStore,
//	    Models: modelLoader,
//	}, logger)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID:              userID,
//	    Limit:               10,
//	    IncludeExplanations: true,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Requests share no mutable state
// besides the read-mostly phase store and the learned-model circuit breaker.
package recommend
