// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package evaluation measures offline retrieval quality of the engine.
//
// The historical interaction feed is split into train and test slices.
// For every user with at least one relevant test interaction (rating at or
// above the relevance threshold), the engine is asked for its top-K under
// the phase being evaluated, with the user's training interactions as the
// exclusion set. The ranked list is scored against the relevant set:
//
//	Precision@K = |top-K ∩ relevant| / K
//	Recall@K    = |top-K ∩ relevant| / |relevant|
//	NDCG@K      = DCG@K / IDCG@K, DCG@K = Σ 1/log2(i+1) over relevant hits
//
// Coverage is the share of distinct training listings that appear in any
// user's list.
//
// Users whose recommendation request fails are skipped and counted, never
// scored as zero. Fewer than Config.MinUsers evaluated users makes the run
// inconclusive (ErrInconclusive).
//
// Harness implements phase.Evaluator.
package evaluation
