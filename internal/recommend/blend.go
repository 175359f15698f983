// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/roomie/internal/phase"
)

// Normalize min-max scales scores into [0, 1]. When every value is equal
// each member maps to 0.5. The input map is not modified.
func Normalize(scores map[int64]float64) map[int64]float64 {
	out := make(map[int64]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	span := hi - lo
	for id, s := range scores {
		if span == 0 {
			out[id] = 0.5
			continue
		}
		out[id] = (s - lo) / span
	}
	return out
}

// Materializer builds the result entry for a listing that only the learned
// model surfaced. ok is false when the listing cannot be resolved.
type Materializer func(listingID int64, rating float64) (item ScoredListing, ok bool)

// Blend merges similarity results with learned-model ratings under w.
//
// Both collections are normalized independently, their ids are unioned and
// each id scores rule_weight*rule + mf_weight*mf, a missing side
// contributing 0. Results are sorted by blended score (ties by similarity
// rank, then id), truncated to limit and re-ranked from 1. When w gives the
// learned model no weight, rule is returned unchanged apart from truncation.
func Blend(rule []ScoredListing, ratings map[int64]float64, w phase.BlendWeights, limit int, materialize Materializer) []ScoredListing {
	if !w.UsesModel() {
		return truncate(rule, limit)
	}

	ruleScores := make(map[int64]float64, len(rule))
	ruleIndex := make(map[int64]int, len(rule))
	for i, item := range rule {
		ruleScores[item.Listing.ID] = item.Score
		ruleIndex[item.Listing.ID] = i
	}
	ruleNorm := Normalize(ruleScores)
	mfNorm := Normalize(ratings)

	type entry struct {
		id       int64
		score    float64
		ruleRank int
	}
	entries := make([]entry, 0, len(ruleNorm)+len(mfNorm))
	seen := make(map[int64]struct{}, cap(entries))
	add := func(id int64) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		rank := math.MaxInt
		if i, ok := ruleIndex[id]; ok {
			rank = i
		}
		entries = append(entries, entry{
			id:       id,
			score:    w.RuleBased*ruleNorm[id] + w.MatrixFactorization*mfNorm[id],
			ruleRank: rank,
		})
	}
	for _, item := range rule {
		add(item.Listing.ID)
	}
	for id := range mfNorm {
		add(id)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.ruleRank != b.ruleRank {
			return a.ruleRank < b.ruleRank
		}
		return a.id < b.id
	})

	out := make([]ScoredListing, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		var item ScoredListing
		if i, ok := ruleIndex[e.id]; ok {
			item = rule[i]
			if item.Explanation != nil {
				exp := *item.Explanation
				exp.Score = e.score
				exp.Percentage = Percentage(e.score)
				item.Explanation = &exp
			}
		} else {
			if materialize == nil {
				continue
			}
			var ok bool
			if item, ok = materialize(e.id, ratings[e.id]); !ok {
				continue
			}
			if item.Explanation != nil {
				item.Explanation.Score = e.score
				item.Explanation.Percentage = Percentage(e.score)
			}
		}
		item.Score = e.score
		item.Rank = len(out) + 1
		out = append(out, item)
	}
	return out
}

// truncate returns the first limit items, re-ranked from 1.
func truncate(items []ScoredListing, limit int) []ScoredListing {
	if limit > len(items) {
		limit = len(items)
	}
	out := make([]ScoredListing, limit)
	copy(out, items[:limit])
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
