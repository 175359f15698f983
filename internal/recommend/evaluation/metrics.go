// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package evaluation

import "math"

// Set is a set of listing ids.
type Set map[int64]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...int64) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

func hits(recommended []int64, relevant Set, k int) int {
	n := 0
	for _, id := range head(recommended, k) {
		if relevant.Has(id) {
			n++
		}
	}
	return n
}

func head(ids []int64, k int) []int64 {
	if k < len(ids) {
		return ids[:k]
	}
	return ids
}

// PrecisionAtK is the share of the K slots filled with relevant listings.
// Short lists are still divided by K.
func PrecisionAtK(recommended []int64, relevant Set, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hits(recommended, relevant, k)) / float64(k)
}

// RecallAtK is the share of relevant listings found in the top K, or 0 when
// nothing is relevant.
func RecallAtK(recommended []int64, relevant Set, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hits(recommended, relevant, k)) / float64(len(relevant))
}

// NDCGAtK is the binary-relevance normalized discounted cumulative gain.
// The ideal ranking places min(|relevant|, k) hits at the top.
func NDCGAtK(recommended []int64, relevant Set, k int) float64 {
	idcg := idealDCGAtK(relevant, k)
	if idcg == 0 {
		return 0
	}
	return dcgAtK(recommended, relevant, k) / idcg
}

func dcgAtK(recommended []int64, relevant Set, k int) float64 {
	var dcg float64
	for i, id := range head(recommended, k) {
		if relevant.Has(id) {
			dcg += 1 / math.Log2(float64(i+2))
		}
	}
	return dcg
}

func idealDCGAtK(relevant Set, k int) float64 {
	var idcg float64
	for i := 1; i <= min(len(relevant), k); i++ {
		idcg += 1 / math.Log2(float64(i+1))
	}
	return idcg
}

// Coverage is |recommended| / |catalog|, or 0 for an empty catalog.
func Coverage(recommended, catalog Set) float64 {
	if len(catalog) == 0 {
		return 0
	}
	n := 0
	for id := range recommended {
		if catalog.Has(id) {
			n++
		}
	}
	return float64(n) / float64(len(catalog))
}
