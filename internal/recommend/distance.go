// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when vectors and weights differ in
// length. It indicates a caller defect and must not be retried.
var ErrDimensionMismatch = errors.New("feature dimension mismatch")

// WeightedDistance returns sqrt(sum(w_i * (a_i - b_i)^2)).
func WeightedDistance(a, b, w []float64) (float64, error) {
	if len(a) != len(b) || len(w) != len(a) {
		return 0, fmt.Errorf("%w: vectors %d/%d, weights %d", ErrDimensionMismatch, len(a), len(b), len(w))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += w[i] * d * d
	}
	return math.Sqrt(sum), nil
}

// MaxDistance returns the largest weighted distance any in-range pair can
// reach under layout and w. A one-hot group contributes the two largest
// weights of its axes, a numeric axis span^2 times its weight, and a
// boolean axis its weight.
func MaxDistance(layout []Axis, w []float64) (float64, error) {
	if len(layout) != len(w) {
		return 0, fmt.Errorf("%w: layout %d, weights %d", ErrDimensionMismatch, len(layout), len(w))
	}

	var sum float64
	groups := make(map[string][]float64)
	var order []string
	for i, ax := range layout {
		switch ax.Kind {
		case AxisOneHot:
			if _, seen := groups[ax.Group]; !seen {
				order = append(order, ax.Group)
			}
			groups[ax.Group] = append(groups[ax.Group], w[i])
		case AxisNumeric:
			sum += ax.Span * ax.Span * w[i]
		case AxisBoolean:
			sum += w[i]
		}
	}
	for _, g := range order {
		ws := groups[g]
		sort.Sort(sort.Reverse(sort.Float64Slice(ws)))
		sum += ws[0]
		if len(ws) > 1 {
			sum += ws[1]
		}
	}
	return math.Sqrt(sum), nil
}

// DistanceScore converts a distance into a [0, 1] score.
func DistanceScore(distance, maxDistance float64) float64 {
	if maxDistance <= 0 {
		if distance == 0 {
			return 1
		}
		return 0
	}
	return clamp01(1 - distance/maxDistance)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
