// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"fmt"
	"math"
	"strings"
)

// Phase is the operating state that controls how much weight the learned
// model receives relative to the similarity scorer. Phases are strictly
// ordered: P1 < P2 < P3.
type Phase uint8

const (
	// Unknown is the zero value and never a valid operating phase.
	Unknown Phase = iota
	// P1 serves similarity-scorer results only.
	P1
	// P2 blends the similarity scorer with the learned model.
	P2
	// P3 leans mostly on the learned model.
	P3
)

// All returns every valid phase in ascending order.
func All() []Phase {
	return []Phase{P1, P2, P3}
}

// String returns the persisted name of the phase ("P1", "P2", "P3").
func (p Phase) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case P3:
		return "P3"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Valid reports whether p is one of P1, P2, P3.
func (p Phase) Valid() bool {
	switch p {
	case P1, P2, P3:
		return true
	default:
		return false
	}
}

// Next returns the phase after p. The boolean is false at the top phase.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case P1:
		return P2, true
	case P2:
		return P3, true
	default:
		return p, false
	}
}

// Parse converts "P1".."P3" (case-insensitive) to a Phase.
func Parse(s string) (Phase, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P1":
		return P1, nil
	case "P2":
		return P2, nil
	case "P3":
		return P3, nil
	default:
		return Unknown, fmt.Errorf("unknown phase %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid phase %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// BlendWeights is the (similarity, learned model) weight pair of a phase.
type BlendWeights struct {
	RuleBased           float64 `json:"rule_based"`
	MatrixFactorization float64 `json:"matrix_factorization"`
}

// UsesModel reports whether the learned model contributes to the blend.
func (w BlendWeights) UsesModel() bool {
	return w.MatrixFactorization > 0
}

// weightSumTolerance absorbs float noise from hand-edited documents.
const weightSumTolerance = 1e-6

// Validate checks that both weights are non-negative and sum to 1.0.
func (w BlendWeights) Validate() error {
	if w.RuleBased < 0 || w.MatrixFactorization < 0 {
		return fmt.Errorf("weights must be non-negative, got rule_based=%f matrix_factorization=%f",
			w.RuleBased, w.MatrixFactorization)
	}
	if sum := w.RuleBased + w.MatrixFactorization; math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}
	return nil
}
