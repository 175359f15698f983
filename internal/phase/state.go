// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrInvalidState is returned when a phase document fails validation.
var ErrInvalidState = errors.New("invalid phase state")

// State is the persisted phase document. It is the only mutable,
// process-wide configuration in the service: requests read a snapshot of
// it and only the Controller writes it back, always wholesale.
//
// The JSON layout keeps the nested-key shape operators already edit by hand:
//
//	{"phase": {"current": "P2", "thresholds": {"P2": {"min": 100}}, ...},
//	 "weights": {"P2": {"rule_based": 0.6, "matrix_factorization": 0.4}}}
type State struct {
	Phase       Settings     `json:"phase"`
	Weights     PhaseWeights `json:"weights"`
	LastUpdated time.Time    `json:"last_updated,omitempty"`
}

// Settings holds the phase section of the document.
type Settings struct {
	Current               Phase      `json:"current"`
	InteractionCount      int64      `json:"interaction_count"`
	AutoTransitionEnabled bool       `json:"auto_transition_enabled"`
	Thresholds            Thresholds `json:"thresholds"`
	TransitionCriteria    Criteria   `json:"transition_criteria"`
	EvaluationHistory     History    `json:"evaluation_history"`
}

// Threshold is an interaction-count cutoff.
type Threshold struct {
	Min int64 `json:"min"`
}

// Thresholds are the minimum interaction counts for entering P2 and P3.
type Thresholds struct {
	P2 Threshold `json:"P2"`
	P3 Threshold `json:"P3"`
}

// MinFor returns the interaction cutoff of p. P1 has no cutoff.
func (t Thresholds) MinFor(p Phase) int64 {
	switch p {
	case P2:
		return t.P2.Min
	case P3:
		return t.P3.Min
	default:
		return 0
	}
}

// PhaseForCount maps a raw interaction count onto a phase.
func (t Thresholds) PhaseForCount(count int64) Phase {
	switch {
	case count >= t.P3.Min:
		return P3
	case count >= t.P2.Min:
		return P2
	default:
		return P1
	}
}

// MetricWeight wraps a single composite-score weight.
type MetricWeight struct {
	Weight float64 `json:"weight"`
}

// MetricWeights weight the three retrieval metrics in the composite score.
type MetricWeights struct {
	PrecisionAt10 MetricWeight `json:"precision_at_10"`
	RecallAt10    MetricWeight `json:"recall_at_10"`
	NDCGAt10      MetricWeight `json:"ndcg_at_10"`
}

// Criteria configure the evaluation-driven transition gate.
type Criteria struct {
	// MinImprovementRatio is the hysteresis threshold: the next phase's
	// composite score must be at least this multiple of the current one.
	MinImprovementRatio float64       `json:"min_improvement_ratio"`
	EvaluationInterval  int64         `json:"evaluation_interval"`
	Metrics             MetricWeights `json:"metrics"`
}

// PhaseWeights holds the blend weights of every phase.
type PhaseWeights struct {
	P1 BlendWeights `json:"P1"`
	P2 BlendWeights `json:"P2"`
	P3 BlendWeights `json:"P3"`
}

// For returns the blend weights of p. Invalid phases get similarity-only weights.
func (w PhaseWeights) For(p Phase) BlendWeights {
	switch p {
	case P1:
		return w.P1
	case P2:
		return w.P2
	case P3:
		return w.P3
	default:
		return BlendWeights{RuleBased: 1.0}
	}
}

// EvaluationRecord is the snapshot written each time a phase is evaluated.
type EvaluationRecord struct {
	LastEvaluated          time.Time `json:"last_evaluated"`
	PrecisionAt10          float64   `json:"precision_at_10"`
	RecallAt10             float64   `json:"recall_at_10"`
	NDCGAt10               float64   `json:"ndcg_at_10"`
	Coverage               float64   `json:"coverage"`
	CompositeScore         float64   `json:"composite_score"`
	EvaluatedUsers         int       `json:"evaluated_users"`
	InteractionCountAtEval int64     `json:"interaction_count_at_eval"`
}

// History keeps the latest evaluation record of each phase.
type History struct {
	P1 *EvaluationRecord `json:"P1,omitempty"`
	P2 *EvaluationRecord `json:"P2,omitempty"`
	P3 *EvaluationRecord `json:"P3,omitempty"`
}

// Get returns the record of p, or nil if p was never evaluated.
func (h History) Get(p Phase) *EvaluationRecord {
	switch p {
	case P1:
		return h.P1
	case P2:
		return h.P2
	case P3:
		return h.P3
	default:
		return nil
	}
}

// Set replaces the record of p. Records are never modified in place.
func (h *History) Set(p Phase, rec EvaluationRecord) {
	switch p {
	case P1:
		h.P1 = &rec
	case P2:
		h.P2 = &rec
	case P3:
		h.P3 = &rec
	case Unknown:
	}
}

// DefaultState returns the document used when no state has been persisted
// yet. Missing keys of a loaded document fall back to these values.
func DefaultState() *State {
	return &State{
		Phase: Settings{
			Current:               P1,
			InteractionCount:      0,
			AutoTransitionEnabled: true,
			Thresholds: Thresholds{
				P2: Threshold{Min: 100},
				P3: Threshold{Min: 1000},
			},
			TransitionCriteria: Criteria{
				MinImprovementRatio: 1.1,
				EvaluationInterval:  100,
				Metrics: MetricWeights{
					PrecisionAt10: MetricWeight{Weight: 0.5},
					RecallAt10:    MetricWeight{Weight: 0.3},
					NDCGAt10:      MetricWeight{Weight: 0.2},
				},
			},
		},
		Weights: PhaseWeights{
			P1: BlendWeights{RuleBased: 1.0, MatrixFactorization: 0.0},
			P2: BlendWeights{RuleBased: 0.6, MatrixFactorization: 0.4},
			P3: BlendWeights{RuleBased: 0.2, MatrixFactorization: 0.8},
		},
	}
}

// Clone returns a deep copy so callers can never mutate a shared snapshot.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Phase.EvaluationHistory = History{}
	for _, p := range All() {
		if rec := s.Phase.EvaluationHistory.Get(p); rec != nil {
			out.Phase.EvaluationHistory.Set(p, *rec)
		}
	}
	return &out
}

// CurrentWeights returns the blend weights of the current phase.
func (s *State) CurrentWeights() BlendWeights {
	return s.Weights.For(s.Phase.Current)
}

// Validate checks the document invariants.
func (s *State) Validate() error {
	if !s.Phase.Current.Valid() {
		return fmt.Errorf("%w: current phase %s", ErrInvalidState, s.Phase.Current)
	}
	if s.Phase.InteractionCount < 0 {
		return fmt.Errorf("%w: interaction_count must be non-negative, got %d", ErrInvalidState, s.Phase.InteractionCount)
	}
	for _, p := range All() {
		if err := s.Weights.For(p).Validate(); err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalidState, p, err)
		}
	}
	if s.Weights.P1.UsesModel() {
		return fmt.Errorf("%w: P1 matrix_factorization weight must be 0, got %f", ErrInvalidState, s.Weights.P1.MatrixFactorization)
	}

	t := s.Phase.Thresholds
	if t.P2.Min < 0 || t.P3.Min < t.P2.Min {
		return fmt.Errorf("%w: thresholds must satisfy 0 <= P2.min <= P3.min, got %d/%d", ErrInvalidState, t.P2.Min, t.P3.Min)
	}

	c := s.Phase.TransitionCriteria
	if c.MinImprovementRatio <= 0 {
		return fmt.Errorf("%w: min_improvement_ratio must be positive, got %f", ErrInvalidState, c.MinImprovementRatio)
	}
	if c.EvaluationInterval <= 0 {
		return fmt.Errorf("%w: evaluation_interval must be positive, got %d", ErrInvalidState, c.EvaluationInterval)
	}
	m := c.Metrics
	if m.PrecisionAt10.Weight < 0 || m.RecallAt10.Weight < 0 || m.NDCGAt10.Weight < 0 {
		return fmt.Errorf("%w: metric weights must be non-negative", ErrInvalidState)
	}
	return nil
}

// decodeState unmarshals a document over the defaults so absent keys keep
// their default values, then validates the result.
func decodeState(data []byte) (*State, error) {
	st := DefaultState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidState, err)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// encodeState renders a document in the indented form kept on disk.
func encodeState(st *State) ([]byte, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode phase state: %w", err)
	}
	return data, nil
}
