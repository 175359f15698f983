// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultStateIsValid(t *testing.T) {
	st := DefaultState()
	if err := st.Validate(); err != nil {
		t.Fatalf("DefaultState().Validate() = %v", err)
	}
	if st.Phase.Current != P1 {
		t.Errorf("Current = %s, want P1", st.Phase.Current)
	}
	if st.Weights.P1.UsesModel() {
		t.Error("P1 must not use the learned model")
	}
	if got := st.Phase.TransitionCriteria.MinImprovementRatio; got != 1.1 {
		t.Errorf("MinImprovementRatio = %v, want 1.1", got)
	}
}

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"unknown phase", func(s *State) { s.Phase.Current = Unknown }},
		{"negative count", func(s *State) { s.Phase.InteractionCount = -1 }},
		{"P1 uses model", func(s *State) { s.Weights.P1 = BlendWeights{RuleBased: 0.5, MatrixFactorization: 0.5} }},
		{"P2 weights do not sum", func(s *State) { s.Weights.P2 = BlendWeights{RuleBased: 0.6, MatrixFactorization: 0.6} }},
		{"inverted thresholds", func(s *State) { s.Phase.Thresholds.P3.Min = 50 }},
		{"zero ratio", func(s *State) { s.Phase.TransitionCriteria.MinImprovementRatio = 0 }},
		{"zero interval", func(s *State) { s.Phase.TransitionCriteria.EvaluationInterval = 0 }},
		{"negative metric weight", func(s *State) { s.Phase.TransitionCriteria.Metrics.NDCGAt10.Weight = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState()
			tt.mutate(st)
			if err := st.Validate(); !errors.Is(err, ErrInvalidState) {
				t.Errorf("Validate() = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestThresholdsPhaseForCount(t *testing.T) {
	th := DefaultState().Phase.Thresholds
	tests := []struct {
		count int64
		want  Phase
	}{
		{0, P1},
		{99, P1},
		{100, P2},
		{999, P2},
		{1000, P3},
		{50000, P3},
	}
	for _, tt := range tests {
		if got := th.PhaseForCount(tt.count); got != tt.want {
			t.Errorf("PhaseForCount(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	st := DefaultState()
	st.Phase.EvaluationHistory.Set(P1, EvaluationRecord{PrecisionAt10: 0.3})

	cp := st.Clone()
	cp.Phase.EvaluationHistory.P1.PrecisionAt10 = 0.9
	cp.Phase.Current = P3

	if st.Phase.EvaluationHistory.P1.PrecisionAt10 != 0.3 {
		t.Error("mutating a clone's history changed the original")
	}
	if st.Phase.Current != P1 {
		t.Error("mutating a clone's phase changed the original")
	}
}

func TestDecodeStateKeepsDefaultsForMissingKeys(t *testing.T) {
	st, err := decodeState([]byte(`{"phase": {"current": "P2", "interaction_count": 250}}`))
	if err != nil {
		t.Fatalf("decodeState: %v", err)
	}
	if st.Phase.Current != P2 || st.Phase.InteractionCount != 250 {
		t.Errorf("got %s/%d, want P2/250", st.Phase.Current, st.Phase.InteractionCount)
	}
	if st.Phase.Thresholds.P3.Min != 1000 {
		t.Errorf("P3.min = %d, want default 1000", st.Phase.Thresholds.P3.Min)
	}
	if st.Weights.P2.MatrixFactorization != 0.4 {
		t.Errorf("P2 mf weight = %v, want default 0.4", st.Weights.P2.MatrixFactorization)
	}
}

func TestEncodeDecodeRoundTripKeepsHistory(t *testing.T) {
	ts := time.Date(2026, 3, 1, 4, 50, 0, 0, time.UTC)
	st := DefaultState()
	st.Phase.EvaluationHistory.Set(P2, EvaluationRecord{
		LastEvaluated:          ts,
		PrecisionAt10:          0.2,
		EvaluatedUsers:         12,
		InteractionCountAtEval: 300,
	})

	data, err := encodeState(st)
	if err != nil {
		t.Fatalf("encodeState: %v", err)
	}
	got, err := decodeState(data)
	if err != nil {
		t.Fatalf("decodeState: %v", err)
	}
	rec := got.Phase.EvaluationHistory.Get(P2)
	if rec == nil {
		t.Fatal("P2 record lost")
	}
	if !rec.LastEvaluated.Equal(ts) || rec.EvaluatedUsers != 12 || rec.InteractionCountAtEval != 300 {
		t.Errorf("record = %+v", rec)
	}
	if got.Phase.EvaluationHistory.Get(P1) != nil {
		t.Error("P1 record should be absent")
	}
}
