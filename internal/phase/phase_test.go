// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestPhaseOrdering(t *testing.T) {
	if !(P1 < P2 && P2 < P3) {
		t.Fatal("phases must be strictly ordered P1 < P2 < P3")
	}

	tests := []struct {
		phase  Phase
		next   Phase
		hasNxt bool
	}{
		{P1, P2, true},
		{P2, P3, true},
		{P3, P3, false},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			next, ok := tt.phase.Next()
			if next != tt.next || ok != tt.hasNxt {
				t.Errorf("%s.Next() = (%s, %v), want (%s, %v)", tt.phase, next, ok, tt.next, tt.hasNxt)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Phase
		wantErr bool
	}{
		{"P1", P1, false},
		{"p2", P2, false},
		{" P3 ", P3, false},
		{"P4", Unknown, true},
		{"", Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestPhaseJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Current Phase `json:"current"`
	}{P2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"current":"P2"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out struct {
		Current Phase `json:"current"`
	}
	if err := json.Unmarshal([]byte(`{"current":"P3"}`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Current != P3 {
		t.Errorf("Current = %s, want P3", out.Current)
	}

	if err := json.Unmarshal([]byte(`{"current":"P9"}`), &out); err == nil {
		t.Error("expected error for unknown phase name")
	}
}

func TestBlendWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       BlendWeights
		wantErr bool
	}{
		{"rule only", BlendWeights{RuleBased: 1}, false},
		{"mixed", BlendWeights{RuleBased: 0.6, MatrixFactorization: 0.4}, false},
		{"float noise", BlendWeights{RuleBased: 0.7, MatrixFactorization: 0.30000000001}, false},
		{"negative", BlendWeights{RuleBased: 1.2, MatrixFactorization: -0.2}, true},
		{"sum too low", BlendWeights{RuleBased: 0.5, MatrixFactorization: 0.4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.w.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
