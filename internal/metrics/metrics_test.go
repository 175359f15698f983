// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op"))

	RecordDBQuery("test_op", 5*time.Millisecond, nil)
	RecordDBQuery("test_op", 5*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op")); got != before+1 {
		t.Errorf("DBQueryErrors = %v, want %v", got, before+1)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name  string
		phase string
		path  string
	}{
		{name: "rule path in P1", phase: "P1", path: PathRule},
		{name: "blended path in P2", phase: "P2", path: PathBlended},
		{name: "fallback path in P3", phase: "P3", path: PathFallback},
		{name: "empty candidate pool", phase: "P1", path: PathEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := RecommendRequests.WithLabelValues(tt.phase, tt.path)
			before := testutil.ToFloat64(counter)

			RecordRecommendation(tt.phase, tt.path, 12, 3*time.Millisecond)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("RecommendRequests(%s,%s) = %v, want %v", tt.phase, tt.path, got, before+1)
			}
		})
	}
}

func TestRecordPhaseDecision(t *testing.T) {
	counter := PhaseDecisions.WithLabelValues("evaluation", "promote")
	before := testutil.ToFloat64(counter)

	RecordPhaseDecision("evaluation", "promote", 2, 150)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("PhaseDecisions = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(PhaseCurrent); got != 2 {
		t.Errorf("PhaseCurrent = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PhaseInteractionCount); got != 150 {
		t.Errorf("PhaseInteractionCount = %v, want 150", got)
	}

	// A run-level error must not move the gauges.
	RecordPhaseDecision("evaluation", "error", 0, 0)
	if got := testutil.ToFloat64(PhaseCurrent); got != 2 {
		t.Errorf("PhaseCurrent after error = %v, want 2", got)
	}
}

func TestRecordPhaseEvaluation(t *testing.T) {
	before := testutil.ToFloat64(PhaseEvaluationSkippedUsers)

	RecordPhaseEvaluation("P2", time.Second, 0)
	RecordPhaseEvaluation("P2", time.Second, 3)

	if got := testutil.ToFloat64(PhaseEvaluationSkippedUsers); got != before+3 {
		t.Errorf("PhaseEvaluationSkippedUsers = %v, want %v", got, before+3)
	}
}

func TestRecordPredictionFailure(t *testing.T) {
	counter := PredictionFailures.WithLabelValues("unknown_entity")
	before := testutil.ToFloat64(counter)

	RecordPredictionFailure("unknown_entity")

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("PredictionFailures = %v, want %v", got, before+1)
	}
}

func TestRecordEventPublish(t *testing.T) {
	ok := EventsPublished.WithLabelValues("phase.decided", "success")
	failed := EventsPublished.WithLabelValues("phase.decided", "failure")
	okBefore := testutil.ToFloat64(ok)
	failedBefore := testutil.ToFloat64(failed)

	RecordEventPublish("phase.decided", nil)
	RecordEventPublish("phase.decided", errors.New("nats down"))

	if got := testutil.ToFloat64(ok); got != okBefore+1 {
		t.Errorf("success = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(failed); got != failedBefore+1 {
		t.Errorf("failure = %v, want %v", got, failedBefore+1)
	}
}

func TestRecordModelReload(t *testing.T) {
	failed := ModelReloads.WithLabelValues("failure")
	before := testutil.ToFloat64(failed)

	RecordModelReload(errors.New("corrupt artifact"))

	if got := testutil.ToFloat64(failed); got != before+1 {
		t.Errorf("ModelReloads failure = %v, want %v", got, before+1)
	}
}
