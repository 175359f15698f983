// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

type funcPredictor struct {
	calls atomic.Int64
	fn    func(ctx context.Context, userID, listingID int64) (float64, error)
}

func (p *funcPredictor) Predict(ctx context.Context, userID, listingID int64) (float64, error) {
	p.calls.Add(1)
	return p.fn(ctx, userID, listingID)
}

func testBreaker(threshold uint32) BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: threshold}
}

func TestGuardedPredictorSuccess(t *testing.T) {
	p := &funcPredictor{fn: func(_ context.Context, _, listingID int64) (float64, error) {
		return float64(listingID), nil
	}}
	g := NewGuardedPredictor("test-success", testBreaker(3), time.Second, zerolog.Nop())

	preds := g.PredictAll(context.Background(), p, 1, []int64{1, 2, 3})
	if len(preds) != 3 {
		t.Fatalf("len = %d, want 3", len(preds))
	}
	for _, pr := range preds {
		if !pr.OK() || pr.Rating != float64(pr.ListingID) {
			t.Errorf("prediction %+v, want rating %d", pr, pr.ListingID)
		}
	}
}

func TestGuardedPredictorTrips(t *testing.T) {
	p := &funcPredictor{fn: func(context.Context, int64, int64) (float64, error) {
		return 0, errors.New("model backend down")
	}}
	g := NewGuardedPredictor("test-trips", testBreaker(2), time.Second, zerolog.Nop())

	preds := g.PredictAll(context.Background(), p, 1, []int64{1, 2, 3, 4})

	if got := p.calls.Load(); got != 2 {
		t.Errorf("model called %d times, want 2 before the breaker opens", got)
	}
	if g.State() != gobreaker.StateOpen {
		t.Errorf("state = %v, want open", g.State())
	}
	for _, pr := range preds[2:] {
		if !errors.Is(pr.Err, gobreaker.ErrOpenState) {
			t.Errorf("listing %d error = %v, want ErrOpenState", pr.ListingID, pr.Err)
		}
	}

	ratings := FoldPredictions(preds, 3.0)
	for id, r := range ratings {
		if r != 3.0 {
			t.Errorf("rating[%d] = %v, want default 3.0", id, r)
		}
	}
}

func TestGuardedPredictorUnknownEntityDoesNotTrip(t *testing.T) {
	p := &funcPredictor{fn: func(_ context.Context, _, listingID int64) (float64, error) {
		return 0, fmt.Errorf("listing %d: %w", listingID, ErrUnknownEntity)
	}}
	g := NewGuardedPredictor("test-unknown", testBreaker(2), time.Second, zerolog.Nop())

	preds := g.PredictAll(context.Background(), p, 1, []int64{1, 2, 3, 4, 5})

	if g.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", g.State())
	}
	if got := p.calls.Load(); got != 5 {
		t.Errorf("model called %d times, want 5", got)
	}
	for _, pr := range preds {
		if !errors.Is(pr.Err, ErrUnknownEntity) {
			t.Errorf("error = %v, want ErrUnknownEntity", pr.Err)
		}
	}
}

func TestGuardedPredictorTimeout(t *testing.T) {
	p := &funcPredictor{fn: func(ctx context.Context, _, _ int64) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	g := NewGuardedPredictor("test-timeout", testBreaker(5), 10*time.Millisecond, zerolog.Nop())

	preds := g.PredictAll(context.Background(), p, 1, []int64{1})
	if !errors.Is(preds[0].Err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", preds[0].Err)
	}
	if got := preds[0].RatingOr(3.0); got != 3.0 {
		t.Errorf("RatingOr = %v, want 3.0", got)
	}
}

func TestFoldPredictions(t *testing.T) {
	preds := []Prediction{
		{ListingID: 1, Rating: 4.5},
		{ListingID: 2, Err: errors.New("boom")},
		{ListingID: 3, Rating: 1.0},
	}
	got := FoldPredictions(preds, 3.0)
	want := map[int64]float64{1: 4.5, 2: 3.0, 3: 1.0}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("rating[%d] = %v, want %v", id, got[id], w)
		}
	}
}
