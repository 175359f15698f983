// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/events"
	"github.com/tomtom215/roomie/internal/metrics"
	"github.com/tomtom215/roomie/internal/phase"
)

type fakeRunner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRunner) Run(ctx context.Context) (phase.Decision, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return phase.Decision{}, errors.New("run context has no deadline")
	}
	if f.err != nil {
		return phase.Decision{}, f.err
	}
	return phase.Decision{ID: "d", Outcome: phase.OutcomeHold, From: phase.P1, To: phase.P1}, nil
}

func runCount(service, result string) float64 {
	return testutil.ToFloat64(metrics.SupervisorServiceRuns.WithLabelValues(service, result))
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestNewPhaseSchedulerService_Defaults(t *testing.T) {
	svc := NewPhaseSchedulerService(&fakeRunner{}, PhaseSchedulerConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.config.RunTimeout != 10*time.Minute {
		t.Errorf("RunTimeout = %v, want 10m", svc.config.RunTimeout)
	}
	if svc.String() != "phase-scheduler" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestPhaseSchedulerService_Serve(t *testing.T) {
	tests := []struct {
		name       string
		startup    bool
		interval   time.Duration
		runErr     error
		wantResult string
	}{
		{"runs on startup", true, time.Hour, nil, resultSuccess},
		{"runs on schedule", false, 10 * time.Millisecond, nil, resultSuccess},
		{"failed run keeps serving", true, 10 * time.Millisecond, errors.New("duckdb closed"), resultFailure},
		{"run in progress is coalesced", true, time.Hour, phase.ErrRunInProgress, resultCoalesced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{err: tt.runErr}
			svc := NewPhaseSchedulerService(runner, PhaseSchedulerConfig{
				Interval:     tt.interval,
				RunOnStartup: tt.startup,
				RunTimeout:   time.Second,
			}, zerolog.Nop())
			before := runCount("phase-scheduler", tt.wantResult)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			waitUntil(t, func() bool { return runner.calls.Load() >= 1 }, "controller never ran")
			cancel()

			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if got := runCount("phase-scheduler", tt.wantResult) - before; got < 1 {
				t.Errorf("%s runs recorded = %v, want >= 1", tt.wantResult, got)
			}
		})
	}
}

// chanSubscriber hands out one shared message channel.
type chanSubscriber struct {
	ch chan *message.Message
}

func (s *chanSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return s.ch, nil
}

func evaluationMessage(t *testing.T, id string) *message.Message {
	t.Helper()
	data, err := json.Marshal(events.EvaluationRequest{ID: id, Reason: "test", RequestedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	return message.NewMessage(id, data)
}

func awaitAck(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatalf("message %s was nacked", msg.UUID)
	case <-time.After(2 * time.Second):
		t.Fatalf("message %s was not acked", msg.UUID)
	}
}

func TestEvaluationTriggerService_CoalescesBursts(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan *message.Message, 4)}
	runner := &fakeRunner{}
	svc := NewEvaluationTriggerService(sub, runner, EvaluationTriggerConfig{
		MinInterval: time.Hour,
		RunTimeout:  time.Second,
	}, zerolog.Nop())
	coalescedBefore := runCount("evaluation-trigger", resultCoalesced)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.Serve(ctx)
	}()

	first, second := evaluationMessage(t, "req-1"), evaluationMessage(t, "req-2")
	sub.ch <- first
	awaitAck(t, first)
	sub.ch <- second
	awaitAck(t, second)

	cancel()
	wg.Wait()

	if runner.calls.Load() != 1 {
		t.Errorf("controller runs = %d, want 1", runner.calls.Load())
	}
	if got := runCount("evaluation-trigger", resultCoalesced) - coalescedBefore; got != 1 {
		t.Errorf("coalesced runs = %v, want 1", got)
	}
}

func TestEvaluationTriggerService_FailuresAreAcked(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan *message.Message, 4)}
	runner := &fakeRunner{err: errors.New("evaluation exploded")}
	svc := NewEvaluationTriggerService(sub, runner, EvaluationTriggerConfig{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	for _, id := range []string{"a", "b"} {
		msg := evaluationMessage(t, id)
		sub.ch <- msg
		awaitAck(t, msg)
	}
	if runner.calls.Load() != 2 {
		t.Errorf("controller runs = %d, want 2 without coalescing", runner.calls.Load())
	}

	malformed := message.NewMessage("bad", []byte("not json"))
	sub.ch <- malformed
	awaitAck(t, malformed)
	if runner.calls.Load() != 2 {
		t.Errorf("malformed request triggered a run")
	}
}
