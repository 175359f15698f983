// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/phase"
)

func newTestBus(t *testing.T, cfg Config) *Bus {
	t.Helper()
	bus, err := NewBus(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	t.Cleanup(func() {
		if err := bus.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return bus
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func sampleDecision() phase.Decision {
	return phase.Decision{
		ID:               "decision-1",
		Policy:           phase.PolicyEvaluation,
		Outcome:          phase.OutcomePromote,
		From:             phase.P1,
		To:               phase.P2,
		InteractionCount: 150,
		CurrentScore:     0.25,
		NextScore:        0.28,
		ImprovementRatio: 1.12,
		Reason:           "next phase outperformed current by 12%",
		DecidedAt:        time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"disabled ignores transport", func(c *Config) { c.Enabled = false; c.Transport = "kafka" }, false},
		{"unknown transport", func(c *Config) { c.Transport = "kafka" }, true},
		{"nats without url", func(c *Config) { c.Transport = TransportNATS; c.URL = "" }, true},
		{"nats embedded without url", func(c *Config) {
			c.Transport = TransportNATS
			c.URL = ""
			c.EmbeddedServer.Enabled = true
		}, false},
		{"jetstream embedded without store", func(c *Config) {
			c.Transport = TransportNATS
			c.JetStream = true
			c.EmbeddedServer.Enabled = true
		}, true},
		{"zero breaker threshold", func(c *Config) { c.BreakerFailureThreshold = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecisionPublisherGoChannel(t *testing.T) {
	bus := newTestBus(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicPhaseDecided)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := sampleDecision()
	if err := NewDecisionPublisher(bus).PublishDecision(ctx, want); err != nil {
		t.Fatalf("PublishDecision() error = %v", err)
	}

	msg := receive(t, ch)
	if msg.UUID != want.ID {
		t.Errorf("message UUID = %q, want decision id %q", msg.UUID, want.ID)
	}
	if got := msg.Metadata.Get("outcome"); got != "promote" {
		t.Errorf("outcome metadata = %q, want promote", got)
	}
	if got := msg.Metadata.Get("to"); got != "P2" {
		t.Errorf("to metadata = %q, want P2", got)
	}

	got, err := DecodeDecision(msg)
	if err != nil {
		t.Fatalf("DecodeDecision() error = %v", err)
	}
	if got.From != phase.P1 || got.To != phase.P2 || got.ImprovementRatio != 1.12 || !got.DecidedAt.Equal(want.DecidedAt) {
		t.Errorf("decoded decision = %+v, want %+v", got, want)
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err = NewDecisionPublisher(bus).PublishDecision(context.Background(), sampleDecision())
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishDecision() after Close error = %v, want ErrBusClosed", err)
	}
}

func TestMessageHandlerEvaluationRequests(t *testing.T) {
	bus := newTestBus(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan EvaluationRequest, 1)
	handler := NewMessageHandler(bus, TopicPhaseEvaluate, zerolog.Nop()).
		HandleEvaluationRequests(func(_ context.Context, req EvaluationRequest) error {
			select {
			case got <- req:
			default:
			}
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- handler.Run(ctx) }()

	// Subscription happens inside Run; retry until the request is consumed.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case req := <-got:
			if req.Reason != "manual" || req.RequestedBy != "test" || req.ID == "" {
				t.Errorf("request = %+v, want reason manual by test", req)
			}
			cancel()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("Run() error = %v, want nil or context.Canceled", err)
			}
			return
		case <-ticker.C:
			if _, err := RequestEvaluation(ctx, bus, "manual", "test"); err != nil {
				t.Fatalf("RequestEvaluation() error = %v", err)
			}
		case <-deadline:
			t.Fatal("evaluation request was not consumed")
		}
	}
}

func TestMessageHandlerDropsMalformed(t *testing.T) {
	bus := newTestBus(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	h := NewMessageHandler(bus, TopicPhaseEvaluate, zerolog.Nop()).
		HandleEvaluationRequests(func(context.Context, EvaluationRequest) error {
			calls.Add(1)
			return nil
		})

	msg := message.NewMessage("bad", []byte("{not json"))
	if err := h.processMessage(ctx, msg); err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("handler called %d times for malformed payload", calls.Load())
	}
	select {
	case <-msg.Acked():
	default:
		t.Error("malformed message should be acked")
	}
}

func TestMessageHandlerNacksOnError(t *testing.T) {
	h := NewMessageHandler(nil, TopicPhaseEvaluate, zerolog.Nop()).
		Handle(func(context.Context, *message.Message) error {
			return errors.New("boom")
		})

	msg := message.NewMessage("m1", nil)
	if err := h.processMessage(context.Background(), msg); err == nil {
		t.Fatal("expected handler error")
	}
	select {
	case <-msg.Nacked():
	default:
		t.Error("failed message should be nacked")
	}
}

func TestNATSTransportEmbedded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}
	cfg := DefaultConfig()
	cfg.Transport = TransportNATS
	cfg.URL = ""
	cfg.EmbeddedServer = ServerConfig{Enabled: true, Host: "127.0.0.1", Port: -1}
	cfg.CloseTimeout = time.Second

	bus := newTestBus(t, cfg)
	if bus.Transport() != TransportNATS {
		t.Fatalf("Transport() = %q, want nats", bus.Transport())
	}
	if bus.server == nil || !bus.server.IsRunning() {
		t.Fatal("embedded server should be running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, TopicPhaseDecided)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := sampleDecision()
	if err := NewDecisionPublisher(bus).PublishDecision(ctx, want); err != nil {
		t.Fatalf("PublishDecision() error = %v", err)
	}
	got, err := DecodeDecision(receive(t, ch))
	if err != nil {
		t.Fatalf("DecodeDecision() error = %v", err)
	}
	if got.ID != want.ID || got.To != phase.P2 {
		t.Errorf("decoded decision = %+v", got)
	}
}
