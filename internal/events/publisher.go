// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/roomie/internal/phase"
)

// Publisher is the publishing half of a Bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// DecisionPublisher announces controller decisions on TopicPhaseDecided.
type DecisionPublisher struct {
	pub Publisher
}

var _ phase.DecisionPublisher = (*DecisionPublisher)(nil)

// NewDecisionPublisher creates a decision publisher.
func NewDecisionPublisher(pub Publisher) *DecisionPublisher {
	return &DecisionPublisher{pub: pub}
}

// PublishDecision publishes d. The decision id is reused as the message id
// so NATS deduplication drops redeliveries.
func (p *DecisionPublisher) PublishDecision(ctx context.Context, d phase.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	id := d.ID
	if id == "" {
		id = uuid.New().String()
	}
	msg := message.NewMessage(id, data)
	msg.Metadata.Set("policy", d.Policy)
	msg.Metadata.Set("outcome", string(d.Outcome))
	msg.Metadata.Set("from", d.From.String())
	msg.Metadata.Set("to", d.To.String())
	msg.Metadata.Set("interaction_count", strconv.FormatInt(d.InteractionCount, 10))

	return p.pub.Publish(ctx, TopicPhaseDecided, msg)
}

// DecodeDecision decodes a message published by PublishDecision.
func DecodeDecision(msg *message.Message) (phase.Decision, error) {
	var d phase.Decision
	if err := json.Unmarshal(msg.Payload, &d); err != nil {
		return phase.Decision{}, fmt.Errorf("unmarshal decision: %w", err)
	}
	return d, nil
}

// EvaluationRequest asks for one controller run.
type EvaluationRequest struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// RequestEvaluation publishes an EvaluationRequest on TopicPhaseEvaluate.
func RequestEvaluation(ctx context.Context, pub Publisher, reason, requestedBy string) (EvaluationRequest, error) {
	req := EvaluationRequest{
		ID:          uuid.New().String(),
		Reason:      reason,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return req, fmt.Errorf("marshal evaluation request: %w", err)
	}
	msg := message.NewMessage(req.ID, data)
	msg.Metadata.Set("reason", reason)
	if err := pub.Publish(ctx, TopicPhaseEvaluate, msg); err != nil {
		return req, fmt.Errorf("publish evaluation request: %w", err)
	}
	return req, nil
}

// DecodeEvaluationRequest decodes a message published by RequestEvaluation.
func DecodeEvaluationRequest(msg *message.Message) (EvaluationRequest, error) {
	var req EvaluationRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return EvaluationRequest{}, fmt.Errorf("unmarshal evaluation request: %w", err)
	}
	return req, nil
}
