// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/metrics"
)

// Subscriber is the subscribing half of a Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// MessageHandler processes messages from one topic. Messages are acked on
// success and nacked when fn returns an error.
type MessageHandler struct {
	sub     Subscriber
	topic   string
	handler func(ctx context.Context, msg *message.Message) error
	logger  zerolog.Logger
}

// NewMessageHandler creates a handler for topic.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMessageHandler(sub Subscriber, topic string, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		sub:    sub,
		topic:  topic,
		logger: logger.With().Str("topic", topic).Logger(),
	}
}

// Handle sets the message processing function.
func (h *MessageHandler) Handle(fn func(ctx context.Context, msg *message.Message) error) *MessageHandler {
	h.handler = fn
	return h
}

// HandleEvaluationRequests decodes every message as an EvaluationRequest.
// Undecodable messages are acked and dropped, since redelivery cannot fix them.
func (h *MessageHandler) HandleEvaluationRequests(fn func(ctx context.Context, req EvaluationRequest) error) *MessageHandler {
	return h.Handle(func(ctx context.Context, msg *message.Message) error {
		req, err := DecodeEvaluationRequest(msg)
		if err != nil {
			h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed evaluation request")
			return nil
		}
		return fn(ctx, req)
	})
}

// Run processes messages until ctx is canceled or the subscription closes.
func (h *MessageHandler) Run(ctx context.Context) error {
	messages, err := h.sub.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.processMessage(ctx, msg); err != nil {
				h.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("message processing failed")
			}
		}
	}
}

func (h *MessageHandler) processMessage(ctx context.Context, msg *message.Message) error {
	metrics.RecordEventConsume(h.topic)
	if h.handler == nil {
		msg.Ack()
		return nil
	}

	if err := h.handler(ctx, msg); err != nil {
		msg.Nack()
		return err
	}

	msg.Ack()
	return nil
}
