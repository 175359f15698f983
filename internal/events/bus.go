// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/roomie/internal/metrics"
)

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus owns a Watermill publisher and subscriber pair and, for the NATS
// transport, an optional embedded server.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	server     *EmbeddedServer
	breaker    *gobreaker.CircuitBreaker[any]
	transport  string
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the bus described by cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "events").Str("transport", cfg.Transport).Logger()
	wmLogger := NewLoggerAdapter(logger)

	b := &Bus{
		transport: cfg.Transport,
		logger:    logger,
		breaker:   newPublishBreaker(cfg, logger),
	}

	switch cfg.Transport {
	case TransportNATS:
		if err := b.openNATS(cfg, wmLogger); err != nil {
			b.shutdownServer()
			return nil, err
		}
	default:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		b.publisher = ch
		b.subscriber = ch
	}

	logger.Info().Msg("event bus ready")
	return b, nil
}

func (b *Bus) openNATS(cfg Config, wmLogger watermill.LoggerAdapter) error {
	url := cfg.URL
	if cfg.EmbeddedServer.Enabled {
		srv, err := NewEmbeddedServer(cfg.EmbeddedServer, cfg.JetStream)
		if err != nil {
			return err
		}
		b.server = srv
		url = srv.ClientURL()
		b.logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	js := wmNats.JetStreamConfig{
		Disabled:      !cfg.JetStream,
		AutoProvision: cfg.JetStream,
		TrackMsgId:    cfg.JetStream,
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   js,
	}, wmLogger)
	if err != nil {
		return fmt.Errorf("create watermill publisher: %w", err)
	}

	if cfg.JetStream {
		js.DurablePrefix = cfg.QueueGroup
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        js,
	}, wmLogger)
	if err != nil {
		closeQuietly(pub)
		return fmt.Errorf("create watermill subscriber: %w", err)
	}

	b.publisher = pub
	b.subscriber = sub
	return nil
}

func newPublishBreaker(cfg Config, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	const name = "event-publish"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("event publish circuit breaker state transition")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// Transport returns the configured transport name.
func (b *Bus) Transport() string {
	return b.transport
}

// Publish sends msg to topic through the circuit breaker.
func (b *Bus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.transport == TransportNATS && msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.publisher.Publish(topic, msg)
	})
	metrics.RecordEventPublish(topic, err)
	return err
}

// Subscribe returns the message channel of topic. The channel closes when
// ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the subscriber, the publisher and any embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}
	// gochannel uses one value for both roles.
	if any(b.publisher) != any(b.subscriber) {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	b.shutdownServer()
	return errors.Join(errs...)
}

func (b *Bus) shutdownServer() {
	if b.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.server.Shutdown(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("embedded NATS server shutdown incomplete")
	}
}

type closer interface {
	Close() error
}

func closeQuietly(c closer) {
	if c != nil {
		_ = c.Close()
	}
}
