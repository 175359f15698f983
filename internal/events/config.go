// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package events

import (
	"errors"
	"fmt"
	"time"
)

// Transport names.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// Topics.
const (
	TopicPhaseDecided  = "phase.decided"
	TopicPhaseEvaluate = "phase.evaluate"
)

// Config configures the event bus.
type Config struct {
	Enabled   bool
	Transport string

	// NATS settings, used when Transport is "nats".
	URL            string
	JetStream      bool
	QueueGroup     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	CloseTimeout   time.Duration
	EmbeddedServer ServerConfig

	// Publish circuit breaker.
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32
}

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Enabled  bool
	Host     string
	Port     int
	StoreDir string
}

// DefaultConfig returns an in-process bus configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		Transport:               TransportGoChannel,
		URL:                     "nats://127.0.0.1:4222",
		QueueGroup:              "roomie",
		MaxReconnects:           -1,
		ReconnectWait:           2 * time.Second,
		CloseTimeout:            10 * time.Second,
		BreakerTimeout:          30 * time.Second,
		BreakerFailureThreshold: 5,
		EmbeddedServer: ServerConfig{
			Host: "127.0.0.1",
			Port: 4222,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Transport {
	case TransportGoChannel:
	case TransportNATS:
		if c.URL == "" && !c.EmbeddedServer.Enabled {
			return errors.New("events.url is required for the nats transport unless the embedded server is enabled")
		}
		if c.JetStream && c.EmbeddedServer.Enabled && c.EmbeddedServer.StoreDir == "" {
			return errors.New("events.embedded_server.store_dir is required with jetstream")
		}
	default:
		return fmt.Errorf("events.transport must be %q or %q, got %q", TransportGoChannel, TransportNATS, c.Transport)
	}
	if c.BreakerFailureThreshold == 0 {
		return errors.New("events.breaker_failure_threshold must be positive")
	}
	return nil
}
