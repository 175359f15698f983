// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package events carries phase-controller traffic over Watermill.

Two topics are used:

  - phase.decided: one message per controller decision, published by
    DecisionPublisher (implements phase.DecisionPublisher)
  - phase.evaluate: requests to run the controller, consumed by the trigger
    service in the supervisor tree

Transports:

  - gochannel (default): in-process pub/sub, no external dependencies
  - nats: Watermill NATS publisher/subscriber, optionally against an
    embedded nats-server started by the process itself

Payloads are JSON encoded with goccy/go-json. Publishing goes through a
gobreaker circuit breaker so a broker outage never blocks a decision from
being persisted; the controller logs and ignores publish failures.
*/
package events
