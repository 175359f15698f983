// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package main is the entry point for the Roomie server.

Roomie recommends roommate listings to members. Early in the service's life
it ranks listings by weighted feature similarity to the requester; as
interactions accumulate, a phase controller evaluates blends with a learned
matrix factorization model offline and promotes the serving phase only when
the blend measurably improves ranking quality.

# Application Architecture

	RootSupervisor ("roomie")
	├── EvaluationSupervisor ("evaluation-layer")
	│   └── PhaseSchedulerService (phase.schedule_interval)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EvaluationTriggerService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, console or JSON
 3. Database: DuckDB holding members, listings, applications and bookmarks
 4. Phase store: JSON file or BadgerDB
 5. Learned model: matrix factorization artifact, hot-reloaded from disk
 6. Engine, evaluation harness and phase controller
 7. Event bus (optional): Watermill over an in-process channel or NATS
 8. HTTP server and supervisor tree

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service, then the bus, the phase store and the database are closed.
*/
package main
