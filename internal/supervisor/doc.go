// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package supervisor provides process supervision for Roomie using suture v4.

Long-running services are organized into a three-layer tree so a failure in
one layer does not take down the others:

	RootSupervisor ("roomie")
	├── EvaluationSupervisor ("evaluation-layer")
	│   └── PhaseSchedulerService
	├── MessagingSupervisor ("messaging-layer")
	│   └── EvaluationTriggerService (if events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, bridged to zerolog by logging.NewSlogLogger.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureDecay:     cfg.Supervisor.FailureDecay,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)

# Graceful Shutdown

Canceling the context passed to Serve or ServeBackground stops every layer.
Services that miss ShutdownTimeout appear in UnstoppedServiceReport.
*/
package supervisor
