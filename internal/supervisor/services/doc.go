// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package services adapts Roomie's long-running components to suture.Service.
//
//   - HTTPServerService: the API server (api layer)
//   - PhaseSchedulerService: periodic phase controller runs (evaluation layer)
//   - EvaluationTriggerService: controller runs requested over the event bus,
//     coalesced by a rate limiter (messaging layer)
//
// Every Serve returns ctx.Err() on cancellation so suture does not treat a
// clean shutdown as a failure. Run outcomes are counted in
// roomie_supervisor_service_runs_total.
package services
