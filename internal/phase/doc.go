// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package phase owns the operating phase of the recommender and the controller
that moves it forward.

A Phase is one of P1, P2 or P3. Each phase carries a pair of blend weights
(similarity scorer, learned model); P1 never uses the learned model. The
phase document (State) is persisted through a Store and is the only mutable,
process-wide configuration of the service.

# Stores

FileStore keeps the document as indented JSON and reloads it when the file's
modification time changes. Writes go through a temporary file and a rename.
BadgerStore keeps it under a single BadgerDB key and reloads on version change.

# Controller

Controller.Run counts interactions, asks the active Policy for a decision and
persists it. Two policies exist and exactly one is wired:

  - EvaluationPolicy evaluates the current and next phase on held-out data and
    promotes when the composite score improves by at least
    min_improvement_ratio.
  - ThresholdPolicy maps interaction-count milestones directly to phases.

Phases never move backwards. Runs are serial; a concurrent Run returns
ErrRunInProgress.
*/
package phase
