// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
Package middleware provides HTTP middleware components for the API.

Key Components:

  - Request ID: UUID-based request tracking, propagated into the logging context
  - Prometheus Metrics: request count, latency and in-flight instrumentation

Both are written as func(http.HandlerFunc) http.HandlerFunc and adapted to
chi's r.Use() by the api package.

Endpoint labels use the chi route pattern when one is available so that
path parameters do not create unbounded label cardinality.
*/
package middleware
