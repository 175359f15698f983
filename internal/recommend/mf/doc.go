// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

// Package mf serves a pre-trained biased matrix factorization model.
//
// The model is trained outside this service and handed over as a JSON
// artifact holding the global mean, per-user and per-listing biases, latent
// factor vectors and the rating scale. A prediction is
//
//	r(u, i) = mean + b_u + b_i + <p_u, q_i>
//
// clipped to the rating scale.
//
// # Artifact Format
//
// The artifact carries metadata (version, training time, counts) and a
// SHA-256 checksum of the model body. Load rejects artifacts whose checksum
// does not match, so a partially copied file is never served.
//
// # Hot Reload
//
// Loader implements recommend.ModelSource. Every call to Current stats the
// artifact and reloads it when its modification time or size changed. A
// missing artifact is a normal condition: Current reports ok=false and the
// engine serves similarity results only. A corrupt replacement keeps the
// last good model in service.
//
// # Thread Safety
//
// Model is immutable after Load and safe for concurrent Predict calls.
// Loader is safe for concurrent use.
package mf
