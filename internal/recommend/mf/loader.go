// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package mf

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/metrics"
	"github.com/tomtom215/roomie/internal/recommend"
)

// Loader hands out the artifact at a fixed path, reloading it when the file
// changes. It implements recommend.ModelSource.
type Loader struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	model   *Model
	modTime time.Time
	size    int64
	missing bool
}

var _ recommend.ModelSource = (*Loader)(nil)

// NewLoader creates a loader for path and attempts an initial load. A
// missing or invalid artifact is logged, not returned: the service runs on
// similarity results until a valid artifact appears. An empty path disables
// the learned model.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLoader(path string, logger zerolog.Logger) *Loader {
	l := &Loader{
		path:   path,
		logger: logger.With().Str("component", "mf-loader").Str("path", path).Logger(),
	}
	if path != "" {
		l.refresh()
	}
	return l
}

// Path returns the artifact location.
func (l *Loader) Path() string {
	return l.path
}

// Current returns the loaded model, reloading it first when the artifact
// changed on disk.
func (l *Loader) Current() (recommend.Predictor, string, bool) {
	if l.path == "" {
		return nil, "", false
	}
	m := l.refresh()
	if m == nil {
		return nil, "", false
	}
	return m, m.Version(), true
}

// Model returns the loaded model without checking the artifact.
func (l *Loader) Model() *Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model
}

func (l *Loader) refresh() *Model {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.mu.Lock()
		wasMissing := l.missing
		l.missing = true
		l.model = nil
		l.mu.Unlock()
		if !wasMissing {
			l.logger.Info().Msg("no model artifact, serving similarity results only")
		}
		return nil
	}
	if err != nil {
		l.logger.Warn().Err(err).Msg("stat model artifact failed")
		return l.Model()
	}

	l.mu.RLock()
	fresh := l.model != nil && info.ModTime().Equal(l.modTime) && info.Size() == l.size
	current := l.model
	l.mu.RUnlock()
	if fresh {
		return current
	}

	// An invalid artifact is remembered by mtime and size so it is not
	// re-parsed on every request.
	l.mu.Lock()
	defer l.mu.Unlock()
	if info.ModTime().Equal(l.modTime) && info.Size() == l.size && !l.missing {
		return l.model
	}
	l.modTime = info.ModTime()
	l.size = info.Size()
	l.missing = false

	m, err := Load(l.path)
	metrics.RecordModelReload(err)
	if err != nil {
		l.logger.Error().Err(err).Msg("model artifact reload failed, keeping previous model")
		return l.model
	}
	l.model = m
	l.logger.Info().
		Str("version", m.Version()).
		Int("users", len(m.Users)).
		Int("items", len(m.Items)).
		Msg("model artifact loaded")
	return m
}
