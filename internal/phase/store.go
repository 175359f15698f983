// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store persists the phase document.
//
// Load is the explicit refresh point: implementations re-read the backing
// document when it changed since the last read and always return an
// independent snapshot. Save replaces the whole document atomically.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Close() error
}

// FileStore keeps the phase document as an indented JSON file. Readers
// reload it when the file's modification time or size changes, so a
// promotion written by another process is picked up at the next request.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	state   *State
	modTime time.Time
	size    int64
}

// NewFileStore opens the document at path, creating it with DefaultState
// when it does not exist yet.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger.With().Str("component", "phase-store").Str("path", path).Logger(),
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Msg("phase document not found, writing defaults")
		if err := s.Save(context.Background(), DefaultState()); err != nil {
			return nil, err
		}
		return s, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat phase document: %w", err)
	}

	if _, err := s.Load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing document.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns a snapshot of the document, re-reading the file when it
// changed. If a changed file fails to decode, the last good snapshot is
// returned and the failure is logged.
func (s *FileStore) Load(ctx context.Context) (*State, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return s.cachedOr(fmt.Errorf("stat phase document: %w", err))
	}

	s.mu.RLock()
	fresh := s.state != nil && info.ModTime().Equal(s.modTime) && info.Size() == s.size
	s.mu.RUnlock()
	if fresh {
		return s.snapshot(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.cachedOr(fmt.Errorf("read phase document: %w", err))
	}
	st, err := decodeState(data)
	if err != nil {
		return s.cachedOr(err)
	}

	s.mu.Lock()
	previous := s.state
	s.state = st
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.mu.Unlock()

	if previous != nil && previous.Phase.Current != st.Phase.Current {
		s.logger.Info().
			Str("from", previous.Phase.Current.String()).
			Str("to", st.Phase.Current.String()).
			Msg("phase document reloaded with new phase")
	}
	return st.Clone(), nil
}

// Save validates st and atomically replaces the document through a
// temporary file in the same directory followed by a rename.
func (s *FileStore) Save(ctx context.Context, st *State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create phase document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".phase-*.json")
	if err != nil {
		return fmt.Errorf("create temp phase document: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp phase document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp phase document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp phase document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace phase document: %w", err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat phase document: %w", err)
	}

	s.mu.Lock()
	s.state = st.Clone()
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the file is only open while reading or writing.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *FileStore) cachedOr(err error) (*State, error) {
	s.mu.RLock()
	cached := s.state
	s.mu.RUnlock()
	if cached == nil {
		return nil, err
	}
	s.logger.Warn().Err(err).Msg("phase document reload failed, serving last good snapshot")
	return s.snapshot(), nil
}
