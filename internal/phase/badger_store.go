// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// stateKey is the single BadgerDB key holding the phase document.
var stateKey = []byte("phase:state")

// BadgerStore keeps the phase document under one BadgerDB key. Badger bumps
// an item's version on every write, which plays the role the modification
// time plays for FileStore: Load only decodes when the version moved.
type BadgerStore struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger

	mu      sync.RWMutex
	state   *State
	version uint64
}

// OpenBadgerStore opens (or creates) a BadgerDB directory for the phase
// document. An empty dir opens an in-memory database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadgerStore(dir string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open phase badger store: %w", err)
	}
	s, err := NewBadgerStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewBadgerStore wraps an already open database. The caller keeps ownership.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) (*BadgerStore, error) {
	s := &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "phase-store").Str("backend", "badger").Logger(),
	}
	if _, err := s.Load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns a snapshot, decoding the stored document only when its
// version changed. A missing key is seeded with DefaultState.
func (s *BadgerStore) Load(ctx context.Context) (*State, error) {
	var (
		data    []byte
		version uint64
		missing bool
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			missing = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("get phase state: %w", err)
		}
		version = item.Version()

		s.mu.RLock()
		unchanged := s.state != nil && version == s.version
		s.mu.RUnlock()
		if unchanged {
			return nil
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if missing {
		s.logger.Info().Msg("phase state not found, writing defaults")
		if err := s.Save(ctx, DefaultState()); err != nil {
			return nil, err
		}
		return DefaultState(), nil
	}

	if data == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.state.Clone(), nil
	}

	st, err := decodeState(data)
	if err != nil {
		s.mu.RLock()
		cached := s.state
		s.mu.RUnlock()
		if cached == nil {
			return nil, err
		}
		s.logger.Warn().Err(err).Msg("phase state reload failed, serving last good snapshot")
		return cached.Clone(), nil
	}

	s.mu.Lock()
	s.state = st
	s.version = version
	s.mu.Unlock()
	return st.Clone(), nil
}

// Save validates st and writes it in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, st *State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, data)
	}); err != nil {
		return fmt.Errorf("set phase state: %w", err)
	}

	// Force the next Load to pick up the committed version.
	s.mu.Lock()
	s.state = st.Clone()
	s.version = 0
	s.mu.Unlock()
	return nil
}

// Close closes the database if this store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
