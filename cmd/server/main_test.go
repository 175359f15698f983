// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/roomie/internal/config"
	"github.com/tomtom215/roomie/internal/phase"
)

func TestOpenPhaseStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.PhaseConfig
		wantErr bool
	}{
		{
			name: "file store",
			cfg:  config.PhaseConfig{Store: config.PhaseStoreFile, Path: filepath.Join(dir, "phase.json")},
		},
		{
			name: "badger store",
			cfg:  config.PhaseConfig{Store: config.PhaseStoreBadger, BadgerPath: filepath.Join(dir, "badger")},
		},
		{
			name:    "unknown store",
			cfg:     config.PhaseConfig{Store: "etcd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := openPhaseStore(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("openPhaseStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("openPhaseStore() error = %v", err)
			}
			defer store.Close()

			st, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if st.Phase.Current != phase.P1 {
				t.Errorf("fresh store phase = %s, want P1", st.Phase.Current)
			}
		})
	}
}

func TestInitEvents_Disabled(t *testing.T) {
	cfg := &config.Config{}
	bus, err := initEvents(cfg)
	if err != nil || bus != nil {
		t.Errorf("initEvents() = %v, %v; want nil, nil", bus, err)
	}
}

func TestTreeConfig(t *testing.T) {
	got := treeConfig(&config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     10,
		FailureBackoff:   time.Second,
		ShutdownTimeout:  2 * time.Second,
	})
	if got.FailureThreshold != 3 || got.FailureDecay != 10 || got.FailureBackoff != time.Second || got.ShutdownTimeout != 2*time.Second {
		t.Errorf("treeConfig() = %+v", got)
	}
}
