// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFileStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "phase.json")

	s, err := NewFileStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not written: %v", err)
	}

	st, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Phase.Current != P1 {
		t.Errorf("Current = %s, want P1", st.Phase.Current)
	}
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "phase.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	st, _ := s.Load(ctx)
	st.Phase.Current = P2
	st.Phase.InteractionCount = 420
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second store over the same file sees the write.
	other, err := NewFileStore(s.Path(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err := other.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Phase.Current != P2 || got.Phase.InteractionCount != 420 {
		t.Errorf("got %s/%d, want P2/420", got.Phase.Current, got.Phase.InteractionCount)
	}

	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	if len(entries) != 1 {
		t.Errorf("expected only the document in the directory, found %d entries", len(entries))
	}
}

func TestFileStoreRejectsInvalidState(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "phase.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	st := DefaultState()
	st.Weights.P1 = BlendWeights{RuleBased: 0.5, MatrixFactorization: 0.5}
	if err := s.Save(context.Background(), st); err == nil {
		t.Fatal("Save accepted a P1 document that uses the learned model")
	}
}

func TestFileStoreHotReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phase.json")
	s, err := NewFileStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	// Another process promotes the phase by rewriting the file.
	doc := `{"phase": {"current": "P3", "interaction_count": 1500}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	st, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Phase.Current != P3 {
		t.Errorf("Current = %s, want P3 after external write", st.Phase.Current)
	}
}

func TestFileStoreServesLastGoodSnapshotOnCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phase.json")
	s, err := NewFileStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"phase": {"current": `), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	st, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error instead of last good snapshot: %v", err)
	}
	if st.Phase.Current != P1 {
		t.Errorf("Current = %s, want P1", st.Phase.Current)
	}
}

func TestFileStoreSnapshotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "phase.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	a, _ := s.Load(ctx)
	a.Phase.Current = P3

	b, _ := s.Load(ctx)
	if b.Phase.Current != P1 {
		t.Error("mutating one snapshot leaked into the next Load")
	}
}
