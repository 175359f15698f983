// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package mf

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/recommend"
)

func testModel() *Model {
	return &Model{
		Metadata:   Metadata{Version: "test-1", InteractionCount: 42},
		GlobalMean: 3.0,
		Scale:      DefaultRatingScale,
		Users: map[int64]Entity{
			1: {Bias: 0.5, Factors: []float64{1, 0}},
			2: {Bias: -0.5, Factors: []float64{0, 1}},
		},
		Items: map[int64]Entity{
			10: {Bias: 0.25, Factors: []float64{0.5, 0.5}},
			11: {Bias: 1.0, Factors: []float64{2, 0}},
			12: {Bias: -3.0, Factors: []float64{0, 0}},
		},
	}
}

func TestPredict(t *testing.T) {
	m := testModel()
	ctx := context.Background()
	tests := []struct {
		name      string
		user, lst int64
		want      float64
	}{
		{"plain", 1, 10, 3.0 + 0.5 + 0.25 + 0.5},
		{"clipped high", 1, 11, 5.0},
		{"clipped low", 2, 12, 1.0},
		{"orthogonal factors", 2, 11, 3.0 - 0.5 + 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(ctx, tt.user, tt.lst)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Predict(%d, %d) = %v, want %v", tt.user, tt.lst, got, tt.want)
			}
		})
	}
}

func TestPredictUnknownEntities(t *testing.T) {
	m := testModel()
	ctx := context.Background()

	_, err := m.Predict(ctx, 99, 10)
	if !errors.Is(err, ErrUnknownUser) || !errors.Is(err, recommend.ErrUnknownEntity) {
		t.Errorf("unknown user error = %v", err)
	}
	_, err = m.Predict(ctx, 1, 99)
	if !errors.Is(err, ErrUnknownItem) || !errors.Is(err, recommend.ErrUnknownEntity) {
		t.Errorf("unknown listing error = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.Predict(cancelled, 1, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
	}{
		{"inverted scale", func(m *Model) { m.Scale = RatingScale{Min: 5, Max: 1} }},
		{"ragged user factors", func(m *Model) { m.Users[3] = Entity{Factors: []float64{1, 2, 3}} }},
		{"ragged item factors", func(m *Model) { m.Items[13] = Entity{Factors: []float64{1}} }},
		{"nan mean", func(m *Model) { m.GlobalMean = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() = %v, want ErrInvalidModel", err)
			}
		})
	}
	if err := testModel().Validate(); err != nil {
		t.Errorf("valid model: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "mf.json")
	if err := Save(path, testModel()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Version() != "test-1" {
		t.Errorf("Version = %q, want test-1", m.Version())
	}
	if m.Metadata.UserCount != 2 || m.Metadata.ItemCount != 3 || m.Metadata.Factors != 2 {
		t.Errorf("metadata = %+v", m.Metadata)
	}
	if len(m.Metadata.Checksum) != 64 {
		t.Errorf("checksum = %q", m.Metadata.Checksum)
	}
	got, _ := m.Predict(context.Background(), 1, 10)
	if math.Abs(got-4.25) > 1e-12 {
		t.Errorf("Predict after round trip = %v, want 4.25", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "absent.json")); !errors.Is(err, ErrNoArtifact) {
		t.Errorf("missing file error = %v, want ErrNoArtifact", err)
	}

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("garbage error = %v, want ErrInvalidModel", err)
	}

	// Tamper with a saved artifact without updating its checksum.
	tampered := filepath.Join(dir, "tampered.json")
	if err := Save(tampered, testModel()); err != nil {
		t.Fatal(err)
	}
	m, err := Load(tampered)
	if err != nil {
		t.Fatal(err)
	}
	checksum := m.Metadata.Checksum
	m.GlobalMean = 4.0
	m.Metadata.Checksum = checksum
	data := mustEncode(t, m)
	if err := os.WriteFile(tampered, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tampered); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("tampered error = %v, want ErrInvalidModel", err)
	}
}

func TestVersionFallsBackToChecksum(t *testing.T) {
	m := testModel()
	m.Metadata.Version = ""
	m.Metadata.Checksum = "0123456789abcdef"
	if got := m.Version(); got != "0123456789ab" {
		t.Errorf("Version = %q, want checksum prefix", got)
	}
}

func TestLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mf.json")
	l := NewLoader(path, zerolog.Nop())

	if _, _, ok := l.Current(); ok {
		t.Fatal("Current reported a model before any artifact exists")
	}

	if err := Save(path, testModel()); err != nil {
		t.Fatal(err)
	}
	p, version, ok := l.Current()
	if !ok || version != "test-1" {
		t.Fatalf("Current = (%v, %q, %v), want test-1 loaded", p, version, ok)
	}
	if r, err := p.Predict(context.Background(), 1, 10); err != nil || math.Abs(r-4.25) > 1e-12 {
		t.Errorf("Predict = %v, %v", r, err)
	}

	// A corrupt replacement keeps the previous model in service.
	if err := os.WriteFile(path, []byte("{truncated"), 0o600); err != nil {
		t.Fatal(err)
	}
	bumpMTime(t, path, time.Second)
	if _, version, ok := l.Current(); !ok || version != "test-1" {
		t.Errorf("after corrupt write Current = (%q, %v), want previous model", version, ok)
	}

	next := testModel()
	next.Metadata.Version = "test-2"
	if err := Save(path, next); err != nil {
		t.Fatal(err)
	}
	bumpMTime(t, path, 2*time.Second)
	if _, version, ok := l.Current(); !ok || version != "test-2" {
		t.Errorf("after new artifact Current = (%q, %v), want test-2", version, ok)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := l.Current(); ok {
		t.Error("Current reported a model after the artifact was removed")
	}
}

func TestLoaderDisabled(t *testing.T) {
	l := NewLoader("", zerolog.Nop())
	if _, _, ok := l.Current(); ok {
		t.Error("loader without a path must never report a model")
	}
}

func mustEncode(t *testing.T, m *Model) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// bumpMTime moves the file's modification time forward so reloads are
// detected on filesystems with coarse timestamps.
func bumpMTime(t *testing.T, path string, d time.Duration) {
	t.Helper()
	ts := time.Now().Add(d)
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatal(err)
	}
}
