// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package mf

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// body is the checksummed part of the artifact. Map keys are encoded in
// sorted order, so the encoding is deterministic.
type body struct {
	GlobalMean float64          `json:"global_mean"`
	Scale      RatingScale      `json:"rating_scale"`
	Users      map[int64]Entity `json:"users"`
	Items      map[int64]Entity `json:"items"`
}

func (m *Model) checksum() (string, error) {
	data, err := json.Marshal(body{GlobalMean: m.GlobalMean, Scale: m.Scale, Users: m.Users, Items: m.Items})
	if err != nil {
		return "", fmt.Errorf("encode model body: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Load reads and verifies the artifact at path. A missing file returns an
// error wrapping ErrNoArtifact.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return Decode(data)
}

// Decode parses and verifies an artifact.
func Decode(data []byte) (*Model, error) {
	m := &Model{Scale: DefaultRatingScale}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Metadata.Checksum != "" {
		sum, err := m.checksum()
		if err != nil {
			return nil, err
		}
		if sum != m.Metadata.Checksum {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidModel)
		}
	}
	return m, nil
}

// Save validates m, fills in the derived metadata and atomically writes the
// artifact to path.
func Save(path string, m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	sum, err := m.checksum()
	if err != nil {
		return err
	}
	m.Metadata.Checksum = sum
	m.Metadata.SavedAt = time.Now().UTC()
	m.Metadata.UserCount = len(m.Users)
	m.Metadata.ItemCount = len(m.Items)
	for _, u := range m.Users {
		m.Metadata.Factors = len(u.Factors)
		break
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp model artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace model artifact: %w", err)
	}
	return nil
}
