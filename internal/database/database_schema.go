// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

/*
database_schema.go - Database Schema Management

Tables mirror the upstream roommate service:
  - member_information: profile traits and preferences
  - recruit_post: listings, with recruit_status driving eligibility
  - apply_record: applications and their match_status
  - bookmark: bookmarks

Foreign keys are not declared: rows arrive from the upstream system in no
particular order and are replaced wholesale on re-sync.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS member_information (
			member_id BIGINT PRIMARY KEY,
			gender VARCHAR NOT NULL,
			birth_date DATE NOT NULL,
			preferred_gender VARCHAR,
			preferred_life_style VARCHAR,
			preferred_personality VARCHAR,
			possible_smoking BOOLEAN NOT NULL DEFAULT false,
			possible_snoring BOOLEAN NOT NULL DEFAULT false,
			has_pet_allowed BOOLEAN NOT NULL DEFAULT false,
			cohabitant_count INTEGER,
			preferred_age_min INTEGER,
			preferred_age_max INTEGER,
			my_lifestyle VARCHAR,
			my_personality VARCHAR,
			is_smoking BOOLEAN NOT NULL DEFAULT false,
			is_snoring BOOLEAN NOT NULL DEFAULT false,
			has_pet BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS recruit_post (
			recruit_post_id BIGINT PRIMARY KEY,
			member_id BIGINT NOT NULL,
			title VARCHAR,
			recruit_count INTEGER NOT NULL DEFAULT 1,
			rent_cost_min INTEGER,
			rent_cost_max INTEGER,
			monthly_cost_min INTEGER,
			monthly_cost_max INTEGER,
			preferred_gender VARCHAR,
			preferred_life_style VARCHAR,
			preferred_personality VARCHAR,
			is_smoking BOOLEAN NOT NULL DEFAULT false,
			is_snoring BOOLEAN NOT NULL DEFAULT false,
			is_pet_allowed BOOLEAN NOT NULL DEFAULT false,
			cohabitant_count INTEGER,
			preferred_age_min INTEGER,
			preferred_age_max INTEGER,
			has_room BOOLEAN NOT NULL DEFAULT false,
			address VARCHAR,
			region_latitude DOUBLE,
			region_longitude DOUBLE,
			recruit_status VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS apply_record (
			record_id BIGINT PRIMARY KEY,
			member_id BIGINT NOT NULL,
			recruit_post_id BIGINT NOT NULL,
			match_status VARCHAR NOT NULL,
			submitted_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookmark (
			bookmark_id BIGINT PRIMARY KEY,
			member_id BIGINT NOT NULL,
			recruit_post_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP
		)`,
	}
}

// createIndexes creates the lookup indexes used by the request path.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_recruit_post_status ON recruit_post(recruit_status)`,
		`CREATE INDEX IF NOT EXISTS idx_recruit_post_member ON recruit_post(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_apply_record_member ON apply_record(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookmark_member ON bookmark(member_id)`,
	}
}
