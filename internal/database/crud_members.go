// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/roomie/internal/database/query"
	"github.com/tomtom215/roomie/internal/recommend"
)

const memberColumns = `member_id, gender, birth_date,
	preferred_gender, preferred_life_style, preferred_personality,
	possible_smoking, possible_snoring, has_pet_allowed,
	cohabitant_count, preferred_age_min, preferred_age_max,
	my_lifestyle, my_personality, is_smoking, is_snoring, has_pet`

// UpsertMember inserts or replaces a member profile.
func (db *DB) UpsertMember(ctx context.Context, p *recommend.Profile) (err error) {
	start := time.Now()
	defer func() { observe("upsert_member", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO member_information (`+memberColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, current_timestamp)`,
		p.MemberID, string(p.Gender), p.BirthDate,
		nullString(string(p.PreferredGender)), nullString(string(p.PreferredLifestyle)), nullString(string(p.PreferredPersonality)),
		p.PossibleSmoking, p.PossibleSnoring, p.HasPetAllowed,
		nullInt(p.CohabitantCount), nullInt(p.PreferredAgeMin), nullInt(p.PreferredAgeMax),
		nullString(string(p.MyLifestyle)), nullString(string(p.MyPersonality)), p.IsSmoking, p.IsSnoring, p.HasPet,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member %d: %w", p.MemberID, err)
	}
	return nil
}

// GetRequester returns the member's profile. A missing member yields an
// error wrapping recommend.ErrRequesterNotFound.
func (db *DB) GetRequester(ctx context.Context, memberID int64) (p *recommend.Profile, err error) {
	start := time.Now()
	defer func() { observe("get_requester", start, err) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM member_information WHERE member_id = ?`, memberID)
	p, err = scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", memberID, recommend.ErrRequesterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d: %w", memberID, err)
	}
	return p, nil
}

// GetAuthors resolves author profiles by id. Unknown ids are absent from the
// returned map.
func (db *DB) GetAuthors(ctx context.Context, memberIDs []int64) (authors map[int64]*recommend.Profile, err error) {
	authors = make(map[int64]*recommend.Profile, len(memberIDs))
	if len(memberIDs) == 0 {
		return authors, nil
	}
	start := time.Now()
	defer func() { observe("get_authors", start, err) }()

	wb := query.NewWhereBuilder().AddIn("member_id", memberIDs)
	where, args := wb.Build()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+memberColumns+` FROM member_information WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors[p.MemberID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}
	return authors, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*recommend.Profile, error) {
	var p recommend.Profile
	var gender string
	var prefGender, prefLifestyle, prefPersonality sql.NullString
	var myLifestyle, myPersonality sql.NullString
	var cohabitants, ageMin, ageMax sql.NullInt64

	err := row.Scan(
		&p.MemberID, &gender, &p.BirthDate,
		&prefGender, &prefLifestyle, &prefPersonality,
		&p.PossibleSmoking, &p.PossibleSnoring, &p.HasPetAllowed,
		&cohabitants, &ageMin, &ageMax,
		&myLifestyle, &myPersonality, &p.IsSmoking, &p.IsSnoring, &p.HasPet,
	)
	if err != nil {
		return nil, err
	}

	p.Gender = recommend.Gender(gender)
	p.PreferredGender = recommend.Gender(prefGender.String)
	p.PreferredLifestyle = recommend.Lifestyle(prefLifestyle.String)
	p.PreferredPersonality = recommend.Personality(prefPersonality.String)
	p.MyLifestyle = recommend.Lifestyle(myLifestyle.String)
	p.MyPersonality = recommend.Personality(myPersonality.String)
	p.CohabitantCount = intFromNull(cohabitants)
	p.PreferredAgeMin = intFromNull(ageMin)
	p.PreferredAgeMax = intFromNull(ageMax)
	return &p, nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatFromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
