// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/roomie/internal/database/query"
	"github.com/tomtom215/roomie/internal/recommend"
)

const listingColumns = `recruit_post_id, member_id, title, recruit_count,
	rent_cost_min, rent_cost_max, monthly_cost_min, monthly_cost_max,
	preferred_gender, preferred_life_style, preferred_personality,
	is_smoking, is_snoring, is_pet_allowed,
	cohabitant_count, preferred_age_min, preferred_age_max,
	has_room, address, region_latitude, region_longitude,
	recruit_status, created_at, updated_at`

// UpsertListing inserts or replaces a listing.
func (db *DB) UpsertListing(ctx context.Context, l *recommend.Listing) (err error) {
	start := time.Now()
	defer func() { observe("upsert_listing", start, err) }()

	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var updatedAt sql.NullTime
	if l.UpdatedAt != nil {
		updatedAt = sql.NullTime{Time: *l.UpdatedAt, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO recruit_post (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.AuthorID, nullString(l.Title), l.RecruitCount,
		nullInt(l.RentCostMin), nullInt(l.RentCostMax), nullInt(l.MonthlyCostMin), nullInt(l.MonthlyCostMax),
		nullString(string(l.PreferredGender)), nullString(string(l.PreferredLifestyle)), nullString(string(l.PreferredPersonality)),
		l.IsSmoking, l.IsSnoring, l.IsPetAllowed,
		nullInt(l.CohabitantCount), nullInt(l.PreferredAgeMin), nullInt(l.PreferredAgeMax),
		l.HasRoom, nullString(l.Address), nullFloat(l.RegionLatitude), nullFloat(l.RegionLongitude),
		string(l.Status), createdAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %d: %w", l.ID, err)
	}
	return nil
}

// GetOpenListings returns every listing currently recruiting, ordered by id.
func (db *DB) GetOpenListings(ctx context.Context) (listings []recommend.Listing, err error) {
	start := time.Now()
	defer func() { observe("get_open_listings", start, err) }()

	where, args := query.NewWhereBuilder().
		AddClause("recruit_status = ?", string(recommend.StatusRecruiting)).
		Build()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM recruit_post WHERE `+where+` ORDER BY recruit_post_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open listings: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	listings = make([]recommend.Listing, 0, 64)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}
	return listings, nil
}

// CountListings returns the number of listings, by status when status is
// non-empty.
func (db *DB) CountListings(ctx context.Context, status recommend.ListingStatus) (n int64, err error) {
	start := time.Now()
	defer func() { observe("count_listings", start, err) }()

	wb := query.NewWhereBuilder()
	if status != "" {
		wb.AddClause("recruit_status = ?", string(status))
	}
	where, args := wb.Build()
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recruit_post WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

func scanListing(row scanner) (*recommend.Listing, error) {
	var l recommend.Listing
	var rentMin, rentMax, monthlyMin, monthlyMax sql.NullInt64
	var title, prefGender, prefLifestyle, prefPersonality, address sql.NullString
	var cohabitants, ageMin, ageMax sql.NullInt64
	var lat, lon sql.NullFloat64
	var status string
	var updatedAt sql.NullTime

	err := row.Scan(
		&l.ID, &l.AuthorID, &title, &l.RecruitCount,
		&rentMin, &rentMax, &monthlyMin, &monthlyMax,
		&prefGender, &prefLifestyle, &prefPersonality,
		&l.IsSmoking, &l.IsSnoring, &l.IsPetAllowed,
		&cohabitants, &ageMin, &ageMax,
		&l.HasRoom, &address, &lat, &lon,
		&status, &l.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Title = title.String
	l.RentCostMin = intFromNull(rentMin)
	l.RentCostMax = intFromNull(rentMax)
	l.MonthlyCostMin = intFromNull(monthlyMin)
	l.MonthlyCostMax = intFromNull(monthlyMax)
	l.PreferredGender = recommend.Gender(prefGender.String)
	l.PreferredLifestyle = recommend.Lifestyle(prefLifestyle.String)
	l.PreferredPersonality = recommend.Personality(prefPersonality.String)
	l.CohabitantCount = intFromNull(cohabitants)
	l.PreferredAgeMin = intFromNull(ageMin)
	l.PreferredAgeMax = intFromNull(ageMax)
	l.Address = address.String
	l.RegionLatitude = floatFromNull(lat)
	l.RegionLongitude = floatFromNull(lon)
	l.Status = recommend.ListingStatus(status)
	if updatedAt.Valid {
		t := updatedAt.Time
		l.UpdatedAt = &t
	}
	return &l, nil
}
