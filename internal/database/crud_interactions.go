// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/roomie/internal/models"
	"github.com/tomtom215/roomie/internal/recommend/evaluation"
)

// MatchStatusRatings maps application outcomes to implicit ratings on the
// 1..5 scale. Applications whose status is absent here are left out of the
// interaction feed.
var MatchStatusRatings = map[models.MatchStatus]float64{
	models.MatchStatusMatched:  5,
	models.MatchStatusMatching: 4,
	models.MatchStatusOnWait:   3,
	models.MatchStatusRejected: 1,
}

// BookmarkRating is the implicit rating of a bookmark.
const BookmarkRating = 4.0

// InsertApplyRecord inserts or replaces an application.
func (db *DB) InsertApplyRecord(ctx context.Context, r *models.ApplyRecord) (err error) {
	start := time.Now()
	defer func() { observe("insert_apply_record", start, err) }()

	if !r.MatchStatus.Valid() {
		return fmt.Errorf("apply record %d: unknown match status %q", r.ID, r.MatchStatus)
	}
	submitted := r.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO apply_record
		(record_id, member_id, recruit_post_id, match_status, submitted_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.MemberID, r.ListingID, string(r.MatchStatus), submitted)
	if err != nil {
		return fmt.Errorf("failed to insert apply record %d: %w", r.ID, err)
	}
	return nil
}

// InsertBookmark inserts or replaces a bookmark.
func (db *DB) InsertBookmark(ctx context.Context, b *models.Bookmark) (err error) {
	start := time.Now()
	defer func() { observe("insert_bookmark", start, err) }()

	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO bookmark
		(bookmark_id, member_id, recruit_post_id, created_at)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.MemberID, b.ListingID, created)
	if err != nil {
		return fmt.Errorf("failed to insert bookmark %d: %w", b.ID, err)
	}
	return nil
}

// GetActedListingIDs returns the listings the member bookmarked or applied
// to, ascending and without duplicates.
func (db *DB) GetActedListingIDs(ctx context.Context, memberID int64) (ids []int64, err error) {
	start := time.Now()
	defer func() { observe("get_acted_listings", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT recruit_post_id FROM bookmark WHERE member_id = ?
		UNION
		SELECT recruit_post_id FROM apply_record WHERE member_id = ?
		ORDER BY recruit_post_id`, memberID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query acted listings: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	ids = make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acted listings: %w", err)
	}
	return ids, nil
}

// CountInteractions returns the number of applications plus bookmarks.
func (db *DB) CountInteractions(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { observe("count_interactions", start, err) }()

	err = db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM apply_record) + (SELECT COUNT(*) FROM bookmark)`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return n, nil
}

// Interactions returns the implicit-rating feed used for offline
// evaluation. Each (member, listing) pair appears once, keeping its most
// recent interaction; a bookmark wins a timestamp tie with an application.
func (db *DB) Interactions(ctx context.Context) (out []evaluation.Interaction, err error) {
	start := time.Now()
	defer func() { observe("interactions", start, err) }()

	ratingExpr, args := matchStatusCase()
	args = append(args, BookmarkRating)

	q := `WITH feed AS (
			SELECT member_id AS user_id, recruit_post_id AS listing_id,
				` + ratingExpr + ` AS rating, submitted_at AS occurred_at, 0 AS source
			FROM apply_record
			UNION ALL
			SELECT member_id, recruit_post_id, CAST(? AS DOUBLE), created_at, 1
			FROM bookmark
		)
		SELECT user_id, listing_id, rating, occurred_at
		FROM feed
		WHERE rating IS NOT NULL
		QUALIFY ROW_NUMBER() OVER (PARTITION BY user_id, listing_id ORDER BY occurred_at DESC, source DESC) = 1
		ORDER BY user_id, listing_id`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	out = make([]evaluation.Interaction, 0, 256)
	for rows.Next() {
		var it evaluation.Interaction
		if err := rows.Scan(&it.UserID, &it.ListingID, &it.Rating, &it.At); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}
	return out, nil
}

// matchStatusCase renders MatchStatusRatings as a CASE expression over
// match_status. Statuses are emitted in sorted order so the statement text
// is stable.
func matchStatusCase() (string, []any) {
	statuses := make([]string, 0, len(MatchStatusRatings))
	for s := range MatchStatusRatings {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	var b strings.Builder
	args := make([]any, 0, len(statuses)*2)
	b.WriteString("CASE match_status")
	for _, s := range statuses {
		b.WriteString(" WHEN ? THEN CAST(? AS DOUBLE)")
		args = append(args, s, MatchStatusRatings[models.MatchStatus(s)])
	}
	b.WriteString(" ELSE NULL END")
	return b.String(), args
}
