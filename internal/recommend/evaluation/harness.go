// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/phase"
	"github.com/tomtom215/roomie/internal/recommend"
)

// ErrInconclusive is phase.ErrInconclusive, re-exported for callers that
// only import this package.
var ErrInconclusive = phase.ErrInconclusive

// Feed supplies the historical interaction feed.
type Feed interface {
	Interactions(ctx context.Context) ([]Interaction, error)
}

// Recommender is the part of recommend.Engine the harness drives.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// Config configures the harness.
type Config struct {
	// K is the cutoff of every metric. Default: 10.
	K int `json:"k"`
	// RelevanceThreshold marks test interactions as relevant. Default: 4.0.
	RelevanceThreshold float64 `json:"relevance_threshold"`
	// MinUsers is the smallest evaluated-user count that yields a result.
	// Default: 5.
	MinUsers int         `json:"min_users"`
	Split    SplitConfig `json:"split"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		K:                  10,
		RelevanceThreshold: 4.0,
		MinUsers:           5,
		Split: SplitConfig{
			Strategy:     SplitRandom,
			TestFraction: 0.2,
			Seed:         42,
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("k must be positive, got %d", c.K)
	}
	if c.MinUsers < 1 {
		return fmt.Errorf("min_users must be positive, got %d", c.MinUsers)
	}
	return c.Split.Validate()
}

// UserResult holds the metrics of one evaluated user.
type UserResult struct {
	UserID    int64   `json:"user_id"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	Relevant  int     `json:"relevant"`
	Returned  int     `json:"returned"`
}

// Report is the full outcome of one evaluation.
type Report struct {
	Phase    phase.Phase      `json:"phase"`
	Summary  phase.Evaluation `json:"summary"`
	Users    []UserResult     `json:"users"`
	Skipped  []int64          `json:"skipped"`
	Duration time.Duration    `json:"duration"`
}

// Harness evaluates the engine offline. It implements phase.Evaluator.
type Harness struct {
	cfg    Config
	feed   Feed
	rec    Recommender
	logger zerolog.Logger
}

var _ phase.Evaluator = (*Harness)(nil)

// NewHarness creates a harness.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHarness(cfg Config, feed Feed, rec Recommender, logger zerolog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluation config: %w", err)
	}
	if feed == nil || rec == nil {
		return nil, errors.New("evaluation harness requires a feed and a recommender")
	}
	return &Harness{
		cfg:    cfg,
		feed:   feed,
		rec:    rec,
		logger: logger.With().Str("component", "evaluation").Logger(),
	}, nil
}

// Evaluate implements phase.Evaluator.
func (h *Harness) Evaluate(ctx context.Context, p phase.Phase) (phase.Evaluation, error) {
	r, err := h.Run(ctx, p)
	if err != nil {
		return phase.Evaluation{}, err
	}
	return r.Summary, nil
}

// Run evaluates phase p and returns the per-user breakdown. Users whose
// request fails on their own data are skipped. Any other error, such as an
// unavailable listing store, aborts the run.
func (h *Harness) Run(ctx context.Context, p phase.Phase) (*Report, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("evaluate invalid phase %s", p)
	}
	start := time.Now()

	interactions, err := h.feed.Interactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction feed: %w", err)
	}
	train, test := Split(interactions, h.cfg.Split)

	seen := make(map[int64]Set)
	catalog := make(Set)
	for _, in := range train {
		if seen[in.UserID] == nil {
			seen[in.UserID] = make(Set)
		}
		seen[in.UserID][in.ListingID] = struct{}{}
		catalog[in.ListingID] = struct{}{}
	}
	relevant := make(map[int64]Set)
	for _, in := range test {
		if in.Rating < h.cfg.RelevanceThreshold {
			continue
		}
		if relevant[in.UserID] == nil {
			relevant[in.UserID] = make(Set)
		}
		relevant[in.UserID][in.ListingID] = struct{}{}
	}

	if len(relevant) < h.cfg.MinUsers {
		return nil, fmt.Errorf("%w: %d users with relevant test interactions, need %d",
			ErrInconclusive, len(relevant), h.cfg.MinUsers)
	}

	users := make([]int64, 0, len(relevant))
	for u := range relevant {
		users = append(users, u)
	}
	slices.Sort(users)

	report := &Report{Phase: p, Users: make([]UserResult, 0, len(users))}
	recommended := make(Set)
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exclude := seen[u]
		if exclude == nil {
			exclude = make(Set)
		}
		resp, err := h.rec.Recommend(ctx, recommend.Request{
			UserID:    u,
			Limit:     h.cfg.K,
			Phase:     p,
			Exclude:   exclude,
			RequestID: fmt.Sprintf("eval-%s-%d", p, u),
		})
		if err != nil {
			if !isUserFailure(err) {
				return nil, fmt.Errorf("recommend for user %d under %s: %w", u, p, err)
			}
			report.Skipped = append(report.Skipped, u)
			h.logger.Warn().Err(err).Int64("user_id", u).Str("phase", p.String()).Msg("skipping user in evaluation")
			continue
		}

		ids := make([]int64, len(resp.Recommendations))
		for i, item := range resp.Recommendations {
			ids[i] = item.Listing.ID
			recommended[item.Listing.ID] = struct{}{}
		}
		rel := relevant[u]
		report.Users = append(report.Users, UserResult{
			UserID:    u,
			Precision: PrecisionAtK(ids, rel, h.cfg.K),
			Recall:    RecallAtK(ids, rel, h.cfg.K),
			NDCG:      NDCGAtK(ids, rel, h.cfg.K),
			Relevant:  len(rel),
			Returned:  len(ids),
		})
	}

	report.Duration = time.Since(start)
	if len(report.Users) < h.cfg.MinUsers {
		return nil, fmt.Errorf("%w: %d users evaluated (%d skipped), need %d",
			ErrInconclusive, len(report.Users), len(report.Skipped), h.cfg.MinUsers)
	}

	report.Summary = summarize(report.Users)
	report.Summary.SkippedUsers = len(report.Skipped)
	report.Summary.Coverage = Coverage(recommended, catalog)
	return report, nil
}

// isUserFailure reports whether err concerns a single user rather than a
// shared data source.
func isUserFailure(err error) bool {
	return errors.Is(err, recommend.ErrRequesterNotFound) ||
		errors.Is(err, recommend.ErrInvalidRequest) ||
		errors.Is(err, recommend.ErrDimensionMismatch)
}

func summarize(users []UserResult) phase.Evaluation {
	var e phase.Evaluation
	for _, u := range users {
		e.Precision += u.Precision
		e.Recall += u.Recall
		e.NDCG += u.NDCG
	}
	n := float64(len(users))
	e.Precision /= n
	e.Recall /= n
	e.NDCG /= n
	e.EvaluatedUsers = len(users)
	return e
}
