// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/metrics"
	"github.com/tomtom215/roomie/internal/phase"
)

// Note: This package depends only on phase and metrics. The DataProvider
// and ModelSource interfaces let the database and mf packages plug in
// without circular imports.

// Engine serves phase-aware recommendations. It is safe for concurrent use;
// each request works on its own snapshot of the phase state.
type Engine struct {
	config *Config
	logger zerolog.Logger

	data   DataProvider
	phases phase.Store
	models ModelSource

	filter    *CandidateFilter
	scorer    *Scorer
	explainer *Explainer
	guard     *GuardedPredictor
	now       func() time.Time
}

// EngineDeps are the collaborators of an Engine. Models may be nil, in which
// case every request takes the similarity-only path.
type EngineDeps struct {
	Data   DataProvider
	Phases phase.Store
	Models ModelSource
	// Now defaults to time.Now and drives age computation.
	Now func() time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps EngineDeps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Data == nil {
		return nil, errors.New("data provider not set")
	}
	if deps.Phases == nil {
		return nil, errors.New("phase store not set")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	scorer, err := NewScorer(cfg, now)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "recommend").Logger()

	return &Engine{
		config:    cfg,
		logger:    logger,
		data:      deps.Data,
		phases:    deps.Phases,
		models:    deps.Models,
		filter:    NewCandidateFilter(cfg.EligibilityPolicy, now),
		scorer:    scorer,
		explainer: NewExplainer(cfg.Weights),
		guard:     NewGuardedPredictor("learned-model", cfg.Breaker, cfg.PredictionTimeout, logger),
		now:       now,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Recommend returns up to req.Limit ranked listings for req.UserID.
//
// The phase state is loaded once at the start and used for the whole
// request. When the serving phase gives the learned model no weight, is P1,
// or no model artifact is loaded, the similarity scorer's top-N is returned.
// Otherwise both scorers run and their results are blended.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	logger := e.logger.With().Str("request_id", req.RequestID).Int64("user_id", req.UserID).Logger()

	st, err := e.phases.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phase state: %w", err)
	}
	servingPhase := st.Phase.Current
	if req.Phase.Valid() {
		servingPhase = req.Phase
	}
	weights := st.Weights.For(servingPhase)

	resp := &Response{
		UserID:          req.UserID,
		Recommendations: []ScoredListing{},
		Phase:           servingPhase,
		GeneratedAt:     e.now().UTC(),
		Path:            metrics.PathEmpty,
	}

	requester, pool, err := e.eligiblePool(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Candidates = len(pool)
	if len(pool) == 0 {
		logger.Debug().Msg("no eligible candidates")
		e.finish(resp, start)
		return resp, nil
	}

	ranked, err := e.scorer.Rank(requester, pool)
	if err != nil {
		return nil, err
	}
	explainer := e.explainerFor(req)

	model, version, haveModel := e.currentModel()
	useModel := servingPhase != phase.P1 && weights.UsesModel() && haveModel

	if !useModel {
		resp.Recommendations = e.scorer.TopN(requester, ranked, req.Limit, explainer)
		resp.Path = metrics.PathRule
		if weights.UsesModel() && servingPhase != phase.P1 {
			resp.Path = metrics.PathFallback
			logger.Debug().Str("phase", servingPhase.String()).Msg("no learned model loaded, serving similarity results")
		}
		e.finish(resp, start)
		return resp, nil
	}

	resp.ModelVersion = version
	rule := e.scorer.TopN(requester, ranked, req.Limit*2, explainer)

	// Learned-model candidates come from the filtered pool only, so excluded
	// listings can never re-enter through the blend.
	extra := min(e.config.MFCandidateLimit, len(ranked)-len(rule))
	ids := make([]int64, 0, len(rule)+extra)
	for _, item := range rule {
		ids = append(ids, item.Listing.ID)
	}
	byID := make(map[int64]ScoredCandidate, extra)
	for _, sc := range ranked[len(rule) : len(rule)+extra] {
		ids = append(ids, sc.Listing.ID)
		byID[sc.Listing.ID] = sc
	}

	preds := e.guard.PredictAll(ctx, model, req.UserID, ids)
	ratings := FoldPredictions(preds, e.config.DefaultRating)

	materialize := func(id int64, rating float64) (ScoredListing, bool) {
		sc, ok := byID[id]
		if !ok {
			return ScoredListing{}, false
		}
		item := ScoredListing{Listing: sc.Listing}
		if req.IncludeExplanations {
			item.Explanation = LearnedOnly(0, rating)
		}
		return item, true
	}

	resp.Recommendations = Blend(rule, ratings, weights, req.Limit, materialize)
	resp.Path = metrics.PathBlended
	e.finish(resp, start)

	logger.Debug().
		Str("phase", servingPhase.String()).
		Int("candidates", len(pool)).
		Int("predicted", len(ids)).
		Int("returned", len(resp.Recommendations)).
		Msg("blended recommendation complete")
	return resp, nil
}

// prepareRequest applies defaults and generates a request id if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.UserID <= 0 {
		return req, fmt.Errorf("%w: user_id must be positive, got %d", ErrInvalidRequest, req.UserID)
	}
	if req.Limit <= 0 {
		req.Limit = e.config.DefaultLimit
	}
	if req.Limit > e.config.MaxLimit {
		req.Limit = e.config.MaxLimit
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	return req, nil
}

// eligiblePool loads the requester and filters the open listings down to
// the candidates that may be shown.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) eligiblePool(ctx context.Context, req Request) (*Profile, []Candidate, error) {
	requester, err := e.data.GetRequester(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get requester: %w", err)
	}

	exclude := req.Exclude
	if exclude == nil {
		acted, err := e.data.GetActedListingIDs(ctx, req.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("get exclusion set: %w", err)
		}
		exclude = make(map[int64]struct{}, len(acted))
		for _, id := range acted {
			exclude[id] = struct{}{}
		}
	}

	listings, err := e.data.GetOpenListings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get open listings: %w", err)
	}

	authorIDs := make([]int64, 0, len(listings))
	seen := make(map[int64]struct{}, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.AuthorID]; !ok {
			seen[l.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, l.AuthorID)
		}
	}
	authors, err := e.data.GetAuthors(ctx, authorIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get authors: %w", err)
	}

	return requester, e.filter.Filter(requester, listings, authors, exclude), nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) explainerFor(req Request) *Explainer {
	if !req.IncludeExplanations {
		return nil
	}
	return e.explainer
}

func (e *Engine) currentModel() (Predictor, string, bool) {
	if e.models == nil {
		return nil, "", false
	}
	return e.models.Current()
}

func (e *Engine) finish(resp *Response, start time.Time) {
	resp.TotalCount = len(resp.Recommendations)
	metrics.RecordRecommendation(resp.Phase.String(), resp.Path, resp.Candidates, time.Since(start))
}
