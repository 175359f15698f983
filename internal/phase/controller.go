// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package phase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/roomie/internal/metrics"
)

var (
	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("phase controller run already in progress")

	// ErrInconclusive signals that too few users could be evaluated to
	// produce a trustworthy average. Controllers treat it as a hold.
	ErrInconclusive = errors.New("evaluation inconclusive")
)

// Evaluation is the aggregate retrieval quality of one phase.
type Evaluation struct {
	Precision      float64 `json:"precision_at_10"`
	Recall         float64 `json:"recall_at_10"`
	NDCG           float64 `json:"ndcg_at_10"`
	Coverage       float64 `json:"coverage"`
	EvaluatedUsers int     `json:"evaluated_users"`
	SkippedUsers   int     `json:"skipped_users"`
}

// Evaluator measures the recommendation quality the engine would deliver
// if it ran under phase p.
type Evaluator interface {
	Evaluate(ctx context.Context, p Phase) (Evaluation, error)
}

// InteractionCounter reports the cumulative number of user interactions.
type InteractionCounter interface {
	CountInteractions(ctx context.Context) (int64, error)
}

// DecisionPublisher announces persisted decisions to other processes.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, d Decision) error
}

// Outcome classifies a controller run.
type Outcome string

const (
	OutcomePromote      Outcome = "promote"
	OutcomeHold         Outcome = "hold"
	OutcomeInconclusive Outcome = "inconclusive"
	// OutcomeSkipped means the policy's gate was not met and nothing was evaluated.
	OutcomeSkipped Outcome = "skipped"
)

// PhaseEvaluation pairs an evaluated phase with its new history record.
type PhaseEvaluation struct {
	Phase  Phase            `json:"phase"`
	Record EvaluationRecord `json:"record"`
}

// Decision is the result of one controller run.
type Decision struct {
	ID               string            `json:"id"`
	Policy           string            `json:"policy"`
	Outcome          Outcome           `json:"outcome"`
	From             Phase             `json:"from"`
	To               Phase             `json:"to"`
	InteractionCount int64             `json:"interaction_count"`
	CurrentScore     float64           `json:"current_score,omitempty"`
	NextScore        float64           `json:"next_score,omitempty"`
	ImprovementRatio float64           `json:"improvement_ratio,omitempty"`
	Evaluations      []PhaseEvaluation `json:"evaluations,omitempty"`
	Reason           string            `json:"reason"`
	DecidedAt        time.Time         `json:"decided_at"`
}

// Promoted reports whether the decision moved the phase forward.
func (d Decision) Promoted() bool {
	return d.To > d.From
}

// Policy decides the target phase for a loaded state and a fresh
// interaction count. Policies never write state themselves.
type Policy interface {
	Name() string
	Decide(ctx context.Context, st *State, count int64, now time.Time) (Decision, error)
}

// Policy names accepted by NewPolicy.
const (
	PolicyEvaluation = "evaluation"
	PolicyThreshold  = "threshold"
)

// NewPolicy builds the policy selected by name. The evaluator is only
// required by the evaluation policy.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPolicy(name string, evaluator Evaluator, logger zerolog.Logger) (Policy, error) {
	switch name {
	case PolicyEvaluation:
		if evaluator == nil {
			return nil, errors.New("evaluation policy requires an evaluator")
		}
		return NewEvaluationPolicy(evaluator, logger), nil
	case PolicyThreshold:
		return ThresholdPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown phase policy %q (want %q or %q)", name, PolicyEvaluation, PolicyThreshold)
	}
}

// CompositeScore weights precision, recall and NDCG into one number.
func CompositeScore(w MetricWeights, e Evaluation) float64 {
	return w.PrecisionAt10.Weight*e.Precision +
		w.RecallAt10.Weight*e.Recall +
		w.NDCGAt10.Weight*e.NDCG
}

// ImprovementRatio returns next/current, or 0 when current is not positive.
func ImprovementRatio(current, next float64) float64 {
	if current <= 0 {
		return 0
	}
	return next / current
}

// ShouldPromote applies the hysteresis gate.
func ShouldPromote(ratio, minRatio float64) bool {
	return ratio >= minRatio
}

// record converts an evaluation into a history entry.
func record(e Evaluation, w MetricWeights, now time.Time, count int64) EvaluationRecord {
	return EvaluationRecord{
		LastEvaluated:          now,
		PrecisionAt10:          e.Precision,
		RecallAt10:             e.Recall,
		NDCGAt10:               e.NDCG,
		Coverage:               e.Coverage,
		CompositeScore:         CompositeScore(w, e),
		EvaluatedUsers:         e.EvaluatedUsers,
		InteractionCountAtEval: count,
	}
}

// EvaluationPolicy promotes only when the next phase measurably beats the
// current one on held-out interactions.
type EvaluationPolicy struct {
	evaluator Evaluator
	logger    zerolog.Logger
}

// NewEvaluationPolicy creates an evaluation-driven policy.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEvaluationPolicy(evaluator Evaluator, logger zerolog.Logger) *EvaluationPolicy {
	return &EvaluationPolicy{
		evaluator: evaluator,
		logger:    logger.With().Str("component", "phase-policy").Str("policy", PolicyEvaluation).Logger(),
	}
}

// Name implements Policy.
func (p *EvaluationPolicy) Name() string { return PolicyEvaluation }

// Gate reports whether an evaluation is due, and why not when it isn't.
// An evaluation is due once auto transition is enabled, the count reached
// the P2 threshold, and the count crossed a new evaluation-interval milestone
// since the persisted count.
func (p *EvaluationPolicy) Gate(st *State, count int64) (bool, string) {
	s := st.Phase
	if !s.AutoTransitionEnabled {
		return false, "auto transition disabled"
	}
	if count < s.Thresholds.P2.Min {
		return false, fmt.Sprintf("interaction count %d below P2 threshold %d", count, s.Thresholds.P2.Min)
	}
	interval := s.TransitionCriteria.EvaluationInterval
	if count/interval <= s.InteractionCount/interval {
		return false, fmt.Sprintf("no new evaluation milestone (interval %d, last count %d)", interval, s.InteractionCount)
	}
	return true, ""
}

// Decide implements Policy.
func (p *EvaluationPolicy) Decide(ctx context.Context, st *State, count int64, now time.Time) (Decision, error) {
	current := st.Phase.Current
	d := Decision{From: current, To: current, Outcome: OutcomeSkipped}

	if ok, reason := p.Gate(st, count); !ok {
		d.Reason = reason
		return d, nil
	}

	criteria := st.Phase.TransitionCriteria
	curEval, err := p.evaluate(ctx, current)
	if errors.Is(err, ErrInconclusive) {
		d.Outcome = OutcomeInconclusive
		d.Reason = fmt.Sprintf("%s: %v", current, err)
		return d, nil
	}
	if err != nil {
		return Decision{}, err
	}
	curRec := record(curEval, criteria.Metrics, now, count)
	d.Evaluations = append(d.Evaluations, PhaseEvaluation{Phase: current, Record: curRec})
	d.CurrentScore = curRec.CompositeScore
	d.Outcome = OutcomeHold

	next, ok := current.Next()
	if !ok {
		d.Reason = "already at top phase"
		return d, nil
	}

	nextEval, err := p.evaluate(ctx, next)
	if errors.Is(err, ErrInconclusive) {
		d.Outcome = OutcomeInconclusive
		d.Reason = fmt.Sprintf("%s: %v", next, err)
		return d, nil
	}
	if err != nil {
		return Decision{}, err
	}
	nextRec := record(nextEval, criteria.Metrics, now, count)
	d.Evaluations = append(d.Evaluations, PhaseEvaluation{Phase: next, Record: nextRec})
	d.NextScore = nextRec.CompositeScore
	d.ImprovementRatio = ImprovementRatio(d.CurrentScore, d.NextScore)

	if ShouldPromote(d.ImprovementRatio, criteria.MinImprovementRatio) {
		d.To = next
		d.Outcome = OutcomePromote
		d.Reason = fmt.Sprintf("improvement ratio %.3f >= %.3f", d.ImprovementRatio, criteria.MinImprovementRatio)
	} else {
		d.Reason = fmt.Sprintf("improvement ratio %.3f < %.3f", d.ImprovementRatio, criteria.MinImprovementRatio)
	}
	return d, nil
}

func (p *EvaluationPolicy) evaluate(ctx context.Context, ph Phase) (Evaluation, error) {
	start := time.Now()
	e, err := p.evaluator.Evaluate(ctx, ph)
	metrics.RecordPhaseEvaluation(ph.String(), time.Since(start), e.SkippedUsers)
	if err != nil {
		if !errors.Is(err, ErrInconclusive) {
			err = fmt.Errorf("evaluate %s: %w", ph, err)
		}
		return Evaluation{}, err
	}

	p.logger.Info().
		Str("phase", ph.String()).
		Float64("precision_at_10", e.Precision).
		Float64("recall_at_10", e.Recall).
		Float64("ndcg_at_10", e.NDCG).
		Float64("coverage", e.Coverage).
		Int("evaluated_users", e.EvaluatedUsers).
		Int("skipped_users", e.SkippedUsers).
		Msg("phase evaluated")
	return e, nil
}

// ThresholdPolicy maps interaction-count milestones straight to phases.
type ThresholdPolicy struct{}

// Name implements Policy.
func (ThresholdPolicy) Name() string { return PolicyThreshold }

// Decide implements Policy.
func (ThresholdPolicy) Decide(_ context.Context, st *State, count int64, _ time.Time) (Decision, error) {
	current := st.Phase.Current
	target := st.Phase.Thresholds.PhaseForCount(count)
	d := Decision{From: current, To: current, Outcome: OutcomeHold}

	switch {
	case target > current:
		d.To = target
		d.Outcome = OutcomePromote
		d.Reason = fmt.Sprintf("interaction count %d reached %s threshold %d", count, target, st.Phase.Thresholds.MinFor(target))
	case target < current:
		// Reported for the controller's guard to suppress.
		d.To = target
		d.Reason = fmt.Sprintf("interaction count %d maps to %s", count, target)
	default:
		d.Reason = fmt.Sprintf("interaction count %d keeps %s", count, current)
	}
	return d, nil
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Store   Store
	Counter InteractionCounter
	Policy  Policy
	// Publisher is optional.
	Publisher DecisionPublisher
	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller runs the active policy against the persisted phase state.
// It is the only writer of that state.
type Controller struct {
	store     Store
	counter   InteractionCounter
	policy    Policy
	publisher DecisionPublisher
	now       func() time.Time
	logger    zerolog.Logger

	running atomic.Bool
}

// NewController validates cfg and returns a controller.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewController(cfg ControllerConfig, logger zerolog.Logger) (*Controller, error) {
	if cfg.Store == nil {
		return nil, errors.New("phase controller requires a store")
	}
	if cfg.Counter == nil {
		return nil, errors.New("phase controller requires an interaction counter")
	}
	if cfg.Policy == nil {
		return nil, errors.New("phase controller requires a policy")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:     cfg.Store,
		counter:   cfg.Counter,
		policy:    cfg.Policy,
		publisher: cfg.Publisher,
		now:       now,
		logger:    logger.With().Str("component", "phase-controller").Str("policy", cfg.Policy.Name()).Logger(),
	}, nil
}

// Policy returns the active policy name.
func (c *Controller) Policy() string {
	return c.policy.Name()
}

// Running reports whether a run is in progress.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Run performs one serial controller pass: count interactions, let the
// policy decide, and persist the decision with any new evaluation records.
// On error the persisted state is left untouched.
func (c *Controller) Run(ctx context.Context) (Decision, error) {
	if !c.running.CompareAndSwap(false, true) {
		return Decision{}, ErrRunInProgress
	}
	defer c.running.Store(false)

	d, err := c.run(ctx)
	if err != nil {
		metrics.RecordPhaseDecision(c.policy.Name(), "error", 0, 0)
		c.logger.Error().Err(err).Msg("phase controller run failed, state unchanged")
		return Decision{}, err
	}
	metrics.RecordPhaseDecision(c.policy.Name(), string(d.Outcome), int(d.To), d.InteractionCount)
	return d, nil
}

func (c *Controller) run(ctx context.Context) (Decision, error) {
	count, err := c.counter.CountInteractions(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("count interactions: %w", err)
	}

	st, err := c.store.Load(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("load phase state: %w", err)
	}

	now := c.now()
	d, err := c.policy.Decide(ctx, st, count, now)
	if err != nil {
		return Decision{}, err
	}

	d.ID = uuid.New().String()
	d.Policy = c.policy.Name()
	d.InteractionCount = count
	d.DecidedAt = now
	d.From = st.Phase.Current

	if !d.To.Valid() || d.To < d.From {
		c.logger.Warn().
			Str("from", d.From.String()).
			Str("proposed", d.To.String()).
			Msg("downgrade suppressed")
		d.To = d.From
		if d.Outcome == OutcomePromote {
			d.Outcome = OutcomeHold
		}
	}

	for _, ev := range d.Evaluations {
		st.Phase.EvaluationHistory.Set(ev.Phase, ev.Record)
	}
	st.Phase.Current = d.To
	st.Phase.InteractionCount = count
	st.LastUpdated = now

	if err := c.store.Save(ctx, st); err != nil {
		return Decision{}, fmt.Errorf("save phase state: %w", err)
	}

	c.logger.Info().
		Str("decision_id", d.ID).
		Str("outcome", string(d.Outcome)).
		Str("from", d.From.String()).
		Str("to", d.To.String()).
		Int64("interaction_count", count).
		Float64("improvement_ratio", d.ImprovementRatio).
		Str("reason", d.Reason).
		Msg("phase decision persisted")

	if c.publisher != nil {
		if err := c.publisher.PublishDecision(ctx, d); err != nil {
			c.logger.Warn().Err(err).Str("decision_id", d.ID).Msg("failed to publish phase decision")
		}
	}
	return d, nil
}
