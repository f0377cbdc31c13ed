// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/quickly-consensus/cliparse"
	"github.com/danielhkuo/quickly-consensus/pareto"
)

// Kind names an analysis.
type Kind string

const (
	KindFrontier  Kind = "pareto"
	KindKeyPlayer Kind = "key_players"
	KindEffects   Kind = "endorser_effects"
	KindRelations Kind = "proposal_relations"
)

// Limits bounds the snapshot size accepted by the recompute-heavy analyses
// (key players and endorser effects). Zero disables a bound.
type Limits struct {
	MaxProposals int
	MaxEndorsers int
}

type Config struct {
	Options pareto.Options
	Limits  Limits

	// Workers bounds analyses running at the same time. Zero means GOMAXPROCS.
	Workers int
	// CacheSize is the number of results kept, keyed by snapshot fingerprint.
	// Zero disables caching.
	CacheSize int
	// Timeout bounds one analysis. Zero means no timeout.
	Timeout time.Duration
}

// ConfigFrom maps command-line configuration onto a service Config.
func ConfigFrom(cfg cliparse.Config) Config {
	return Config{
		Options: pareto.Options{
			MaxCoverSize:  cfg.MaxCoverSize,
			MaxCandidates: cfg.MaxCandidates,
			Dominance:     cfg.Dominance,
		},
		Limits: Limits{
			MaxProposals: cfg.MaxProposals,
			MaxEndorsers: cfg.MaxEndorsers,
		},
		Workers:   cfg.AnalysisWorkers,
		CacheSize: cfg.CacheSize,
		Timeout:   cfg.AnalysisTimeout,
	}
}

// Service runs analyses on a bounded worker pool and caches results by
// snapshot content.
type Service struct {
	opts    pareto.Options
	limits  Limits
	timeout time.Duration
	pool    *workerpool.WorkerPool
	cache   *lru.Cache[string, any]
	metrics *Metrics
}

// NewService starts the worker pool and registers metrics with reg.
func NewService(cfg Config, reg prometheus.Registerer) (*Service, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &Service{
		opts:    cfg.Options,
		limits:  cfg.Limits,
		timeout: cfg.Timeout,
		pool:    workerpool.New(workers),
		metrics: NewMetrics(reg),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, any](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close waits for running analyses and stops the worker pool.
func (s *Service) Close() {
	s.pool.StopWait()
}

// Dominance is the dominance mode every frontier is computed with.
func (s *Service) Dominance() pareto.Dominance {
	return s.opts.Dominance
}

// Frontier returns the non-dominated cover sets of the snapshot.
func (s *Service) Frontier(ctx context.Context, snap *pareto.Snapshot) ([]pareto.CoverSet, error) {
	v, err := s.run(ctx, KindFrontier, snap, "", func(ctx context.Context) (any, error) {
		return pareto.Frontier(ctx, snap, s.opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]pareto.CoverSet), nil
}

// KeyPlayers ranks endorsers by pivotality. topK > 0 restricts the analysis
// to the endorsers with the most votes.
func (s *Service) KeyPlayers(ctx context.Context, snap *pareto.Snapshot, topK int) ([]pareto.KeyPlayer, error) {
	if err := s.checkLimits(KindKeyPlayer, snap); err != nil {
		return nil, err
	}
	opts := s.opts
	opts.TopK = topK
	v, err := s.run(ctx, KindKeyPlayer, snap, fmt.Sprintf("top=%d", topK), func(ctx context.Context) (any, error) {
		return pareto.KeyPlayers(ctx, snap, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]pareto.KeyPlayer), nil
}

// EndorserEffects reports single-endorsement flips that change frontier
// membership.
func (s *Service) EndorserEffects(ctx context.Context, snap *pareto.Snapshot) ([]pareto.EndorserEffect, error) {
	if err := s.checkLimits(KindEffects, snap); err != nil {
		return nil, err
	}
	v, err := s.run(ctx, KindEffects, snap, "", func(ctx context.Context) (any, error) {
		return pareto.EndorserEffects(ctx, snap, s.opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]pareto.EndorserEffect), nil
}

// Relations classifies every proposal pair.
func (s *Service) Relations(ctx context.Context, snap *pareto.Snapshot) (*pareto.Relations, error) {
	v, err := s.run(ctx, KindRelations, snap, "", func(context.Context) (any, error) {
		return pareto.ProposalRelations(snap), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pareto.Relations), nil
}

func (s *Service) checkLimits(kind Kind, snap *pareto.Snapshot) error {
	var err error
	switch {
	case s.limits.MaxProposals > 0 && snap.Len() > s.limits.MaxProposals:
		err = &pareto.ResourceLimitError{Resource: "proposals", Limit: s.limits.MaxProposals, Actual: snap.Len()}
	case s.limits.MaxEndorsers > 0 && snap.EndorserCount() > s.limits.MaxEndorsers:
		err = &pareto.ResourceLimitError{Resource: "endorsers", Limit: s.limits.MaxEndorsers, Actual: snap.EndorserCount()}
	}
	if err != nil {
		s.metrics.reject(kind, "limit")
	}
	return err
}

type result struct {
	value any
	err   error
}

// run executes fn on the worker pool. If ctx ends first the computation is
// abandoned and its result discarded.
func (s *Service) run(ctx context.Context, kind Kind, snap *pareto.Snapshot, variant string, fn func(context.Context) (any, error)) (any, error) {
	key := string(kind) + ":" + snap.Fingerprint() + ":" + variant
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.hit(kind)
			return v, nil
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	start := time.Now()
	done := make(chan result, 1)
	s.pool.Submit(func() {
		if err := ctx.Err(); err != nil {
			done <- result{err: err}
			return
		}
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	})

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	elapsed := time.Since(start)
	if res.err != nil {
		s.metrics.reject(kind, reason(res.err))
		slog.Warn("analysis failed",
			"analysis", kind,
			"run_id", runID,
			"proposals", snap.Len(),
			"endorsers", snap.EndorserCount(),
			"error", res.err,
		)
		return nil, res.err
	}

	s.metrics.observe(kind, elapsed)
	slog.Info("analysis completed",
		"analysis", kind,
		"run_id", runID,
		"proposals", snap.Len(),
		"endorsers", snap.EndorserCount(),
		"duration_ms", elapsed.Milliseconds(),
	)
	if s.cache != nil {
		s.cache.Add(key, res.value)
	}
	return res.value, nil
}

func reason(err error) string {
	var lerr *pareto.ResourceLimitError
	var verr *pareto.ValidationError
	switch {
	case errors.As(err, &lerr):
		return "limit"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
