// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package analysis runs pareto analyses for request handlers.

# Service

A Service wraps the pure functions of package pareto with the concerns a
server needs:

  - a bounded worker pool so heavy analyses cannot starve the server
  - size limits for key players and endorser effects
  - an LRU cache keyed by snapshot fingerprint
  - Prometheus metrics and structured logs per run

Typical use:

	svc, err := analysis.NewService(analysis.Config{
		Options:   pareto.Options{MaxCandidates: 50000},
		Limits:    analysis.Limits{MaxProposals: 40, MaxEndorsers: 200},
		Workers:   4,
		CacheSize: 256,
		Timeout:   10 * time.Second,
	}, prometheus.DefaultRegisterer)
	defer svc.Close()

	frontier, err := svc.Frontier(ctx, snap)

# Cancellation

If the request context ends before an analysis finishes, the Service
returns the context error right away and the pool drops the result when
it arrives. Key players and endorser effects also stop scheduling
recomputations.

# Metrics

  - consensus_analysis_duration_seconds{analysis}
  - consensus_analysis_rejected_total{analysis,reason}
  - consensus_analysis_cache_hits_total{analysis}
*/
package analysis
