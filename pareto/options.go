// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"fmt"
	"runtime"
)

// Dominance selects the relation used to rank cover sets.
type Dominance int

const (
	// DominanceCoverage ranks by coverage inclusion first: A dominates B when
	// A covers a strict superset of B's endorsers, or the same endorsers with
	// fewer proposals.
	DominanceCoverage Dominance = iota

	// DominanceTradeoff requires A to cover at least B's endorsers with no
	// more proposals, strictly better in one of the two. The frontier is the
	// full size/coverage trade-off curve.
	DominanceTradeoff
)

func (d Dominance) String() string {
	switch d {
	case DominanceCoverage:
		return "coverage"
	case DominanceTradeoff:
		return "tradeoff"
	default:
		return fmt.Sprintf("Dominance(%d)", int(d))
	}
}

// ParseDominance parses "coverage" or "tradeoff". An empty string selects
// DominanceCoverage.
func ParseDominance(s string) (Dominance, error) {
	switch s {
	case "", "coverage":
		return DominanceCoverage, nil
	case "tradeoff":
		return DominanceTradeoff, nil
	default:
		return 0, fmt.Errorf("unknown dominance mode %q", s)
	}
}

// DefaultMaxCandidates bounds the enumerated cover set space when
// Options.MaxCandidates is zero.
const DefaultMaxCandidates = 50000

// Options tunes the frontier computation. The zero value is usable.
type Options struct {
	// MaxCoverSize caps the number of proposals in a cover set.
	// Zero means the number of distinct endorsers in the snapshot.
	MaxCoverSize int

	// MaxCandidates caps the number of enumerated cover sets. Exceeding it
	// fails with a ResourceLimitError.
	MaxCandidates int

	Dominance Dominance

	// Workers bounds parallel frontier recomputations in KeyPlayers and
	// EndorserEffects. Zero means GOMAXPROCS.
	Workers int

	// TopK restricts KeyPlayers to the k endorsers with the most votes.
	// Zero analyzes every endorser.
	TopK int
}

func (o Options) maxCoverSize(s *Snapshot) int {
	if o.MaxCoverSize > 0 {
		return o.MaxCoverSize
	}
	return s.EndorserCount()
}

func (o Options) maxCandidates() int {
	if o.MaxCandidates > 0 {
		return o.MaxCandidates
	}
	return DefaultMaxCandidates
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
