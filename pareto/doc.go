// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pareto computes consensus analyses over one question round.

Every function in this package is a pure function of a Snapshot. Nothing
here touches the database, and a Snapshot is never mutated after
construction, so analyses can run concurrently on the same value.

# Snapshots

A Snapshot is built from the round's proposals in order and the endorsers
of each proposal:

	snap, err := pareto.NewSnapshot(
		[]pareto.ProposalID{1, 2, 3},
		map[pareto.ProposalID][]pareto.EndorserID{
			1: {10, 11},
			3: {12},
		},
	)

Round order is used for every deterministic tie-break. Duplicate endorsers
are dropped; a repeated or unknown proposal fails with *ValidationError.

# Cover Sets and the Frontier

A cover set is a group of proposals; its coverage is the union of their
endorsers. The Enumerator produces every singleton, then greedily extends
each candidate by one proposal that adds coverage, up to
Options.MaxCoverSize members.

The Ranker keeps the cover sets that no other candidate dominates:

	frontier, err := pareto.Frontier(ctx, snap, pareto.Options{})

Two dominance modes are available:

  - DominanceCoverage (default): strictly more coverage wins; equal
    coverage with fewer proposals wins
  - DominanceTradeoff: at least the same coverage with no more proposals,
    strictly better in one of them

Cover sets with the same coverage and size are equivalent; only the one
whose members come first in round order is kept.

# Analyses

  - ProposalRelations: equal, disjoint, subset, superset or overlapping
    for every proposal pair
  - KeyPlayers: frontier distance when each endorser's votes are removed
  - EndorserEffects: proposals that enter or leave the frontier when a
    single endorsement is flipped

KeyPlayers and EndorserEffects recompute the frontier many times. They run
recomputations in parallel (Options.Workers) and stop early when the
context is cancelled.

# Errors

  - *ValidationError: malformed snapshot, never retried
  - *ResourceLimitError: candidate space above Options.MaxCandidates
*/
package pareto
