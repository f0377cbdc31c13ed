// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// Dominates reports whether a dominates b under mode. Both cover sets must
// come from the same snapshot. The relation is a strict partial order.
func Dominates(mode Dominance, a, b CoverSet) bool {
	if a.cov.Equal(b.cov) {
		return a.Size() < b.Size()
	}
	if !a.cov.IsSuperSet(b.cov) {
		return false
	}
	if mode == DominanceTradeoff {
		return a.Size() <= b.Size()
	}
	return true
}

// equivalent reports equal coverage and equal size.
func equivalent(a, b CoverSet) bool {
	return a.Size() == b.Size() && a.cov.Equal(b.cov)
}

// compareMembers orders cover sets by their member positions, lexicographically.
func compareMembers(a, b CoverSet) int {
	return slices.Compare(a.idx, b.idx)
}

// Ranker maintains the antichain of cover sets not dominated by any cover
// set offered so far. Members are bucketed by coverage size: only larger
// buckets can hold a dominator of an offer, only smaller ones can be pruned
// by it. At most one member exists per coverage.
type Ranker struct {
	mode    Dominance
	byCov   map[string]CoverSet
	buckets [][]CoverSet
}

// NewRanker returns an empty ranker for mode.
func NewRanker(mode Dominance) *Ranker {
	return &Ranker{mode: mode, byCov: make(map[string]CoverSet)}
}

// Offer adds c to the antichain unless an existing member dominates it,
// pruning every member c dominates. Of two equivalent cover sets only the
// one with the smaller members survives. Offer reports whether c was kept.
func (r *Ranker) Offer(c CoverSet) bool {
	k := c.CoverageSize()
	key := coverageKey(c.cov)

	m, same := r.byCov[key]
	if same {
		if Dominates(r.mode, m, c) {
			return false
		}
		if equivalent(m, c) && compareMembers(c, m) >= 0 {
			return false
		}
	}
	for _, bucket := range r.buckets[min(k+1, len(r.buckets)):] {
		for _, o := range bucket {
			if Dominates(r.mode, o, c) {
				return false
			}
		}
	}

	if same {
		r.buckets[k] = slices.DeleteFunc(r.buckets[k], func(x CoverSet) bool {
			return slices.Equal(x.idx, m.idx)
		})
	}
	for n := range min(k, len(r.buckets)) {
		r.buckets[n] = slices.DeleteFunc(r.buckets[n], func(x CoverSet) bool {
			if !Dominates(r.mode, c, x) {
				return false
			}
			delete(r.byCov, coverageKey(x.cov))
			return true
		})
	}

	for len(r.buckets) <= k {
		r.buckets = append(r.buckets, nil)
	}
	r.buckets[k] = append(r.buckets[k], c)
	r.byCov[key] = c
	return true
}

// Len returns the number of cover sets currently kept.
func (r *Ranker) Len() int {
	return len(r.byCov)
}

// Frontier returns the current antichain ordered by ascending size, then
// ascending coverage, then members.
func (r *Ranker) Frontier() []CoverSet {
	out := make([]CoverSet, 0, len(r.byCov))
	for _, bucket := range r.buckets {
		out = append(out, bucket...)
	}
	slices.SortFunc(out, func(a, b CoverSet) int {
		if c := cmp.Compare(a.Size(), b.Size()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CoverageSize(), b.CoverageSize()); c != 0 {
			return c
		}
		return compareMembers(a, b)
	})
	return out
}

// ctxCheckInterval is how many candidates are processed between checks of
// the context.
const ctxCheckInterval = 1024

// Frontier computes the non-dominated cover sets of a snapshot. An empty
// snapshot yields an empty frontier. Candidates with equal coverage are
// reduced to the best one first, then offered to a Ranker in descending
// coverage so no offer ever prunes. Frontier returns ctx.Err() once ctx ends.
func Frontier(ctx context.Context, s *Snapshot, opts Options) ([]CoverSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best := make(map[string]CoverSet)
	var keys []string
	n := 0
	for c, err := range NewEnumerator(s, opts).Candidates() {
		if err != nil {
			return nil, err
		}
		if n++; n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key := coverageKey(c.cov)
		m, ok := best[key]
		switch {
		case !ok:
			keys = append(keys, key)
			best[key] = c
		case Dominates(opts.Dominance, c, m), equivalent(c, m) && compareMembers(c, m) < 0:
			best[key] = c
		}
	}

	distinct := make([]CoverSet, len(keys))
	for i, key := range keys {
		distinct[i] = best[key]
	}
	slices.SortStableFunc(distinct, func(a, b CoverSet) int {
		return cmp.Compare(b.CoverageSize(), a.CoverageSize())
	})

	r := NewRanker(opts.Dominance)
	for i, c := range distinct {
		if i%ctxCheckInterval == ctxCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r.Offer(c)
	}
	return r.Frontier(), nil
}

// coverageKey identifies a coverage bitset by its set positions.
func coverageKey(b *bitset.BitSet) string {
	out := make([]byte, 0, b.Count()*3)
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = strconv.AppendUint(out, uint64(i), 10)
		out = append(out, ',')
	}
	return string(out)
}

// Membership returns the proposals that appear in at least one cover set.
func Membership(frontier []CoverSet) map[ProposalID]bool {
	in := make(map[ProposalID]bool)
	for _, c := range frontier {
		for _, p := range c.Members() {
			in[p] = true
		}
	}
	return in
}
