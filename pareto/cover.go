// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"iter"
	"slices"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// CoverSet is a set of proposals together with its coverage, the union of
// the members' endorser sets.
type CoverSet struct {
	snap *Snapshot
	idx  []int // ascending proposal positions
	cov  *bitset.BitSet
}

// Members returns the member proposal ids in round order.
func (c CoverSet) Members() []ProposalID {
	out := make([]ProposalID, len(c.idx))
	for i, pos := range c.idx {
		out[i] = c.snap.order[pos]
	}
	return out
}

// Size returns the number of member proposals.
func (c CoverSet) Size() int {
	return len(c.idx)
}

// Coverage returns the covered endorsers in ascending order.
func (c CoverSet) Coverage() []EndorserID {
	out := make([]EndorserID, 0, c.cov.Count())
	for i, ok := c.cov.NextSet(0); ok; i, ok = c.cov.NextSet(i + 1) {
		out = append(out, c.snap.all[i])
	}
	return out
}

// CoverageSize returns the number of covered endorsers.
func (c CoverSet) CoverageSize() int {
	return int(c.cov.Count())
}

// Contains reports whether p is a member.
func (c CoverSet) Contains(p ProposalID) bool {
	pos, ok := c.snap.index[p]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(c.idx, pos)
	return found
}

// Key identifies the membership of the cover set. Two cover sets drawn from
// snapshots with the same proposals share a key iff they have the same members.
func (c CoverSet) Key() string {
	return positionsKey(c.snap.order, c.idx)
}

func positionsKey(order []ProposalID, idx []int) string {
	b := make([]byte, 0, len(idx)*4)
	for i, pos := range idx {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(order[pos]), 10)
	}
	return string(b)
}

// Enumerator produces the candidate cover sets of a snapshot: every singleton
// with non-empty coverage, then level by level every extension of a previous
// candidate by one proposal that strictly increases its coverage.
type Enumerator struct {
	snap          *Snapshot
	maxSize       int
	maxCandidates int
}

// NewEnumerator bounds enumeration of s by opts.MaxCoverSize and
// opts.MaxCandidates.
func NewEnumerator(s *Snapshot, opts Options) *Enumerator {
	return &Enumerator{
		snap:          s,
		maxSize:       opts.maxCoverSize(s),
		maxCandidates: opts.maxCandidates(),
	}
}

// Candidates yields cover sets in a deterministic order. Each call starts a
// fresh enumeration. If the candidate space exceeds the configured bound, a
// ResourceLimitError is yielded and the sequence ends.
func (e *Enumerator) Candidates() iter.Seq2[CoverSet, error] {
	return func(yield func(CoverSet, error) bool) {
		s := e.snap
		if s.Len() == 0 || e.maxSize <= 0 {
			return
		}

		seen := make(map[string]struct{})
		emitted := 0
		emit := func(c CoverSet, key string) bool {
			seen[key] = struct{}{}
			emitted++
			if emitted > e.maxCandidates {
				yield(CoverSet{}, &ResourceLimitError{
					Resource: "cover set candidates",
					Limit:    e.maxCandidates,
					Actual:   emitted,
				})
				return false
			}
			return yield(c, nil)
		}

		var level []CoverSet
		for i := range s.Len() {
			if s.bits[i].None() {
				continue
			}
			c := CoverSet{snap: s, idx: []int{i}, cov: s.bits[i].Clone()}
			if !emit(c, c.Key()) {
				return
			}
			level = append(level, c)
		}

		for size := 2; size <= e.maxSize && len(level) > 0; size++ {
			var next []CoverSet
			for _, parent := range level {
				for i := range s.Len() {
					if parent.cov.IsSuperSet(s.bits[i]) {
						// no coverage gain, also true for current members
						continue
					}
					idx := withPosition(parent.idx, i)
					key := positionsKey(s.order, idx)
					if _, dup := seen[key]; dup {
						continue
					}
					c := CoverSet{snap: s, idx: idx, cov: parent.cov.Union(s.bits[i])}
					if !emit(c, key) {
						return
					}
					next = append(next, c)
				}
			}
			level = next
		}
	}
}

// withPosition returns a copy of the ascending positions with pos inserted.
func withPosition(idx []int, pos int) []int {
	at, _ := slices.BinarySearch(idx, pos)
	out := make([]int, 0, len(idx)+1)
	out = append(out, idx[:at]...)
	out = append(out, pos)
	return append(out, idx[at:]...)
}
