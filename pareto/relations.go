// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

// Relation classifies how two proposals' endorser sets relate.
type Relation string

const (
	RelationEqual       Relation = "equal"
	RelationDisjoint    Relation = "disjoint"
	RelationSubset      Relation = "subset"
	RelationSuperset    Relation = "superset"
	RelationOverlapping Relation = "overlapping"
)

// Inverse returns the relation seen from the other proposal.
func (r Relation) Inverse() Relation {
	switch r {
	case RelationSubset:
		return RelationSuperset
	case RelationSuperset:
		return RelationSubset
	default:
		return r
	}
}

// Pair is an unordered proposal pair, stored with A before B in round order.
type Pair struct {
	A ProposalID
	B ProposalID
}

// PairRelation is the relation of A's endorsers to B's endorsers.
type PairRelation struct {
	Pair
	Relation Relation
}

// Relations holds the relation of every unordered proposal pair of a snapshot.
type Relations struct {
	pairs  []PairRelation
	byPair map[Pair]Relation
}

// ProposalRelations classifies every pair of distinct proposals.
func ProposalRelations(s *Snapshot) *Relations {
	n := s.Len()
	r := &Relations{
		pairs:  make([]PairRelation, 0, n*(n-1)/2),
		byPair: make(map[Pair]Relation, n*(n-1)/2),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pair := Pair{A: s.order[i], B: s.order[j]}
			rel := classify(s, i, j)
			r.pairs = append(r.pairs, PairRelation{Pair: pair, Relation: rel})
			r.byPair[pair] = rel
		}
	}
	return r
}

func classify(s *Snapshot, i, j int) Relation {
	a, b := s.bits[i], s.bits[j]
	switch {
	case a.Equal(b):
		return RelationEqual
	case a.IntersectionCardinality(b) == 0:
		return RelationDisjoint
	case b.IsSuperSet(a):
		return RelationSubset
	case a.IsSuperSet(b):
		return RelationSuperset
	default:
		return RelationOverlapping
	}
}

// Of returns the relation of p's endorsers to q's endorsers. It reports false
// when p equals q or either proposal is unknown.
func (r *Relations) Of(p, q ProposalID) (Relation, bool) {
	if rel, ok := r.byPair[Pair{A: p, B: q}]; ok {
		return rel, true
	}
	if rel, ok := r.byPair[Pair{A: q, B: p}]; ok {
		return rel.Inverse(), true
	}
	return "", false
}

// Pairs returns every pair in round order.
func (r *Relations) Pairs() []PairRelation {
	out := make([]PairRelation, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Len returns the number of pairs.
func (r *Relations) Len() int {
	return len(r.pairs)
}
