// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"maps"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// ProposalID identifies a proposal within a question round.
type ProposalID int64

// EndorserID identifies a participant.
type EndorserID int64

// Snapshot is an immutable view of one question round: the proposals in
// round order and the endorser set of each. Every analysis reads a Snapshot
// and none of them mutates it.
type Snapshot struct {
	order     []ProposalID
	index     map[ProposalID]int
	endorsers [][]EndorserID // ascending, per proposal position

	all  []EndorserID // ascending
	rank map[EndorserID]uint
	bits []*bitset.BitSet // per proposal position, bit = rank of endorser
}

// NewSnapshot builds a snapshot from the ordered proposal list of a round and
// the endorsers of each proposal. Proposals missing from endorsements have no
// endorsers. Duplicate endorsers are dropped.
func NewSnapshot(proposals []ProposalID, endorsements map[ProposalID][]EndorserID) (*Snapshot, error) {
	s := &Snapshot{
		order:     slices.Clone(proposals),
		index:     make(map[ProposalID]int, len(proposals)),
		endorsers: make([][]EndorserID, len(proposals)),
	}
	for i, id := range s.order {
		if _, dup := s.index[id]; dup {
			return nil, validationErrorf("proposal %d listed more than once", id)
		}
		s.index[id] = i
	}

	// Sorted so the reported unknown id is the same on every run
	for _, id := range slices.Sorted(maps.Keys(endorsements)) {
		i, ok := s.index[id]
		if !ok {
			return nil, validationErrorf("endorsements reference unknown proposal %d", id)
		}
		s.endorsers[i] = normalize(endorsements[id])
	}

	s.build()
	return s, nil
}

func normalize(ids []EndorserID) []EndorserID {
	set := slices.Clone(ids)
	slices.Sort(set)
	return slices.Compact(set)
}

// build derives the endorser universe and per-proposal coverage bitsets.
func (s *Snapshot) build() {
	var all []EndorserID
	for _, set := range s.endorsers {
		all = append(all, set...)
	}
	s.all = normalize(all)

	s.rank = make(map[EndorserID]uint, len(s.all))
	for i, e := range s.all {
		s.rank[e] = uint(i)
	}

	s.bits = make([]*bitset.BitSet, len(s.endorsers))
	for i, set := range s.endorsers {
		b := bitset.New(uint(len(s.all)))
		for _, e := range set {
			b.Set(s.rank[e])
		}
		s.bits[i] = b
	}
}

// derive returns a new snapshot with the same proposals and endorser sets
// rewritten by fn.
func (s *Snapshot) derive(fn func(i int, set []EndorserID) []EndorserID) *Snapshot {
	d := &Snapshot{
		order:     s.order,
		index:     s.index,
		endorsers: make([][]EndorserID, len(s.endorsers)),
	}
	for i, set := range s.endorsers {
		d.endorsers[i] = fn(i, set)
	}
	d.build()
	return d
}

// Proposals returns proposal ids in round order.
func (s *Snapshot) Proposals() []ProposalID {
	return slices.Clone(s.order)
}

// Len returns the number of proposals.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Has reports whether the proposal is part of the snapshot.
func (s *Snapshot) Has(p ProposalID) bool {
	_, ok := s.index[p]
	return ok
}

// EndorsersOf returns the endorsers of a proposal in ascending order, or nil
// for an unknown proposal.
func (s *Snapshot) EndorsersOf(p ProposalID) []EndorserID {
	i, ok := s.index[p]
	if !ok {
		return nil
	}
	return slices.Clone(s.endorsers[i])
}

// AllEndorsers returns the union of all endorser sets in ascending order.
func (s *Snapshot) AllEndorsers() []EndorserID {
	return slices.Clone(s.all)
}

// EndorserCount returns the number of distinct endorsers.
func (s *Snapshot) EndorserCount() int {
	return len(s.all)
}

// Endorses reports whether e endorses p.
func (s *Snapshot) Endorses(e EndorserID, p ProposalID) bool {
	i, ok := s.index[p]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(s.endorsers[i], e)
	return found
}

// VoteCount returns the number of proposals e endorses.
func (s *Snapshot) VoteCount(e EndorserID) int {
	r, ok := s.rank[e]
	if !ok {
		return 0
	}
	n := 0
	for _, b := range s.bits {
		if b.Test(r) {
			n++
		}
	}
	return n
}

// WithoutEndorser returns a snapshot with every endorsement by e removed.
func (s *Snapshot) WithoutEndorser(e EndorserID) *Snapshot {
	return s.derive(func(_ int, set []EndorserID) []EndorserID {
		return slices.DeleteFunc(slices.Clone(set), func(x EndorserID) bool { return x == e })
	})
}

// Toggle returns a snapshot in which e's endorsement of p is flipped, and
// whether the endorsement was added. All other endorsements are unchanged.
func (s *Snapshot) Toggle(e EndorserID, p ProposalID) (*Snapshot, bool, error) {
	target, ok := s.index[p]
	if !ok {
		return nil, false, validationErrorf("unknown proposal %d", p)
	}
	added := !s.Endorses(e, p)
	d := s.derive(func(i int, set []EndorserID) []EndorserID {
		if i != target {
			return set
		}
		if added {
			return normalize(append(slices.Clone(set), e))
		}
		return slices.DeleteFunc(slices.Clone(set), func(x EndorserID) bool { return x == e })
	})
	return d, added, nil
}

// Fingerprint returns a stable hex digest of the snapshot content.
// Snapshots with identical proposals, order and endorsers share a fingerprint.
func (s *Snapshot) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	write := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	write(int64(len(s.order)))
	for i, p := range s.order {
		write(int64(p))
		write(int64(len(s.endorsers[i])))
		for _, e := range s.endorsers[i] {
			write(int64(e))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
