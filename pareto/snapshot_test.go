// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"errors"
	"slices"
	"testing"
)

type fatalfer interface {
	Helper()
	Fatalf(format string, args ...any)
}

func mustSnapshot(t fatalfer, proposals []ProposalID, endorsements map[ProposalID][]EndorserID) *Snapshot {
	t.Helper()
	s, err := NewSnapshot(proposals, endorsements)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return s
}

func TestNewSnapshot(t *testing.T) {
	s := mustSnapshot(t, []ProposalID{3, 1, 2}, map[ProposalID][]EndorserID{
		3: {20, 10, 20},
		1: {30},
	})

	if got := s.Proposals(); !slices.Equal(got, []ProposalID{3, 1, 2}) {
		t.Errorf("expected round order [3 1 2], got %v", got)
	}
	if got := s.EndorsersOf(3); !slices.Equal(got, []EndorserID{10, 20}) {
		t.Errorf("expected deduplicated endorsers [10 20], got %v", got)
	}
	if got := s.EndorsersOf(2); len(got) != 0 {
		t.Errorf("expected no endorsers for proposal 2, got %v", got)
	}
	if got := s.EndorsersOf(99); got != nil {
		t.Errorf("expected nil for unknown proposal, got %v", got)
	}
	if got := s.AllEndorsers(); !slices.Equal(got, []EndorserID{10, 20, 30}) {
		t.Errorf("expected all endorsers [10 20 30], got %v", got)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 proposals, got %d", s.Len())
	}
	if s.EndorserCount() != 3 {
		t.Errorf("expected 3 endorsers, got %d", s.EndorserCount())
	}
	if !s.Endorses(20, 3) || s.Endorses(20, 1) {
		t.Error("Endorses disagrees with input")
	}
	if s.VoteCount(10) != 1 || s.VoteCount(99) != 0 {
		t.Errorf("unexpected vote counts: %d, %d", s.VoteCount(10), s.VoteCount(99))
	}
}

func TestNewSnapshotValidation(t *testing.T) {
	tests := []struct {
		name         string
		proposals    []ProposalID
		endorsements map[ProposalID][]EndorserID
	}{
		{
			name:      "duplicate proposal",
			proposals: []ProposalID{1, 2, 1},
		},
		{
			name:         "unknown proposal",
			proposals:    []ProposalID{1},
			endorsements: map[ProposalID][]EndorserID{1: {5}, 7: {5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.proposals, tt.endorsements)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestNewSnapshotDoesNotAliasInput(t *testing.T) {
	proposals := []ProposalID{1, 2}
	endorsers := []EndorserID{5, 6}
	s := mustSnapshot(t, proposals, map[ProposalID][]EndorserID{1: endorsers})

	proposals[0] = 9
	endorsers[0] = 9

	if got := s.Proposals(); !slices.Equal(got, []ProposalID{1, 2}) {
		t.Errorf("snapshot changed with caller slice: %v", got)
	}
	if got := s.EndorsersOf(1); !slices.Equal(got, []EndorserID{5, 6}) {
		t.Errorf("snapshot changed with caller slice: %v", got)
	}
}

func TestWithoutEndorser(t *testing.T) {
	s := mustSnapshot(t, []ProposalID{1, 2}, map[ProposalID][]EndorserID{
		1: {10, 11},
		2: {10},
	})

	reduced := s.WithoutEndorser(10)

	if got := reduced.EndorsersOf(1); !slices.Equal(got, []EndorserID{11}) {
		t.Errorf("expected [11], got %v", got)
	}
	if got := reduced.EndorsersOf(2); len(got) != 0 {
		t.Errorf("expected no endorsers, got %v", got)
	}
	if got := reduced.AllEndorsers(); !slices.Equal(got, []EndorserID{11}) {
		t.Errorf("expected [11], got %v", got)
	}

	// The original is untouched
	if got := s.EndorsersOf(1); !slices.Equal(got, []EndorserID{10, 11}) {
		t.Errorf("original snapshot mutated: %v", got)
	}
}

func TestToggle(t *testing.T) {
	s := mustSnapshot(t, []ProposalID{1, 2}, map[ProposalID][]EndorserID{1: {10}})

	added, wasAdded, err := s.Toggle(11, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !wasAdded {
		t.Error("expected toggle to add the endorsement")
	}
	if got := added.EndorsersOf(1); !slices.Equal(got, []EndorserID{10, 11}) {
		t.Errorf("expected [10 11], got %v", got)
	}

	removed, wasAdded, err := s.Toggle(10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if wasAdded {
		t.Error("expected toggle to withdraw the endorsement")
	}
	if got := removed.EndorsersOf(1); len(got) != 0 {
		t.Errorf("expected no endorsers, got %v", got)
	}

	if _, _, err := s.Toggle(10, 42); err == nil {
		t.Error("expected error toggling unknown proposal")
	}
}

func TestFingerprint(t *testing.T) {
	a := mustSnapshot(t, []ProposalID{1, 2}, map[ProposalID][]EndorserID{1: {10, 11}})
	b := mustSnapshot(t, []ProposalID{1, 2}, map[ProposalID][]EndorserID{1: {11, 10, 10}})
	c := mustSnapshot(t, []ProposalID{2, 1}, map[ProposalID][]EndorserID{1: {10, 11}})

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equivalent snapshots should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("round order should change the fingerprint")
	}
	if a.Fingerprint() == a.WithoutEndorser(10).Fingerprint() {
		t.Error("removing an endorser should change the fingerprint")
	}
}
