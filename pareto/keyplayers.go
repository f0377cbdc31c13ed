// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// KeyPlayer scores how much the frontier changes when one endorser's votes
// are removed.
type KeyPlayer struct {
	Endorser EndorserID
	Votes    int

	// CoverSetsChanged counts cover sets in exactly one of the two frontiers.
	CoverSetsChanged int
	// ProposalsFlipped counts proposals whose frontier membership changes.
	ProposalsFlipped int
	// Distance is CoverSetsChanged + ProposalsFlipped.
	Distance int
}

// KeyPlayers recomputes the frontier once per endorser with that endorser's
// votes removed and ranks endorsers by descending distance, then ascending id.
// With opts.TopK set only the k endorsers with the most votes are analyzed.
func KeyPlayers(ctx context.Context, s *Snapshot, opts Options) ([]KeyPlayer, error) {
	base, err := Frontier(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	baseIn := Membership(base)

	players := make([]KeyPlayer, 0, s.EndorserCount())
	for _, e := range s.AllEndorsers() {
		players = append(players, KeyPlayer{Endorser: e, Votes: s.VoteCount(e)})
	}
	if opts.TopK > 0 && opts.TopK < len(players) {
		slices.SortStableFunc(players, func(a, b KeyPlayer) int {
			return cmp.Compare(b.Votes, a.Votes)
		})
		players = players[:opts.TopK]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range players {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reduced, err := Frontier(gctx, s.WithoutEndorser(players[i].Endorser), opts)
			if err != nil {
				return err
			}
			sets, flips := frontierDistance(s, base, baseIn, reduced)
			players[i].CoverSetsChanged = sets
			players[i].ProposalsFlipped = flips
			players[i].Distance = sets + flips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(players, func(a, b KeyPlayer) int {
		if c := cmp.Compare(b.Distance, a.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Endorser, b.Endorser)
	})
	return players, nil
}

// frontierDistance compares two frontiers over the same proposals by
// membership: cover sets present in only one of them, and proposals whose
// frontier membership differs.
func frontierDistance(s *Snapshot, a []CoverSet, aIn map[ProposalID]bool, b []CoverSet) (sets, flips int) {
	keys := make(map[string]int, len(a)+len(b))
	for _, c := range a {
		keys[c.Key()]++
	}
	for _, c := range b {
		keys[c.Key()]--
	}
	for _, v := range keys {
		if v != 0 {
			sets++
		}
	}

	bIn := Membership(b)
	for _, p := range s.order {
		if aIn[p] != bIn[p] {
			flips++
		}
	}
	return sets, flips
}
