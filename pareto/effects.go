// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Direction tells whether a proposal enters or leaves the frontier.
type Direction string

const (
	DirectionGains Direction = "gains"
	DirectionLoses Direction = "loses"
)

// Toggle tells which way a single endorsement was flipped.
type Toggle string

const (
	ToggleAdded     Toggle = "added"
	ToggleWithdrawn Toggle = "withdrawn"
)

// EndorserEffect records that flipping Endorser's endorsement of Proposal
// changes whether Proposal belongs to the frontier.
type EndorserEffect struct {
	Endorser  EndorserID
	Proposal  ProposalID
	Toggle    Toggle
	Direction Direction
}

// EndorserEffects toggles every (endorser, proposal) endorsement in turn,
// holding all others fixed, and reports the pairs where the proposal's
// frontier membership flips. Results are ordered by endorser id, then
// round order.
func EndorserEffects(ctx context.Context, s *Snapshot, opts Options) ([]EndorserEffect, error) {
	base, err := Frontier(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	baseIn := Membership(base)

	endorsers := s.AllEndorsers()
	n := s.Len()
	found := make([]*EndorserEffect, len(endorsers)*n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for ei, e := range endorsers {
		for pi, p := range s.order {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				toggled, added, err := s.Toggle(e, p)
				if err != nil {
					return err
				}
				f, err := Frontier(gctx, toggled, opts)
				if err != nil {
					return err
				}
				after := Membership(f)[p]
				if after == baseIn[p] {
					return nil
				}
				effect := &EndorserEffect{Endorser: e, Proposal: p, Toggle: ToggleWithdrawn, Direction: DirectionLoses}
				if added {
					effect.Toggle = ToggleAdded
				}
				if after {
					effect.Direction = DirectionGains
				}
				found[ei*n+pi] = effect
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	effects := make([]EndorserEffect, 0)
	for _, e := range found {
		if e != nil {
			effects = append(effects, *e)
		}
	}
	return effects, nil
}
