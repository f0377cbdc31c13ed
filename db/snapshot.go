// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-consensus/pareto"
)

var ErrQuestionNotFound = errors.New("question not found")

// RoundSnapshot is the endorsement snapshot of a question's current round.
type RoundSnapshot struct {
	QuestionID int64
	Round      int
	Snapshot   *pareto.Snapshot
}

// LoadSnapshot reads the proposals of a question and their endorsements in
// the current round inside one transaction. Proposals are ordered by id,
// which is creation order.
func LoadSnapshot(ctx context.Context, d *DB, questionID int64) (*RoundSnapshot, error) {
	tx, err := d.BeginSnapshotTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var round int
	err = tx.QueryRowContext(ctx, `
		SELECT round FROM question WHERE id = $1
	`, questionID).Scan(&round)
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query question: %w", err)
	}

	proposals, err := queryProposalIDs(ctx, tx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}

	endorsements, err := queryEndorsements(ctx, tx, questionID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to query endorsements: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}

	snap, err := pareto.NewSnapshot(proposals, endorsements)
	if err != nil {
		return nil, err
	}

	return &RoundSnapshot{QuestionID: questionID, Round: round, Snapshot: snap}, nil
}

func queryProposalIDs(ctx context.Context, tx *Tx, questionID int64) ([]pareto.ProposalID, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM proposal WHERE question_id = $1 ORDER BY id
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []pareto.ProposalID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, pareto.ProposalID(id))
	}

	return ids, rows.Err()
}

func queryEndorsements(ctx context.Context, tx *Tx, questionID int64, round int) (map[pareto.ProposalID][]pareto.EndorserID, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT e.proposal_id, e.participant_id
		FROM endorsement e
		JOIN proposal p ON e.proposal_id = p.id
		WHERE p.question_id = $1 AND e.round = $2
		ORDER BY e.proposal_id, e.participant_id
	`, questionID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endorsements := make(map[pareto.ProposalID][]pareto.EndorserID)
	for rows.Next() {
		var proposalID, participantID int64
		if err := rows.Scan(&proposalID, &participantID); err != nil {
			return nil, err
		}
		p := pareto.ProposalID(proposalID)
		endorsements[p] = append(endorsements[p], pareto.EndorserID(participantID))
	}

	return endorsements, rows.Err()
}
