// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/middleware"
	"github.com/danielhkuo/quickly-consensus/models"
)

type EndorsementHandler struct {
	db *db.DB
}

func NewEndorsementHandler(conn *db.DB) *EndorsementHandler {
	return &EndorsementHandler{db: conn}
}

// proposalRound resolves a proposal inside a question and returns the
// question's current round. It writes the error response itself.
func (h *EndorsementHandler) proposalRound(w http.ResponseWriter, r *http.Request) (questionID, proposalID int64, round int, ok bool) {
	if questionID, ok = pathID(w, r, "id"); !ok {
		return
	}
	if proposalID, ok = pathID(w, r, "pid"); !ok {
		return
	}

	err := h.db.QueryRowContext(r.Context(), `
		SELECT q.round
		FROM proposal p
		JOIN question q ON p.question_id = q.id
		WHERE p.id = $1 AND q.id = $2
	`, proposalID, questionID).Scan(&round)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return 0, 0, 0, false
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return 0, 0, 0, false
	}

	return questionID, proposalID, round, true
}

func (h *EndorsementHandler) parseParticipant(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req models.EndorsementRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return 0, false
	}
	if req.ParticipantID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participant_id is required")
		return 0, false
	}
	return req.ParticipantID, true
}

// Endorse handles POST /questions/{id}/proposals/{pid}/endorsements.
// Endorsing twice in the same round is a no-op.
func (h *EndorsementHandler) Endorse(w http.ResponseWriter, r *http.Request) {
	questionID, proposalID, round, ok := h.proposalRound(w, r)
	if !ok {
		return
	}
	participantID, ok := h.parseParticipant(w, r)
	if !ok {
		return
	}

	exists, err := participantExists(r.Context(), h.db, participantID)
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
		return
	}

	result, err := h.db.ExecContext(r.Context(), `
		INSERT INTO endorsement (proposal_id, participant_id, round, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (proposal_id, participant_id, round) DO NOTHING
	`, proposalID, participantID, round, time.Now())
	if err != nil {
		slog.Error("failed to insert endorsement", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to endorse")
		return
	}

	added, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.EndorsementResponse{
		ProposalID:    proposalID,
		ParticipantID: participantID,
		Round:         round,
		Endorsed:      true,
		Message:       "Endorsement recorded",
	}
	status := http.StatusCreated
	if added == 0 {
		resp.Message = "Already endorsed"
		status = http.StatusOK
	}

	slog.Info("proposal endorsed",
		"question_id", questionID,
		"proposal_id", proposalID,
		"participant_id", participantID,
		"round", round,
		"new", added > 0,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, status, resp)
}

// Withdraw handles DELETE /questions/{id}/proposals/{pid}/endorsements.
// Withdrawing an endorsement that does not exist is a no-op.
func (h *EndorsementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	questionID, proposalID, round, ok := h.proposalRound(w, r)
	if !ok {
		return
	}
	participantID, ok := h.parseParticipant(w, r)
	if !ok {
		return
	}

	result, err := h.db.ExecContext(r.Context(), `
		DELETE FROM endorsement
		WHERE proposal_id = $1 AND participant_id = $2 AND round = $3
	`, proposalID, participantID, round)
	if err != nil {
		slog.Error("failed to delete endorsement", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw endorsement")
		return
	}

	removed, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.EndorsementResponse{
		ProposalID:    proposalID,
		ParticipantID: participantID,
		Round:         round,
		Endorsed:      false,
		Message:       "Endorsement removed",
	}
	if removed == 0 {
		resp.Message = "Not endorsed"
	}

	slog.Info("endorsement withdrawn",
		"question_id", questionID,
		"proposal_id", proposalID,
		"participant_id", participantID,
		"round", round,
		"removed", removed > 0,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ListEndorsers handles GET /questions/{id}/proposals/{pid}/endorsers
func (h *EndorsementHandler) ListEndorsers(w http.ResponseWriter, r *http.Request) {
	_, proposalID, round, ok := h.proposalRound(w, r)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT participant_id
		FROM endorsement
		WHERE proposal_id = $1 AND round = $2
		ORDER BY participant_id
	`, proposalID, round)
	if err != nil {
		slog.Error("failed to query endorsers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	endorsers := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan endorser", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		endorsers = append(endorsers, id)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate endorsers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EndorsersResponse{
		ProposalID: proposalID,
		Round:      round,
		Endorsers:  endorsers,
	})
}
