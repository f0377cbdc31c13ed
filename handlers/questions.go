// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/middleware"
	"github.com/danielhkuo/quickly-consensus/models"
)

type QuestionHandler struct {
	db *db.DB
}

func NewQuestionHandler(conn *db.DB) *QuestionHandler {
	return &QuestionHandler{db: conn}
}

// pathID parses a positive integer path value. On failure it writes a 400
// and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func participantExists(ctx context.Context, conn *db.DB, id int64) (bool, error) {
	var exists bool
	err := conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM participant WHERE id = $1)
	`, id).Scan(&exists)
	return exists, err
}

// CreateQuestion handles POST /questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.AuthorID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author_id is required")
		return
	}

	exists, err := participantExists(r.Context(), h.db, req.AuthorID)
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Author not found")
		return
	}

	var questionID int64
	err = h.db.QueryRowContext(r.Context(), `
		INSERT INTO question (title, blurb, room, author_id, round, created_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		RETURNING id
	`, req.Title, req.Blurb, req.Room, req.AuthorID, time.Now()).Scan(&questionID)
	if err != nil {
		slog.Error("failed to insert question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question created",
		"question_id", questionID,
		"author_id", req.AuthorID,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{
		QuestionID: questionID,
		Round:      1,
	})
}

// GetQuestion handles GET /questions/{id}
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var q models.Question
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, title, blurb, room, author_id, round, created_at
		FROM question
		WHERE id = $1
	`, questionID).Scan(&q.ID, &q.Title, &q.Blurb, &q.Room, &q.AuthorID, &q.Round, &q.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Proposals with their current-round endorsement counts
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT p.id, p.question_id, p.author_id, p.title, p.blurb, p.abstract,
		       p.created_round, p.created_at,
		       (SELECT COUNT(*) FROM endorsement e WHERE e.proposal_id = p.id AND e.round = $2)
		FROM proposal p
		WHERE p.question_id = $1
		ORDER BY p.id
	`, questionID, q.Round)
	if err != nil {
		slog.Error("failed to query proposals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.QuestionID, &p.AuthorID, &p.Title, &p.Blurb, &p.Abstract,
			&p.CreatedRound, &p.CreatedAt, &p.Endorsements); err != nil {
			slog.Error("failed to scan proposal", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate proposals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QuestionWithProposals{
		Question:  q,
		Proposals: proposals,
	})
}

// AddProposal handles POST /questions/{id}/proposals
func (h *QuestionHandler) AddProposal(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CreateProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.AuthorID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author_id is required")
		return
	}

	var round int
	err := h.db.QueryRowContext(r.Context(), "SELECT round FROM question WHERE id = $1", questionID).Scan(&round)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	exists, err := participantExists(r.Context(), h.db, req.AuthorID)
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Author not found")
		return
	}

	var proposalID int64
	err = h.db.QueryRowContext(r.Context(), `
		INSERT INTO proposal (question_id, author_id, title, blurb, abstract, created_round, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, questionID, req.AuthorID, req.Title, req.Blurb, req.Abstract, round, time.Now()).Scan(&proposalID)
	if err != nil {
		slog.Error("failed to insert proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	slog.Info("proposal added",
		"question_id", questionID,
		"proposal_id", proposalID,
		"round", round,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateProposalResponse{
		ProposalID: proposalID,
	})
}

// DeleteQuestion handles DELETE /questions/{id}. Only questions without
// proposals can be deleted.
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var proposals int
	err = tx.QueryRowContext(r.Context(), `
		SELECT (SELECT COUNT(*) FROM proposal WHERE question_id = q.id)
		FROM question q
		WHERE q.id = $1
	`, questionID).Scan(&proposals)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if proposals > 0 {
		middleware.ErrorResponse(w, http.StatusForbidden, "This question has proposals")
		return
	}

	if _, err := tx.ExecContext(r.Context(), "DELETE FROM question WHERE id = $1", questionID); err != nil {
		slog.Error("failed to delete question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit question delete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}

	slog.Info("question deleted",
		"question_id", questionID,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteQuestionResponse{
		QuestionID: questionID,
		Message:    "Question deleted",
	})
}

// UpdateProposal handles PATCH /questions/{id}/proposals/{pid}. Only the
// proposal's author may edit it.
func (h *QuestionHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	proposalID, ok := pathID(w, r, "pid")
	if !ok {
		return
	}

	var req models.UpdateProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.AuthorID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author_id is required")
		return
	}
	if req.Title == nil && req.Blurb == nil && req.Abstract == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title must not be empty")
			return
		}
		req.Title = &title
	}

	var authorID int64
	err := h.db.QueryRowContext(r.Context(), `
		SELECT author_id FROM proposal WHERE id = $1 AND question_id = $2
	`, proposalID, questionID).Scan(&authorID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if authorID != req.AuthorID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the author can edit this proposal")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE proposal
		SET title = COALESCE($1, title),
		    blurb = COALESCE($2, blurb),
		    abstract = COALESCE($3, abstract)
		WHERE id = $4
	`, req.Title, req.Blurb, req.Abstract, proposalID)
	if err != nil {
		slog.Error("failed to update proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update proposal")
		return
	}

	var p models.Proposal
	err = h.db.QueryRowContext(r.Context(), `
		SELECT p.id, p.question_id, p.author_id, p.title, p.blurb, p.abstract,
		       p.created_round, p.created_at,
		       (SELECT COUNT(*) FROM endorsement e WHERE e.proposal_id = p.id AND e.round = q.round)
		FROM proposal p
		JOIN question q ON p.question_id = q.id
		WHERE p.id = $1
	`, proposalID).Scan(&p.ID, &p.QuestionID, &p.AuthorID, &p.Title, &p.Blurb, &p.Abstract,
		&p.CreatedRound, &p.CreatedAt, &p.Endorsements)
	if err != nil {
		slog.Error("failed to reload proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("proposal updated",
		"question_id", questionID,
		"proposal_id", proposalID,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusOK, p)
}
