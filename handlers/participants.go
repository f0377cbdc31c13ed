// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/middleware"
	"github.com/danielhkuo/quickly-consensus/models"
)

type ParticipantHandler struct {
	db *db.DB
}

func NewParticipantHandler(conn *db.DB) *ParticipantHandler {
	return &ParticipantHandler{db: conn}
}

// CreateParticipant handles POST /participants
func (h *ParticipantHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(name) > 64 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 64 characters or less")
		return
	}

	// Names are unique
	var exists bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM participant WHERE name = $1)
	`, name).Scan(&exists)
	if err != nil {
		slog.Error("failed to check participant name", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "Name already taken")
		return
	}

	var participantID int64
	err = h.db.QueryRowContext(r.Context(), `
		INSERT INTO participant (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`, name, time.Now()).Scan(&participantID)
	if err != nil {
		slog.Error("failed to insert participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create participant")
		return
	}

	slog.Info("participant created",
		"participant_id", participantID,
		"request_id", middleware.RequestID(r.Context()),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateParticipantResponse{
		ParticipantID: participantID,
	})
}

// ListParticipants handles GET /participants
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, name, created_at FROM participant ORDER BY id
	`)
	if err != nil {
		slog.Error("failed to query participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			slog.Error("failed to scan participant", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ParticipantsResponse{Participants: participants})
}

// GetParticipant handles GET /participants/{id}
func (h *ParticipantHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	participantID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var p models.Participant
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, created_at FROM participant WHERE id = $1
	`, participantID).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}
