// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-consensus/analysis"
	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/middleware"
	"github.com/danielhkuo/quickly-consensus/models"
	"github.com/danielhkuo/quickly-consensus/pareto"
)

// AnalysisHandler serves read-only analyses of a question's current round.
type AnalysisHandler struct {
	db  *db.DB
	svc *analysis.Service
}

func NewAnalysisHandler(conn *db.DB, svc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{db: conn, svc: svc}
}

// load reads the round snapshot and answers conditional requests. It returns
// nil when a response has already been written.
func (h *AnalysisHandler) load(w http.ResponseWriter, r *http.Request) *db.RoundSnapshot {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return nil
	}

	rs, err := db.LoadSnapshot(r.Context(), h.db, questionID)
	if err != nil {
		writeAnalysisError(w, r, err)
		return nil
	}

	if etag := h.etag(rs); r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	return rs
}

// etag identifies an analysis result by snapshot content and dominance mode.
func (h *AnalysisHandler) etag(rs *db.RoundSnapshot) string {
	return `"` + rs.Snapshot.Fingerprint() + "-" + h.svc.Dominance().String() + `"`
}

// respond writes a successful analysis along with its ETag.
func (h *AnalysisHandler) respond(w http.ResponseWriter, rs *db.RoundSnapshot, body any) {
	w.Header().Set("ETag", h.etag(rs))
	middleware.JSONResponse(w, http.StatusOK, body)
}

// writeAnalysisError maps core and storage errors onto HTTP statuses.
func writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *pareto.ValidationError
	var lerr *pareto.ResourceLimitError

	switch {
	case errors.Is(err, db.ErrQuestionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.As(err, &lerr):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, lerr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Analysis timed out")
	case errors.Is(err, context.Canceled):
		// Client went away
		slog.Info("analysis cancelled", "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
	default:
		slog.Error("analysis failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute analysis")
	}
}

// Pareto handles GET /questions/{id}/pareto
func (h *AnalysisHandler) Pareto(w http.ResponseWriter, r *http.Request) {
	rs := h.load(w, r)
	if rs == nil {
		return
	}

	frontier, err := h.svc.Frontier(r.Context(), rs.Snapshot)
	if err != nil {
		writeAnalysisError(w, r, err)
		return
	}

	sets := make([]models.CoverSet, 0, len(frontier))
	for _, c := range frontier {
		sets = append(sets, models.CoverSet{
			Proposals:    proposalIDs(c.Members()),
			Coverage:     endorserIDs(c.Coverage()),
			Size:         c.Size(),
			CoverageSize: c.CoverageSize(),
		})
	}

	h.respond(w, rs, models.ParetoResponse{
		QuestionID:  rs.QuestionID,
		Round:       rs.Round,
		Fingerprint: rs.Snapshot.Fingerprint(),
		Dominance:   h.svc.Dominance().String(),
		Frontier:    sets,
	})
}

// KeyPlayers handles GET /questions/{id}/key_players?top=k
func (h *AnalysisHandler) KeyPlayers(w http.ResponseWriter, r *http.Request) {
	topK := 0
	if s := r.URL.Query().Get("top"); s != "" {
		k, err := strconv.Atoi(s)
		if err != nil || k < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		topK = k
	}

	rs := h.load(w, r)
	if rs == nil {
		return
	}

	players, err := h.svc.KeyPlayers(r.Context(), rs.Snapshot, topK)
	if err != nil {
		writeAnalysisError(w, r, err)
		return
	}

	out := make([]models.KeyPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, models.KeyPlayer{
			ParticipantID:    int64(p.Endorser),
			Votes:            p.Votes,
			CoverSetsChanged: p.CoverSetsChanged,
			ProposalsFlipped: p.ProposalsFlipped,
			Distance:         p.Distance,
		})
	}

	h.respond(w, rs, models.KeyPlayersResponse{
		QuestionID:  rs.QuestionID,
		Round:       rs.Round,
		Fingerprint: rs.Snapshot.Fingerprint(),
		KeyPlayers:  out,
	})
}

// EndorserEffects handles GET /questions/{id}/endorser_effects
func (h *AnalysisHandler) EndorserEffects(w http.ResponseWriter, r *http.Request) {
	rs := h.load(w, r)
	if rs == nil {
		return
	}

	effects, err := h.svc.EndorserEffects(r.Context(), rs.Snapshot)
	if err != nil {
		writeAnalysisError(w, r, err)
		return
	}

	out := make([]models.EndorserEffect, 0, len(effects))
	for _, e := range effects {
		out = append(out, models.EndorserEffect{
			ParticipantID: int64(e.Endorser),
			ProposalID:    int64(e.Proposal),
			Toggle:        string(e.Toggle),
			Direction:     string(e.Direction),
		})
	}

	h.respond(w, rs, models.EndorserEffectsResponse{
		QuestionID:  rs.QuestionID,
		Round:       rs.Round,
		Fingerprint: rs.Snapshot.Fingerprint(),
		Effects:     out,
	})
}

// ProposalRelations handles GET /questions/{id}/proposal_relations
func (h *AnalysisHandler) ProposalRelations(w http.ResponseWriter, r *http.Request) {
	rs := h.load(w, r)
	if rs == nil {
		return
	}

	rels, err := h.svc.Relations(r.Context(), rs.Snapshot)
	if err != nil {
		writeAnalysisError(w, r, err)
		return
	}

	out := make([]models.ProposalRelation, 0, rels.Len())
	for _, pr := range rels.Pairs() {
		out = append(out, models.ProposalRelation{
			ProposalID: int64(pr.A),
			OtherID:    int64(pr.B),
			Relation:   string(pr.Relation),
		})
	}

	h.respond(w, rs, models.ProposalRelationsResponse{
		QuestionID:  rs.QuestionID,
		Round:       rs.Round,
		Fingerprint: rs.Snapshot.Fingerprint(),
		Relations:   out,
	})
}

func proposalIDs(ids []pareto.ProposalID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func endorserIDs(ids []pareto.EndorserID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
