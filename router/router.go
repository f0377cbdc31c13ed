// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-consensus/analysis"
	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/handlers"
	"github.com/danielhkuo/quickly-consensus/middleware"
)

// logged tags a handler with a request id and logs it
func logged(h http.HandlerFunc) http.HandlerFunc {
	return middleware.WithRequestID(middleware.WithLogging(h))
}

func NewRouter(conn *db.DB, svc *analysis.Service, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	participantHandler := handlers.NewParticipantHandler(conn)
	questionHandler := handlers.NewQuestionHandler(conn)
	endorsementHandler := handlers.NewEndorsementHandler(conn)
	analysisHandler := handlers.NewAnalysisHandler(conn, svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Participants
	mux.HandleFunc("POST /participants", logged(participantHandler.CreateParticipant))
	mux.HandleFunc("GET /participants", logged(participantHandler.ListParticipants))
	mux.HandleFunc("GET /participants/{id}", logged(participantHandler.GetParticipant))

	// Questions and proposals
	mux.HandleFunc("POST /questions", logged(questionHandler.CreateQuestion))
	mux.HandleFunc("GET /questions/{id}", logged(questionHandler.GetQuestion))
	mux.HandleFunc("DELETE /questions/{id}", logged(questionHandler.DeleteQuestion))
	mux.HandleFunc("POST /questions/{id}/proposals", logged(questionHandler.AddProposal))
	mux.HandleFunc("PATCH /questions/{id}/proposals/{pid}", logged(questionHandler.UpdateProposal))

	// Endorsements (current round)
	mux.HandleFunc("POST /questions/{id}/proposals/{pid}/endorsements", logged(endorsementHandler.Endorse))
	mux.HandleFunc("DELETE /questions/{id}/proposals/{pid}/endorsements", logged(endorsementHandler.Withdraw))
	mux.HandleFunc("GET /questions/{id}/proposals/{pid}/endorsers", logged(endorsementHandler.ListEndorsers))

	// Analyses (read-only)
	mux.HandleFunc("GET /questions/{id}/pareto", logged(analysisHandler.Pareto))
	mux.HandleFunc("GET /questions/{id}/key_players", logged(analysisHandler.KeyPlayers))
	mux.HandleFunc("GET /questions/{id}/endorser_effects", logged(analysisHandler.EndorserEffects))
	mux.HandleFunc("GET /questions/{id}/proposal_relations", logged(analysisHandler.ProposalRelations))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-consensus API v1"))
	})

	return mux
}
