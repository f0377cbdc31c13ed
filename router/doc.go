// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Consensus API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(conn, svc, registry)

# Endpoints

Operations:

	GET /health  - Liveness, pings the database
	GET /metrics - Prometheus exposition

Participants:

	POST /participants      - Register a participant
	GET  /participants      - List participants
	GET  /participants/{id} - One participant

Questions and proposals:

	GET    /questions/{id}                 - Question with proposals
	POST   /questions                      - Create question
	DELETE /questions/{id}                 - Delete a question without proposals
	POST   /questions/{id}/proposals       - Add proposal
	PATCH  /questions/{id}/proposals/{pid} - Author edits a proposal

Endorsements, always in the question's current round:

	POST   /questions/{id}/proposals/{pid}/endorsements - Endorse (idempotent)
	DELETE /questions/{id}/proposals/{pid}/endorsements - Withdraw
	GET    /questions/{id}/proposals/{pid}/endorsers    - List endorsers

Analyses of the current round:

	GET /questions/{id}/pareto             - Pareto frontier
	GET /questions/{id}/key_players        - Key players (?top=k)
	GET /questions/{id}/endorser_effects   - Single-endorsement flips
	GET /questions/{id}/proposal_relations - Pairwise endorser-set relations

Analysis responses carry an ETag derived from the snapshot fingerprint and
honor If-None-Match.

# Handler Initialization

The router creates handler instances with dependency injection:

	participantHandler := handlers.NewParticipantHandler(conn)
	questionHandler := handlers.NewQuestionHandler(conn)
	endorsementHandler := handlers.NewEndorsementHandler(conn)
	analysisHandler := handlers.NewAnalysisHandler(conn, svc)

Every API route is wrapped with WithRequestID and WithLogging.
*/
package router
