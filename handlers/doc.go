// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Consensus API.

# Handler Types

Each handler is a struct with its dependencies:

  - ParticipantHandler: participant registration
  - QuestionHandler: questions and proposals
  - EndorsementHandler: endorsing, withdrawing and listing endorsers
  - AnalysisHandler: frontier, key players, endorser effects, relations

Handlers are created via constructor functions:

	questionHandler := handlers.NewQuestionHandler(conn)
	analysisHandler := handlers.NewAnalysisHandler(conn, svc)

# Questions and Rounds

A question starts in round 1. Proposals record the round they were created
in. Endorsements are stored per round and every read and write goes to the
question's current round:

	POST /questions                                    → CreateQuestion
	POST /questions/{id}/proposals                     → AddProposal
	PATCH /questions/{id}/proposals/{pid}              → UpdateProposal
	POST /questions/{id}/proposals/{pid}/endorsements  → Endorse
	DELETE /questions/{id}/proposals/{pid}/endorsements → Withdraw

Endorsing twice and withdrawing a missing endorsement are both no-ops.
DeleteQuestion refuses (403) once a question has proposals, and only a
proposal's author may edit it.

# Analyses

Analysis handlers load the current round with db.LoadSnapshot and hand it to
the analysis.Service. They never write. Errors map to statuses:

  - unknown question: 404
  - pareto.ValidationError: 422
  - pareto.ResourceLimitError: 413
  - analysis timeout: 503
  - anything else: 500

Successful responses carry an ETag built from the snapshot fingerprint and
the dominance mode, so unchanged rounds answer If-None-Match with 304.
Failed analyses carry no ETag.
*/
package handlers
