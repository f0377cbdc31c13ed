// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateParticipantRequest: name
  - CreateQuestionRequest: title, blurb, room, author_id
  - CreateProposalRequest: title, blurb, abstract, author_id
  - EndorsementRequest: participant_id

# Response Types

Types for JSON responses:

  - CreateParticipantResponse: participant_id
  - CreateQuestionResponse: question_id, round
  - CreateProposalResponse: proposal_id
  - EndorsementResponse: proposal_id, participant_id, round, endorsed, message
  - EndorsersResponse: proposal_id, round, endorsers
  - ErrorResponse: error, message

# Domain Types

Stored records:

  - Participant: someone who authors and endorses
  - Question: a question and its current round
  - Proposal: an answer to a question, with its current-round endorsement count
  - QuestionWithProposals: a question and all of its proposals

# Analysis Types

Every analysis response carries question_id, round and the snapshot
fingerprint the result was computed from:

  - ParetoResponse: dominance mode and the frontier of CoverSet values
  - KeyPlayersResponse: KeyPlayer scores, most influential first
  - EndorserEffectsResponse: EndorserEffect flips
  - ProposalRelationsResponse: ProposalRelation per unordered pair

# Constants

Relation labels:

	RelationEqual       = "equal"
	RelationDisjoint    = "disjoint"
	RelationSubset      = "subset"
	RelationSuperset    = "superset"
	RelationOverlapping = "overlapping"
*/
package models
