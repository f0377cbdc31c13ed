package models

import "time"

// Relation labels, mirrored from the analysis core
const (
	RelationEqual       = "equal"
	RelationDisjoint    = "disjoint"
	RelationSubset      = "subset"
	RelationSuperset    = "superset"
	RelationOverlapping = "overlapping"
)

// Request types

type CreateParticipantRequest struct {
	Name string `json:"name"`
}

type CreateQuestionRequest struct {
	Title    string `json:"title"`
	Blurb    string `json:"blurb"`
	Room     string `json:"room"`
	AuthorID int64  `json:"author_id"`
}

type CreateProposalRequest struct {
	Title    string `json:"title"`
	Blurb    string `json:"blurb"`
	Abstract string `json:"abstract"`
	AuthorID int64  `json:"author_id"`
}

// UpdateProposalRequest edits a proposal. Omitted fields are left unchanged.
type UpdateProposalRequest struct {
	Title    *string `json:"title"`
	Blurb    *string `json:"blurb"`
	Abstract *string `json:"abstract"`
	AuthorID int64   `json:"author_id"`
}

type EndorsementRequest struct {
	ParticipantID int64 `json:"participant_id"`
}

// Response types

type CreateParticipantResponse struct {
	ParticipantID int64 `json:"participant_id"`
}

type CreateQuestionResponse struct {
	QuestionID int64 `json:"question_id"`
	Round      int   `json:"round"`
}

type CreateProposalResponse struct {
	ProposalID int64 `json:"proposal_id"`
}

type DeleteQuestionResponse struct {
	QuestionID int64  `json:"question_id"`
	Message    string `json:"message"`
}

type ParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type EndorsementResponse struct {
	ProposalID    int64  `json:"proposal_id"`
	ParticipantID int64  `json:"participant_id"`
	Round         int    `json:"round"`
	Endorsed      bool   `json:"endorsed"`
	Message       string `json:"message"`
}

type EndorsersResponse struct {
	ProposalID int64   `json:"proposal_id"`
	Round      int     `json:"round"`
	Endorsers  []int64 `json:"endorsers"`
}

// Domain types

type Participant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Question struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Blurb     string    `json:"blurb"`
	Room      string    `json:"room"`
	AuthorID  int64     `json:"author_id"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
}

type Proposal struct {
	ID           int64     `json:"id"`
	QuestionID   int64     `json:"question_id"`
	AuthorID     int64     `json:"author_id"`
	Title        string    `json:"title"`
	Blurb        string    `json:"blurb"`
	Abstract     string    `json:"abstract"`
	CreatedRound int       `json:"created_round"`
	Endorsements int       `json:"endorsements"` // current round
	CreatedAt    time.Time `json:"created_at"`
}

type QuestionWithProposals struct {
	Question  Question   `json:"question"`
	Proposals []Proposal `json:"proposals"`
}

// Analysis result types

type CoverSet struct {
	Proposals    []int64 `json:"proposals"`
	Coverage     []int64 `json:"coverage"`
	Size         int     `json:"size"`
	CoverageSize int     `json:"coverage_size"`
}

type ParetoResponse struct {
	QuestionID  int64      `json:"question_id"`
	Round       int        `json:"round"`
	Fingerprint string     `json:"fingerprint"`
	Dominance   string     `json:"dominance"`
	Frontier    []CoverSet `json:"frontier"`
}

type KeyPlayer struct {
	ParticipantID    int64 `json:"participant_id"`
	Votes            int   `json:"votes"`
	CoverSetsChanged int   `json:"cover_sets_changed"`
	ProposalsFlipped int   `json:"proposals_flipped"`
	Distance         int   `json:"distance"`
}

type KeyPlayersResponse struct {
	QuestionID  int64       `json:"question_id"`
	Round       int         `json:"round"`
	Fingerprint string      `json:"fingerprint"`
	KeyPlayers  []KeyPlayer `json:"key_players"`
}

type EndorserEffect struct {
	ParticipantID int64  `json:"participant_id"`
	ProposalID    int64  `json:"proposal_id"`
	Toggle        string `json:"toggle"`    // added | withdrawn
	Direction     string `json:"direction"` // gains | loses
}

type EndorserEffectsResponse struct {
	QuestionID  int64            `json:"question_id"`
	Round       int              `json:"round"`
	Fingerprint string           `json:"fingerprint"`
	Effects     []EndorserEffect `json:"effects"`
}

type ProposalRelation struct {
	ProposalID int64  `json:"proposal_id"`
	OtherID    int64  `json:"other_id"`
	Relation   string `json:"relation"`
}

type ProposalRelationsResponse struct {
	QuestionID  int64              `json:"question_id"`
	Round       int                `json:"round"`
	Fingerprint string             `json:"fingerprint"`
	Relations   []ProposalRelation `json:"relations"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
