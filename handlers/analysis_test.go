// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/danielhkuo/quickly-consensus/cliparse"
	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/models"
	"github.com/danielhkuo/quickly-consensus/pareto"
	"github.com/danielhkuo/quickly-consensus/testutil"
)

// seededQuestion is a question whose proposals were endorsed by named
// participants.
type seededQuestion struct {
	id        int64
	proposals []int64
	people    map[string]int64
}

// seedQuestion creates one proposal per endorser list, in order.
func seedQuestion(t *testing.T, conn *db.DB, endorsers ...[]string) seededQuestion {
	t.Helper()

	author := testutil.CreateTestParticipant(t, conn, "Author")
	q := seededQuestion{
		id:     testutil.CreateTestQuestion(t, conn, author, "Seeded"),
		people: make(map[string]int64),
	}

	for i, names := range endorsers {
		pid := testutil.AddTestProposal(t, conn, q.id, author, fmt.Sprintf("Proposal %d", i+1))
		q.proposals = append(q.proposals, pid)
		for _, name := range names {
			id, ok := q.people[name]
			if !ok {
				id = testutil.CreateTestParticipant(t, conn, name)
				q.people[name] = id
			}
			testutil.EndorseTestProposal(t, conn, pid, id)
		}
	}

	return q
}

func newAnalysisHandler(t *testing.T, conn *db.DB, cfg cliparse.Config) *AnalysisHandler {
	t.Helper()
	svc, _ := testutil.NewTestService(t, cfg)
	return NewAnalysisHandler(conn, svc)
}

func analysisRequest(questionID int64, endpoint string, headers map[string]string) *http.Request {
	id := fmt.Sprint(questionID)
	req := testutil.MakeRequest("GET", "/questions/"+id+"/"+endpoint, nil, headers)
	req.SetPathValue("id", id)
	return req
}

func getPareto(t *testing.T, h *AnalysisHandler, questionID int64) models.ParetoResponse {
	t.Helper()
	w := httptest.NewRecorder()
	h.Pareto(w, analysisRequest(questionID, "pareto", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ParetoResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestParetoDisjointEndorsers(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2"}, []string{"u3"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	resp := getPareto(t, h, q.id)

	if resp.QuestionID != q.id || resp.Round != 1 {
		t.Errorf("Unexpected question/round %d/%d", resp.QuestionID, resp.Round)
	}
	if resp.Dominance != "coverage" {
		t.Errorf("Expected coverage dominance, got %s", resp.Dominance)
	}
	if resp.Fingerprint == "" {
		t.Error("Expected fingerprint")
	}
	if len(resp.Frontier) != 1 {
		t.Fatalf("Expected exactly one cover set, got %+v", resp.Frontier)
	}
	got := resp.Frontier[0]
	if !slices.Equal(got.Proposals, q.proposals) {
		t.Errorf("Expected cover set %v, got %v", q.proposals, got.Proposals)
	}
	if got.Size != 2 || got.CoverageSize != 3 || len(got.Coverage) != 3 {
		t.Errorf("Expected size 2 covering 3 endorsers, got %+v", got)
	}
}

func TestParetoTradeoffMode(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2"}, []string{"u3"})

	cfg := testutil.GetTestConfig()
	cfg.Dominance = pareto.DominanceTradeoff
	h := newAnalysisHandler(t, conn, cfg)

	resp := getPareto(t, h, q.id)

	if resp.Dominance != "tradeoff" {
		t.Errorf("Expected tradeoff dominance, got %s", resp.Dominance)
	}
	// {P2} and {P1} are each smaller than the full cover
	if len(resp.Frontier) != 3 {
		t.Fatalf("Expected 3 cover sets on the trade-off curve, got %+v", resp.Frontier)
	}
	if resp.Frontier[2].Size != 2 {
		t.Errorf("Expected the full cover last, got %+v", resp.Frontier[2])
	}
}

func TestParetoSubsetProposal(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2", "u3"}, []string{"u1", "u2"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	resp := getPareto(t, h, q.id)
	if len(resp.Frontier) != 1 || !slices.Equal(resp.Frontier[0].Proposals, q.proposals[:1]) {
		t.Fatalf("Expected frontier {P1}, got %+v", resp.Frontier)
	}

	w := httptest.NewRecorder()
	h.ProposalRelations(w, analysisRequest(q.id, "proposal_relations", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var rels models.ProposalRelationsResponse
	testutil.AssertJSON(t, w, &rels)

	want := []models.ProposalRelation{
		{ProposalID: q.proposals[0], OtherID: q.proposals[1], Relation: models.RelationSuperset},
	}
	if !slices.Equal(rels.Relations, want) {
		t.Errorf("Expected relations %+v, got %+v", want, rels.Relations)
	}
}

func TestKeyPlayersRedundantEndorser(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2"}, []string{"u3"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	h.KeyPlayers(w, analysisRequest(q.id, "key_players", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.KeyPlayersResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.KeyPlayers) != 3 {
		t.Fatalf("Expected 3 key players, got %+v", resp.KeyPlayers)
	}
	if resp.KeyPlayers[0].ParticipantID != q.people["u3"] || resp.KeyPlayers[0].Distance == 0 {
		t.Errorf("Expected u3 to be the key player, got %+v", resp.KeyPlayers[0])
	}
	for _, kp := range resp.KeyPlayers[1:] {
		if kp.Distance != 0 {
			t.Errorf("Expected distance 0 for redundant endorser, got %+v", kp)
		}
	}
	if resp.KeyPlayers[1].ParticipantID != q.people["u1"] {
		t.Errorf("Expected ties ordered by participant id, got %+v", resp.KeyPlayers[1:])
	}
}

func TestKeyPlayersTop(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2"}, []string{"u2", "u3"}, []string{"u2"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	t.Run("top 1", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.KeyPlayers(w, analysisRequest(q.id, "key_players?top=1", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.KeyPlayersResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.KeyPlayers) != 1 || resp.KeyPlayers[0].ParticipantID != q.people["u2"] {
			t.Errorf("Expected only u2, got %+v", resp.KeyPlayers)
		}
	})

	for _, bad := range []string{"-1", "many"} {
		t.Run("top="+bad, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.KeyPlayers(w, analysisRequest(q.id, "key_players?top="+bad, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestEndorserEffectsEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1", "u2"}, []string{"u3"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	h.EndorserEffects(w, analysisRequest(q.id, "endorser_effects", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EndorserEffectsResponse
	testutil.AssertJSON(t, w, &resp)

	// Only u3 withdrawing from P2 empties it and drops it from the frontier
	want := []models.EndorserEffect{
		{ParticipantID: q.people["u3"], ProposalID: q.proposals[1], Toggle: "withdrawn", Direction: "loses"},
	}
	if !slices.Equal(resp.Effects, want) {
		t.Errorf("Expected effects %+v, got %+v", want, resp.Effects)
	}
}

func TestAnalysesOfEmptyQuestion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn)
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"pareto", h.Pareto},
		{"key_players", h.KeyPlayers},
		{"endorser_effects", h.EndorserEffects},
		{"proposal_relations", h.ProposalRelations},
	}

	for _, ep := range endpoints {
		t.Run(ep.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ep.handler(w, analysisRequest(q.id, ep.name, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var body map[string]any
			testutil.AssertJSON(t, w, &body)
			for key, v := range body {
				if list, ok := v.([]any); ok && len(list) != 0 {
					t.Errorf("Expected empty %s, got %v", key, list)
				}
			}
		})
	}

	resp := getPareto(t, h, q.id)
	if resp.Frontier == nil {
		t.Error("Expected frontier to be an empty list, not null")
	}
}

func TestAnalysisErrors(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1"}, []string{"u2"}, []string{"u3"})

	cfg := testutil.GetTestConfig()
	cfg.MaxProposals = 2
	h := newAnalysisHandler(t, conn, cfg)

	t.Run("too many proposals for key players", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.KeyPlayers(w, analysisRequest(q.id, "key_players", nil))
		testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
		if etag := w.Header().Get("ETag"); etag != "" {
			t.Errorf("Expected no ETag on a failed analysis, got %s", etag)
		}
	})

	t.Run("too many proposals for effects", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.EndorserEffects(w, analysisRequest(q.id, "endorser_effects", nil))
		testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
	})

	t.Run("frontier is not capped by proposal count", func(t *testing.T) {
		getPareto(t, h, q.id)
	})

	t.Run("candidate limit", func(t *testing.T) {
		small := testutil.GetTestConfig()
		small.MaxCandidates = 2
		w := httptest.NewRecorder()
		newAnalysisHandler(t, conn, small).Pareto(w, analysisRequest(q.id, "pareto", nil))
		testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
		if etag := w.Header().Get("ETag"); etag != "" {
			t.Errorf("Expected no ETag on a failed analysis, got %s", etag)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Pareto(w, analysisRequest(q.id+100, "pareto", nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("invalid question id", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/questions/x/pareto", nil, nil)
		req.SetPathValue("id", "x")
		w := httptest.NewRecorder()
		h.Pareto(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestParetoETag(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	q := seedQuestion(t, conn, []string{"u1"}, []string{"u2"})
	h := newAnalysisHandler(t, conn, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	h.Pareto(w, analysisRequest(q.id, "pareto", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}

	w = httptest.NewRecorder()
	h.Pareto(w, analysisRequest(q.id, "pareto", map[string]string{"If-None-Match": etag}))
	testutil.AssertStatus(t, w, http.StatusNotModified)
	if w.Header().Get("ETag") != etag {
		t.Errorf("Expected 304 to repeat ETag %s, got %s", etag, w.Header().Get("ETag"))
	}

	// A new endorsement changes the snapshot and the tag
	testutil.EndorseTestProposal(t, conn, q.proposals[0], q.people["u2"])
	w = httptest.NewRecorder()
	h.Pareto(w, analysisRequest(q.id, "pareto", map[string]string{"If-None-Match": etag}))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("ETag") == etag {
		t.Error("Expected ETag to change with the snapshot")
	}
}
