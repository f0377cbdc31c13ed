// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickly-consensus/models"
	"github.com/danielhkuo/quickly-consensus/testutil"
)

// TestConcurrentEndorsements verifies that simultaneous endorsements from
// different participants are all recorded exactly once
func TestConcurrentEndorsements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEndorsementHandler(db)

	author := testutil.CreateTestParticipant(t, db, "Author")
	questionID := testutil.CreateTestQuestion(t, db, author, "Concurrent")
	proposalID := testutil.AddTestProposal(t, db, questionID, author, "Option A")

	numParticipants := 10
	participants := make([]int64, numParticipants)
	for i := range participants {
		participants[i] = testutil.CreateTestParticipant(t, db, "Endorser"+string(rune('A'+i)))
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	// Each participant endorses twice at the same time
	for i := 0; i < numParticipants*2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := models.EndorsementRequest{ParticipantID: participants[idx%numParticipants]}
			w := httptest.NewRecorder()
			handler.Endorse(w, endorsementRequest("POST", questionID, proposalID, body))

			if w.Code == http.StatusCreated || w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numParticipants*2 {
		t.Errorf("Expected %d successful requests, got %d", numParticipants*2, successCount.Load())
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM endorsement WHERE proposal_id = $1", proposalID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != numParticipants {
		t.Errorf("Expected %d endorsements, got %d", numParticipants, count)
	}
}

// TestConcurrentAnalyses runs every analysis endpoint in parallel against
// the same snapshot
func TestConcurrentAnalyses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := seedQuestion(t, db,
		[]string{"u1", "u2"},
		[]string{"u2", "u3"},
		[]string{"u4"},
		[]string{"u1", "u4"},
	)
	h := newAnalysisHandler(t, db, testutil.GetTestConfig())

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"pareto", h.Pareto},
		{"key_players", h.KeyPlayers},
		{"endorser_effects", h.EndorserEffects},
		{"proposal_relations", h.ProposalRelations},
	}

	var failures atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		for _, ep := range endpoints {
			wg.Add(1)
			go func(handler http.HandlerFunc, name string) {
				defer wg.Done()
				w := httptest.NewRecorder()
				handler(w, analysisRequest(q.id, name, nil))
				if w.Code != http.StatusOK {
					failures.Add(1)
				}
			}(ep.handler, ep.name)
		}
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("Expected all analyses to succeed, %d failed", failures.Load())
	}

	// Results are deterministic regardless of interleaving
	first := getPareto(t, h, q.id)
	second := getPareto(t, h, q.id)
	if len(first.Frontier) != len(second.Frontier) || first.Fingerprint != second.Fingerprint {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}
