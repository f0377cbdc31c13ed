// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/danielhkuo/quickly-consensus/models"
	"github.com/danielhkuo/quickly-consensus/testutil"
)

func endorsementRequest(method string, questionID, proposalID int64, body interface{}) *http.Request {
	qid, pid := fmt.Sprint(questionID), fmt.Sprint(proposalID)
	req := testutil.MakeRequest(method, "/questions/"+qid+"/proposals/"+pid+"/endorsements", body, nil)
	req.SetPathValue("id", qid)
	req.SetPathValue("pid", pid)
	return req
}

func TestEndorseIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEndorsementHandler(db)

	alice := testutil.CreateTestParticipant(t, db, "Alice")
	questionID := testutil.CreateTestQuestion(t, db, alice, "Where to eat?")
	pizza := testutil.AddTestProposal(t, db, questionID, alice, "Pizza")

	body := models.EndorsementRequest{ParticipantID: alice}

	w := httptest.NewRecorder()
	handler.Endorse(w, endorsementRequest("POST", questionID, pizza, body))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.EndorsementResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Endorsed || resp.Round != 1 {
		t.Errorf("Expected endorsed in round 1, got %+v", resp)
	}

	// Second endorsement is a no-op
	w = httptest.NewRecorder()
	handler.Endorse(w, endorsementRequest("POST", questionID, pizza, body))
	testutil.AssertStatus(t, w, http.StatusOK)

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM endorsement WHERE proposal_id = $1", pizza).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 endorsement row, got %d", count)
	}
}

func TestEndorseErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEndorsementHandler(db)

	alice := testutil.CreateTestParticipant(t, db, "Alice")
	questionID := testutil.CreateTestQuestion(t, db, alice, "Where to eat?")
	otherID := testutil.CreateTestQuestion(t, db, alice, "Other question")
	pizza := testutil.AddTestProposal(t, db, questionID, alice, "Pizza")

	tests := []struct {
		name           string
		questionID     int64
		proposalID     int64
		body           interface{}
		expectedStatus int
	}{
		{"unknown participant", questionID, pizza, models.EndorsementRequest{ParticipantID: alice + 10}, http.StatusNotFound},
		{"missing participant", questionID, pizza, models.EndorsementRequest{}, http.StatusBadRequest},
		{"unknown proposal", questionID, pizza + 10, models.EndorsementRequest{ParticipantID: alice}, http.StatusNotFound},
		{"proposal of another question", otherID, pizza, models.EndorsementRequest{ParticipantID: alice}, http.StatusNotFound},
		{"invalid JSON", questionID, pizza, "oops", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Endorse(w, endorsementRequest("POST", tt.questionID, tt.proposalID, tt.body))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestWithdrawEndorsement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEndorsementHandler(db)

	alice := testutil.CreateTestParticipant(t, db, "Alice")
	questionID := testutil.CreateTestQuestion(t, db, alice, "Where to eat?")
	pizza := testutil.AddTestProposal(t, db, questionID, alice, "Pizza")
	testutil.EndorseTestProposal(t, db, pizza, alice)

	body := models.EndorsementRequest{ParticipantID: alice}

	w := httptest.NewRecorder()
	handler.Withdraw(w, endorsementRequest("DELETE", questionID, pizza, body))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EndorsementResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Endorsed || resp.Message != "Endorsement removed" {
		t.Errorf("Unexpected withdraw response %+v", resp)
	}

	// Withdrawing again succeeds without effect
	w = httptest.NewRecorder()
	handler.Withdraw(w, endorsementRequest("DELETE", questionID, pizza, body))
	testutil.AssertStatus(t, w, http.StatusOK)

	resp = models.EndorsementResponse{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Not endorsed" {
		t.Errorf("Expected 'Not endorsed', got '%s'", resp.Message)
	}
}

func TestListEndorsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEndorsementHandler(db)

	alice := testutil.CreateTestParticipant(t, db, "Alice")
	bob := testutil.CreateTestParticipant(t, db, "Bob")
	questionID := testutil.CreateTestQuestion(t, db, alice, "Where to eat?")
	pizza := testutil.AddTestProposal(t, db, questionID, alice, "Pizza")
	testutil.EndorseTestProposal(t, db, pizza, bob)
	testutil.EndorseTestProposal(t, db, pizza, alice)

	list := func() models.EndorsersResponse {
		t.Helper()
		qid, pid := fmt.Sprint(questionID), fmt.Sprint(pizza)
		req := testutil.MakeRequest("GET", "/questions/"+qid+"/proposals/"+pid+"/endorsers", nil, nil)
		req.SetPathValue("id", qid)
		req.SetPathValue("pid", pid)
		w := httptest.NewRecorder()

		handler.ListEndorsers(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.EndorsersResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	resp := list()
	if !slices.Equal(resp.Endorsers, []int64{alice, bob}) {
		t.Errorf("Expected endorsers [%d %d], got %v", alice, bob, resp.Endorsers)
	}

	// Endorsements from earlier rounds are not listed
	if _, err := db.Exec("UPDATE question SET round = 2 WHERE id = $1", questionID); err != nil {
		t.Fatal(err)
	}
	resp = list()
	if resp.Round != 2 || len(resp.Endorsers) != 0 {
		t.Errorf("Expected no endorsers in round 2, got %+v", resp)
	}
}
