// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/quickly-consensus/analysis"
	"github.com/danielhkuo/quickly-consensus/cliparse"
	"github.com/danielhkuo/quickly-consensus/db"
	"github.com/danielhkuo/quickly-consensus/pareto"
)

// TestDBURL is an in-memory SQLite database, private to one connection
const TestDBURL = "file::memory:"

// SetupTestDB creates a fresh in-memory database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     TestDBURL,
		DatabaseType:    db.DialectSQLite,
		MaxProposals:    40,
		MaxEndorsers:    200,
		MaxCandidates:   pareto.DefaultMaxCandidates,
		CacheSize:       16,
		Dominance:       pareto.DominanceCoverage,
		AnalysisTimeout: 10 * time.Second,
	}
}

// NewTestService creates an analysis service for cfg on a private registry.
// The service is closed when the test ends.
func NewTestService(t *testing.T, cfg cliparse.Config) (*analysis.Service, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	svc, err := analysis.NewService(analysis.ConfigFrom(cfg), reg)
	if err != nil {
		t.Fatalf("Failed to create analysis service: %v", err)
	}
	t.Cleanup(svc.Close)

	return svc, reg
}

// CreateTestParticipant inserts a participant and returns its ID
func CreateTestParticipant(t *testing.T, conn *db.DB, name string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO participant (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`, name, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id
}

// CreateTestQuestion inserts a question in round 1 and returns its ID
func CreateTestQuestion(t *testing.T, conn *db.DB, authorID int64, title string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO question (title, blurb, room, author_id, round, created_at)
		VALUES ($1, 'A test question', 'test', $2, 1, $3)
		RETURNING id
	`, title, authorID, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return id
}

// AddTestProposal adds a proposal to a question and returns its ID
func AddTestProposal(t *testing.T, conn *db.DB, questionID, authorID int64, title string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO proposal (question_id, author_id, title, created_round, created_at)
		SELECT $1, $2, $3, round, $4 FROM question WHERE id = $1
		RETURNING id
	`, questionID, authorID, title, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}

	return id
}

// EndorseTestProposal endorses a proposal in its question's current round
func EndorseTestProposal(t *testing.T, conn *db.DB, proposalID, participantID int64) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO endorsement (proposal_id, participant_id, round, created_at)
		SELECT p.id, $2, q.round, $3
		FROM proposal p JOIN question q ON p.question_id = q.id
		WHERE p.id = $1
	`, proposalID, participantID, time.Now())
	if err != nil {
		t.Fatalf("Failed to endorse test proposal: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
