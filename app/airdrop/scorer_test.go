package airdrop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// MockOracle implements a controllable oracle for testing
type MockOracle struct {
	score float64
	err   error
	calls int
}

func (m *MockOracle) Evaluate(ctx context.Context, c Candidate) (Evaluation, error) {
	m.calls++
	if m.err != nil {
		return Evaluation{}, m.err
	}
	return Evaluation{Score: m.score, Rationale: "mock rationale"}, nil
}

func (m *MockOracle) Name() string {
	return "mock"
}

func testCandidate() Candidate {
	deadline := time.Now().UTC().Add(24 * time.Hour)
	return Candidate{
		SourcePlatform: "binance",
		SourceURL:      "https://binance.com/airdrop/test",
		Title:          "Test Airdrop",
		Deadline:       &deadline,
		PublishedAt:    time.Now().UTC(),
	}
}

func TestScorerApprovesAboveThreshold(t *testing.T) {
	oracle := &MockOracle{score: 8.5}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	result := scorer.Score(context.Background(), testCandidate())

	if result.Verdict != VerdictApproved {
		t.Errorf("Expected approved verdict, got %s", result.Verdict)
	}
	if result.Score != 8.5 {
		t.Errorf("Expected score 8.5, got %f", result.Score)
	}
	if result.Rationale != "mock rationale" {
		t.Errorf("Expected oracle rationale to be carried, got %q", result.Rationale)
	}
}

func TestScorerRejectsBelowThreshold(t *testing.T) {
	oracle := &MockOracle{score: 4.0}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	result := scorer.Score(context.Background(), testCandidate())

	if result.Verdict != VerdictRejected {
		t.Errorf("Expected rejected verdict, got %s", result.Verdict)
	}
	if result.Score != 4.0 {
		t.Errorf("Expected score 4.0, got %f", result.Score)
	}
}

func TestScorerApprovesAtThreshold(t *testing.T) {
	oracle := &MockOracle{score: 7.0}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	result := scorer.Score(context.Background(), testCandidate())

	if result.Verdict != VerdictApproved {
		t.Errorf("Expected score equal to threshold to be approved, got %s", result.Verdict)
	}
}

func TestScorerRejectsMissingFields(t *testing.T) {
	oracle := &MockOracle{score: 9.0}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	c := testCandidate()
	c.Title = "   "

	result := scorer.Score(context.Background(), c)

	if result.Verdict != VerdictRejected {
		t.Errorf("Expected rejected verdict for empty title, got %s", result.Verdict)
	}
	if result.Rationale != "missing required fields" {
		t.Errorf("Expected missing fields rationale, got %q", result.Rationale)
	}
	if oracle.calls != 0 {
		t.Errorf("Oracle should not be consulted for invalid candidates, got %d calls", oracle.calls)
	}
}

func TestScorerRejectsPastDeadline(t *testing.T) {
	oracle := &MockOracle{score: 9.0}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	c := testCandidate()
	expired := time.Now().UTC().Add(-time.Hour)
	c.Deadline = &expired

	result := scorer.Score(context.Background(), c)

	if result.Verdict != VerdictRejected {
		t.Errorf("Expected rejected verdict for past deadline, got %s", result.Verdict)
	}
	if oracle.calls != 0 {
		t.Errorf("Oracle should not be consulted for expired candidates, got %d calls", oracle.calls)
	}
}

func TestScorerDefersOnOracleFailure(t *testing.T) {
	oracle := &MockOracle{err: errors.New("oracle unavailable")}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	c := testCandidate()

	// First two failures defer the candidate
	for i := 0; i < 2; i++ {
		result := scorer.Score(context.Background(), c)
		if result.Verdict != VerdictDeferred {
			t.Fatalf("Attempt %d: expected deferred verdict, got %s", i+1, result.Verdict)
		}
	}

	// Third failure exhausts the attempt cap
	result := scorer.Score(context.Background(), c)
	if result.Verdict != VerdictRejected {
		t.Errorf("Expected rejected verdict after attempt cap, got %s", result.Verdict)
	}
	if !strings.Contains(result.Rationale, "scoring failed after 3 attempts") {
		t.Errorf("Expected exhaustion rationale, got %q", result.Rationale)
	}
}

func TestScorerClearsAttemptsOnSuccess(t *testing.T) {
	oracle := &MockOracle{err: errors.New("oracle unavailable")}
	scorer := NewScorer(oracle, 7.0, 3, time.Second)

	c := testCandidate()

	result := scorer.Score(context.Background(), c)
	if result.Verdict != VerdictDeferred {
		t.Fatalf("Expected deferred verdict, got %s", result.Verdict)
	}

	// Oracle recovers; the attempt counter resets
	oracle.err = nil
	oracle.score = 8.0

	result = scorer.Score(context.Background(), c)
	if result.Verdict != VerdictApproved {
		t.Fatalf("Expected approved verdict after recovery, got %s", result.Verdict)
	}

	// Subsequent failures start from a clean slate
	oracle.err = errors.New("oracle unavailable again")
	result = scorer.Score(context.Background(), c)
	if result.Verdict != VerdictDeferred {
		t.Errorf("Expected deferred verdict on fresh failure, got %s", result.Verdict)
	}
}

func TestVerdictString(t *testing.T) {
	cases := map[Verdict]string{
		VerdictApproved: "approved",
		VerdictRejected: "rejected",
		VerdictDeferred: "deferred",
		Verdict(99):     "unknown",
	}

	for verdict, expected := range cases {
		if verdict.String() != expected {
			t.Errorf("Expected %q, got %q", expected, verdict.String())
		}
	}
}
