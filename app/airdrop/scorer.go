package airdrop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type Verdict int

const (
	VerdictApproved Verdict = iota
	VerdictRejected
	VerdictDeferred
)

func (v Verdict) String() string {
	switch v {
	case VerdictApproved:
		return "approved"
	case VerdictRejected:
		return "rejected"
	case VerdictDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

type ScoreResult struct {
	Score     float64
	Rationale string
	Verdict   Verdict
}

// Scorer runs candidates through the quality gate: mandatory fields, expiry,
// oracle score against the acceptance threshold. The oracle is treated as
// unreliable; failed evaluations defer the candidate instead of settling it,
// bounded by a per-fingerprint attempt cap so a structurally broken listing
// cannot be reprocessed forever.
type Scorer struct {
	oracle      Oracle
	threshold   float64
	maxAttempts int
	timeout     time.Duration

	mu       sync.Mutex
	attempts map[string]int
}

func NewScorer(oracle Oracle, threshold float64, maxAttempts int, timeout time.Duration) *Scorer {
	return &Scorer{
		oracle:      oracle,
		threshold:   threshold,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		attempts:    make(map[string]int),
	}
}

func (s *Scorer) Score(ctx context.Context, c Candidate) ScoreResult {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.SourceURL) == "" {
		return ScoreResult{Verdict: VerdictRejected, Rationale: "missing required fields"}
	}

	if c.Deadline != nil && c.Deadline.Before(time.Now().UTC()) {
		return ScoreResult{Verdict: VerdictRejected, Rationale: "deadline already passed"}
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	eval, err := s.oracle.Evaluate(evalCtx, c)
	if err != nil {
		return s.handleOracleFailure(c, err)
	}

	s.clearAttempts(c.Fingerprint())

	if eval.Score < s.threshold {
		return ScoreResult{
			Score:     eval.Score,
			Rationale: eval.Rationale,
			Verdict:   VerdictRejected,
		}
	}

	return ScoreResult{
		Score:     eval.Score,
		Rationale: eval.Rationale,
		Verdict:   VerdictApproved,
	}
}

// handleOracleFailure defers the candidate for the next cycle until the
// attempt cap is reached, then rejects it for good.
func (s *Scorer) handleOracleFailure(c Candidate, err error) ScoreResult {
	fingerprint := c.Fingerprint()

	s.mu.Lock()
	s.attempts[fingerprint]++
	count := s.attempts[fingerprint]
	s.mu.Unlock()

	if count >= s.maxAttempts {
		s.clearAttempts(fingerprint)
		return ScoreResult{
			Verdict:   VerdictRejected,
			Rationale: fmt.Sprintf("scoring failed after %d attempts: %v", count, err),
		}
	}

	return ScoreResult{
		Verdict:   VerdictDeferred,
		Rationale: err.Error(),
	}
}

func (s *Scorer) clearAttempts(fingerprint string) {
	s.mu.Lock()
	delete(s.attempts, fingerprint)
	s.mu.Unlock()
}
