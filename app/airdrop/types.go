package airdrop

import (
	"context"
	"time"
)

// Candidate is a freshly fetched listing produced by a source adapter.
// It is ephemeral: it only becomes durable once the pipeline accepts or
// rejects it and writes an airdrops record keyed by its fingerprint.
type Candidate struct {
	SourcePlatform string
	SourceURL      string
	Title          string
	Description    string
	RewardHint     string
	Deadline       *time.Time
	PublishedAt    time.Time
	RawPayload     string
}

// Evaluation is the scoring oracle output for a single candidate.
// Scores are on a 0-10 scale.
type Evaluation struct {
	Score     float64
	Rationale string
}

// Oracle evaluates a candidate and returns a quality score. Implementations
// live in app/oracle and must tolerate concurrent calls; the pipeline treats
// every call as fallible and bounded by the caller's context.
type Oracle interface {
	Evaluate(ctx context.Context, c Candidate) (Evaluation, error)
	Name() string
}
