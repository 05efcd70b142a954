package database

import (
	"time"
)

// AirdropRepository defines the store operations the pipeline needs. The
// store is the single source of truth shared across process restarts; every
// other cache of fingerprints is an optimization layered on top of it.
type AirdropRepository interface {
	GetByFingerprint(fingerprint string) (*Airdrop, error)
	Upsert(record Airdrop) error

	ListDueForNotification(since time.Time, limit int) ([]Airdrop, error)
	MarkNotified(fingerprints []string, notifiedAt time.Time) error
	ExpireOverdue(now time.Time) (int, error)

	ListRecent(limit int) ([]Airdrop, error)
	GetStats() (*Stats, error)
}
