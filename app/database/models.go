package database

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Airdrop is the persistent record for a discovered listing, keyed by its
// fingerprint. FirstSeenAt and LastNotifiedAt are owned by the store and the
// notifier respectively and survive re-upserts of the candidate snapshot.
type Airdrop struct {
	Fingerprint    string
	Platform       string
	URL            string
	Title          string
	Description    string
	RewardHint     string
	Deadline       *time.Time
	RawPayload     string
	Score          float64
	Rationale      string
	Status         Status
	FirstSeenAt    time.Time
	LastNotifiedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Stats struct {
	Total        int
	Approved     int
	Rejected     int
	Expired      int
	Notified     int
	AverageScore float64
}
