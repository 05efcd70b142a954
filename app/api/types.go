package api

import (
	"time"

	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/source"
	"github.com/dropcomb/dropcomb/app/tasks"
)

type Handler struct {
	repo        database.AirdropRepository
	configCache *source.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
}

type airdropResponse struct {
	Fingerprint    string     `json:"fingerprint"`
	Platform       string     `json:"platform"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	RewardHint     string     `json:"reward_hint,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Score          float64    `json:"score"`
	Rationale      string     `json:"rationale,omitempty"`
	Status         string     `json:"status"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
}

func toAirdropResponse(record database.Airdrop) airdropResponse {
	return airdropResponse{
		Fingerprint:    record.Fingerprint,
		Platform:       record.Platform,
		URL:            record.URL,
		Title:          record.Title,
		Description:    record.Description,
		RewardHint:     record.RewardHint,
		Deadline:       record.Deadline,
		Score:          record.Score,
		Rationale:      record.Rationale,
		Status:         string(record.Status),
		FirstSeenAt:    record.FirstSeenAt,
		LastNotifiedAt: record.LastNotifiedAt,
	}
}
