package notify

import (
	"context"
	"log/slog"

	"github.com/dropcomb/dropcomb/app/database"
)

// Channel delivers one batch of records per dispatch. Delivery is not
// assumed idempotent; the notifier's last_notified_at gating is the sole
// duplicate-suppression mechanism. An error return means the batch was not
// accepted and the same records stay eligible for the next window.
type Channel interface {
	DeliverBatch(ctx context.Context, records []database.Airdrop) error
	Name() string
}

var _ Channel = (*LogChannel)(nil)

// LogChannel writes batches to the log. Used when no webhook is configured,
// typically in local runs.
type LogChannel struct{}

func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

func (c *LogChannel) Name() string {
	return "log"
}

func (c *LogChannel) DeliverBatch(ctx context.Context, records []database.Airdrop) error {
	for _, record := range records {
		slog.Info("Airdrop notification",
			"title", record.Title,
			"platform", record.Platform,
			"score", record.Score,
			"url", record.URL)
	}
	return nil
}
