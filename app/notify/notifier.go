package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dropcomb/dropcomb/app/database"
)

// Notifier assembles and dispatches one batch per window. last_notified_at
// only advances after the channel confirmed the batch, so a failed delivery
// leaves every record eligible for the next window (at-least-once).
type Notifier struct {
	repo       database.AirdropRepository
	channel    Channel
	batchLimit int
}

func NewNotifier(repo database.AirdropRepository, channel Channel, batchLimit int) *Notifier {
	return &Notifier{
		repo:       repo,
		channel:    channel,
		batchLimit: batchLimit,
	}
}

// Dispatch runs one notification pass for the given window. prevWindow is
// the eligibility cutoff: records notified at or after it are skipped.
// Returns how many records went out.
func (n *Notifier) Dispatch(ctx context.Context, window, prevWindow time.Time) (int, error) {
	now := time.Now().UTC()

	expired, err := n.repo.ExpireOverdue(now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue records: %w", err)
	}
	if expired > 0 {
		slog.Info("Expired overdue airdrops", "count", expired)
	}

	records, err := n.repo.ListDueForNotification(prevWindow, n.batchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to select records for dispatch: %w", err)
	}

	if len(records) == 0 {
		slog.Debug("No airdrops due for notification", "window", window)
		return 0, nil
	}

	if err := n.channel.DeliverBatch(ctx, records); err != nil {
		// last_notified_at stays untouched; the batch is retried next window.
		return 0, fmt.Errorf("channel %s rejected batch of %d: %w", n.channel.Name(), len(records), err)
	}

	fingerprints := make([]string, 0, len(records))
	for _, record := range records {
		fingerprints = append(fingerprints, record.Fingerprint)
	}

	if err := n.repo.MarkNotified(fingerprints, now); err != nil {
		// Delivery succeeded but the watermark didn't advance; the records
		// will be re-sent next window rather than lost.
		return len(records), fmt.Errorf("failed to mark %d records notified: %w", len(records), err)
	}

	return len(records), nil
}
