package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dropcomb/dropcomb/app/notify"
)

// DispatchTask runs one notification pass for a dispatch window. A failed
// dispatch surfaces as a task error so the scheduler's bounded retry kicks
// in; records stay eligible either way because last_notified_at only moves
// on confirmed delivery.
type DispatchTask struct {
	Task
	notifier   *notify.Notifier
	window     time.Time
	prevWindow time.Time
}

func NewDispatchTask(notifier *notify.Notifier, window, prevWindow time.Time) *DispatchTask {
	return &DispatchTask{
		Task:       NewTask(TaskTypeDispatchBatch, window.Format("15:04")),
		notifier:   notifier,
		window:     window,
		prevWindow: prevWindow,
	}
}

func (t *DispatchTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sent, err := t.notifier.Dispatch(ctx, t.window, t.prevWindow)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "DispatchBatch",
		"window", t.window.Format(time.RFC3339),
		"duration", t.GetDuration(),
		"sent", sent)

	return nil
}
