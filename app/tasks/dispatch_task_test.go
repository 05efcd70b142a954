package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/notify"
)

// MockChannel implements notify.Channel with controllable failures
type MockChannel struct {
	mu        sync.Mutex
	err       error
	delivered int
}

func (m *MockChannel) Name() string {
	return "mock"
}

func (m *MockChannel) DeliverBatch(ctx context.Context, records []database.Airdrop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.delivered += len(records)
	return nil
}

func approvedRecord(fingerprint string) database.Airdrop {
	return database.Airdrop{
		Fingerprint: fingerprint,
		Platform:    "binance",
		Title:       "Test Airdrop",
		Score:       8.0,
		Status:      database.StatusApproved,
		FirstSeenAt: time.Now().UTC(),
	}
}

func TestDispatchTaskSendsDueRecords(t *testing.T) {
	repo := NewMockRepository()
	repo.Upsert(approvedRecord("fp-1"))
	repo.Upsert(approvedRecord("fp-2"))

	channel := &MockChannel{}
	notifier := notify.NewNotifier(repo, channel, 10)

	window := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	prevWindow := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	task := NewDispatchTask(notifier, window, prevWindow)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if channel.delivered != 2 {
		t.Errorf("Expected 2 records delivered, got %d", channel.delivered)
	}
}

func TestDispatchTaskNotifiedRecordsNotResent(t *testing.T) {
	repo := NewMockRepository()
	repo.Upsert(approvedRecord("fp-1"))

	channel := &MockChannel{}
	notifier := notify.NewNotifier(repo, channel, 10)

	// Morning window sends the record
	morning := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	morningPrev := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	if err := NewDispatchTask(notifier, morning, morningPrev).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if channel.delivered != 1 {
		t.Fatalf("Expected 1 record delivered in the morning, got %d", channel.delivered)
	}

	// Evening window cuts off at the morning window; nothing new goes out
	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if err := NewDispatchTask(notifier, evening, morning).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if channel.delivered != 1 {
		t.Errorf("Expected no re-send in the evening window, got %d total", channel.delivered)
	}
}

func TestDispatchTaskErrorSurfacesForRetry(t *testing.T) {
	repo := NewMockRepository()
	repo.Upsert(approvedRecord("fp-1"))

	channel := &MockChannel{err: errors.New("endpoint unreachable")}
	notifier := notify.NewNotifier(repo, channel, 10)

	window := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	prevWindow := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	task := NewDispatchTask(notifier, window, prevWindow)
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected dispatch failure to surface as a task error")
	}
}
