package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropcomb/dropcomb/app/airdrop"
	"github.com/dropcomb/dropcomb/app/cache"
	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/source"
)

// MockRepository implements database.AirdropRepository backed by a map
type MockRepository struct {
	mu      sync.Mutex
	records map[string]database.Airdrop
	upserts int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[string]database.Airdrop)}
}

func (m *MockRepository) GetByFingerprint(fingerprint string) (*database.Airdrop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[fingerprint]; ok {
		return &record, nil
	}
	return nil, nil
}

func (m *MockRepository) Upsert(record database.Airdrop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.records[record.Fingerprint] = record
	return nil
}

func (m *MockRepository) ListDueForNotification(since time.Time, limit int) ([]database.Airdrop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []database.Airdrop
	for _, record := range m.records {
		if record.Status != database.StatusApproved {
			continue
		}
		if record.LastNotifiedAt != nil && !record.LastNotifiedAt.Before(since) {
			continue
		}
		due = append(due, record)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (m *MockRepository) MarkNotified(fingerprints []string, notifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fp := range fingerprints {
		record := m.records[fp]
		at := notifiedAt
		record.LastNotifiedAt = &at
		m.records[fp] = record
	}
	return nil
}

func (m *MockRepository) ExpireOverdue(now time.Time) (int, error) {
	return 0, nil
}

func (m *MockRepository) ListRecent(limit int) ([]database.Airdrop, error) {
	return nil, nil
}

func (m *MockRepository) GetStats() (*database.Stats, error) {
	return &database.Stats{}, nil
}

func (m *MockRepository) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

// MockAdapter returns a fixed candidate set
type MockAdapter struct {
	name       string
	platform   string
	candidates []airdrop.Candidate
	err        error
}

func (m *MockAdapter) Name() string {
	return m.name
}

func (m *MockAdapter) Platform() string {
	return m.platform
}

func (m *MockAdapter) Fetch(ctx context.Context) ([]airdrop.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

// TitleOracle scores by candidate title so tests can steer verdicts
type TitleOracle struct {
	scores map[string]float64
}

func (o *TitleOracle) Evaluate(ctx context.Context, c airdrop.Candidate) (airdrop.Evaluation, error) {
	return airdrop.Evaluation{Score: o.scores[c.Title], Rationale: "title score"}, nil
}

func (o *TitleOracle) Name() string {
	return "title"
}

func makeCandidate(platform, path, title string) airdrop.Candidate {
	return airdrop.Candidate{
		SourcePlatform: platform,
		SourceURL:      "https://" + platform + ".example.com/" + path,
		Title:          title,
		PublishedAt:    time.Now().UTC(),
	}
}

func TestCrawlCycleSettlesCandidates(t *testing.T) {
	repo := NewMockRepository()
	fpCache := cache.NewMemoryCache()
	oracle := &TitleOracle{scores: map[string]float64{
		"High Quality Airdrop": 9.0,
		"Low Quality Airdrop":  2.0,
	}}
	scorer := airdrop.NewScorer(oracle, 7.0, 3, time.Second)

	adapters := []source.Adapter{
		&MockAdapter{name: "a", platform: "binance", candidates: []airdrop.Candidate{
			makeCandidate("binance", "high", "High Quality Airdrop"),
			makeCandidate("binance", "low", "Low Quality Airdrop"),
		}},
	}

	task := NewCrawlCycleTask(adapters, repo, fpCache, scorer)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	high, err := repo.GetByFingerprint(airdrop.Fingerprint("binance", "https://binance.example.com/high"))
	if err != nil {
		t.Fatal(err)
	}
	if high == nil {
		t.Fatal("Expected high-scoring candidate to be stored")
	}
	if high.Status != database.StatusApproved {
		t.Errorf("Expected approved status, got %s", high.Status)
	}

	low, err := repo.GetByFingerprint(airdrop.Fingerprint("binance", "https://binance.example.com/low"))
	if err != nil {
		t.Fatal(err)
	}
	if low == nil {
		t.Fatal("Expected low-scoring candidate to be stored")
	}
	if low.Status != database.StatusRejected {
		t.Errorf("Expected rejected status, got %s", low.Status)
	}
}

func TestCrawlCycleIdempotent(t *testing.T) {
	repo := NewMockRepository()
	fpCache := cache.NewMemoryCache()
	oracle := &TitleOracle{scores: map[string]float64{"Airdrop": 9.0}}
	scorer := airdrop.NewScorer(oracle, 7.0, 3, time.Second)

	adapters := []source.Adapter{
		&MockAdapter{name: "a", platform: "binance", candidates: []airdrop.Candidate{
			makeCandidate("binance", "same", "Airdrop"),
		}},
	}

	// Two crawl cycles over the same listing
	for i := 0; i < 2; i++ {
		task := NewCrawlCycleTask(adapters, repo, fpCache, scorer)
		if err := task.Execute(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if repo.UpsertCount() != 1 {
		t.Errorf("Expected 1 upsert across two cycles, got %d", repo.UpsertCount())
	}
}

func TestCrawlCycleCrossAdapterDedup(t *testing.T) {
	repo := NewMockRepository()
	fpCache := cache.NewMemoryCache()
	oracle := &TitleOracle{scores: map[string]float64{"Shared Airdrop": 9.0}}
	scorer := airdrop.NewScorer(oracle, 7.0, 3, time.Second)

	// Two adapters list the same campaign; query params do not change identity
	shared := makeCandidate("binance", "shared", "Shared Airdrop")
	tracked := shared
	tracked.SourceURL = shared.SourceURL + "?utm_source=aggregator"

	adapters := []source.Adapter{
		&MockAdapter{name: "a", platform: "binance", candidates: []airdrop.Candidate{shared}},
		&MockAdapter{name: "b", platform: "binance", candidates: []airdrop.Candidate{tracked}},
	}

	task := NewCrawlCycleTask(adapters, repo, fpCache, scorer)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if repo.UpsertCount() != 1 {
		t.Errorf("Expected 1 upsert for shared campaign, got %d", repo.UpsertCount())
	}
}

func TestCrawlCycleAdapterFailureIsolated(t *testing.T) {
	repo := NewMockRepository()
	fpCache := cache.NewMemoryCache()
	oracle := &TitleOracle{scores: map[string]float64{"Airdrop": 9.0}}
	scorer := airdrop.NewScorer(oracle, 7.0, 3, time.Second)

	adapters := []source.Adapter{
		&MockAdapter{name: "broken", platform: "okx", err: errors.New("connection refused")},
		&MockAdapter{name: "working", platform: "binance", candidates: []airdrop.Candidate{
			makeCandidate("binance", "ok", "Airdrop"),
		}},
	}

	task := NewCrawlCycleTask(adapters, repo, fpCache, scorer)

	// A failing adapter never fails the cycle
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if repo.UpsertCount() != 1 {
		t.Errorf("Expected working adapter's candidate stored, got %d upserts", repo.UpsertCount())
	}
}

func TestCrawlCycleDeferredNotStored(t *testing.T) {
	repo := NewMockRepository()
	fpCache := cache.NewMemoryCache()

	failingOracle := &failOracle{}
	scorer := airdrop.NewScorer(failingOracle, 7.0, 3, time.Second)

	adapters := []source.Adapter{
		&MockAdapter{name: "a", platform: "binance", candidates: []airdrop.Candidate{
			makeCandidate("binance", "flaky", "Airdrop"),
		}},
	}

	task := NewCrawlCycleTask(adapters, repo, fpCache, scorer)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Deferred candidates leave no record, so the next cycle re-derives them
	if repo.UpsertCount() != 0 {
		t.Errorf("Expected no upserts for deferred candidate, got %d", repo.UpsertCount())
	}
	if fpCache.Len() != 0 {
		t.Errorf("Expected no cached fingerprints for deferred candidate, got %d", fpCache.Len())
	}
}

type failOracle struct{}

func (o *failOracle) Evaluate(ctx context.Context, c airdrop.Candidate) (airdrop.Evaluation, error) {
	return airdrop.Evaluation{}, errors.New("oracle unavailable")
}

func (o *failOracle) Name() string {
	return "fail"
}
