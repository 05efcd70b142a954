package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dropcomb/dropcomb/app/airdrop"
	"github.com/dropcomb/dropcomb/app/cache"
	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/source"
)

// CrawlCycleTask runs one full crawl: all adapters fetched in parallel, each
// candidate pushed through dedup, scoring and the store writer. Failures are
// isolated per adapter and per candidate; the task itself only fails on
// cancellation so the scheduler never retries a whole cycle.
type CrawlCycleTask struct {
	Task
	adapters []source.Adapter
	repo     database.AirdropRepository
	fpCache  cache.FingerprintCache
	scorer   *airdrop.Scorer
}

type cycleStats struct {
	mu            sync.Mutex
	fetched       int
	approved      int
	rejected      int
	deferred      int
	storeErrors   int
	adapterErrors int
}

func NewCrawlCycleTask(adapters []source.Adapter, repo database.AirdropRepository,
	fpCache cache.FingerprintCache, scorer *airdrop.Scorer) *CrawlCycleTask {
	return &CrawlCycleTask{
		Task:     NewTask(TaskTypeCrawlCycle, "all-sources"),
		adapters: adapters,
		repo:     repo,
		fpCache:  fpCache,
		scorer:   scorer,
	}
}

func (t *CrawlCycleTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deduper := airdrop.NewDeduper(t.repo, t.fpCache)
	stats := &cycleStats{}

	var wg sync.WaitGroup
	for _, adapter := range t.adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			t.crawlAdapter(ctx, a, deduper, stats)
		}(adapter)
	}
	wg.Wait()

	slog.Info("Task completed",
		"type", "CrawlCycle",
		"duration", t.GetDuration(),
		"sources", len(t.adapters),
		"fetched", stats.fetched,
		"duplicates", deduper.Duplicates(),
		"approved", stats.approved,
		"rejected", stats.rejected,
		"deferred", stats.deferred,
		"store_errors", stats.storeErrors,
		"source_errors", stats.adapterErrors)

	return nil
}

func (t *CrawlCycleTask) crawlAdapter(ctx context.Context, a source.Adapter, deduper *airdrop.Deduper, stats *cycleStats) {
	candidates, err := a.Fetch(ctx)
	if err != nil {
		// Non-fatal: the source sits out this cycle and is retried next tick.
		slog.Warn("Source fetch failed", "source", a.Name(), "error", err)
		stats.mu.Lock()
		stats.adapterErrors++
		stats.mu.Unlock()
		return
	}

	stats.mu.Lock()
	stats.fetched += len(candidates)
	stats.mu.Unlock()

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.processCandidate(ctx, candidate, deduper, stats)
	}
}

func (t *CrawlCycleTask) processCandidate(ctx context.Context, c airdrop.Candidate, deduper *airdrop.Deduper, stats *cycleStats) {
	fingerprint := c.Fingerprint()

	isNew, err := deduper.IsNew(ctx, fingerprint)
	if err != nil {
		slog.Warn("Dedup check failed, skipping candidate", "source", c.SourcePlatform, "url", c.SourceURL, "error", err)
		stats.mu.Lock()
		stats.storeErrors++
		stats.mu.Unlock()
		return
	}
	if !isNew {
		return
	}

	result := t.scorer.Score(ctx, c)

	if result.Verdict == airdrop.VerdictDeferred {
		// No store write; the candidate is re-derived and re-scored next cycle.
		slog.Debug("Candidate deferred", "source", c.SourcePlatform, "url", c.SourceURL, "reason", result.Rationale)
		stats.mu.Lock()
		stats.deferred++
		stats.mu.Unlock()
		return
	}

	status := database.StatusRejected
	if result.Verdict == airdrop.VerdictApproved {
		status = database.StatusApproved
	}

	record := database.Airdrop{
		Fingerprint: fingerprint,
		Platform:    c.SourcePlatform,
		URL:         c.SourceURL,
		Title:       c.Title,
		Description: c.Description,
		RewardHint:  c.RewardHint,
		Deadline:    c.Deadline,
		RawPayload:  c.RawPayload,
		Score:       result.Score,
		Rationale:   result.Rationale,
		Status:      status,
		FirstSeenAt: c.PublishedAt,
	}

	if err := t.repo.Upsert(record); err != nil {
		// Fatal for this record's cycle only; it is re-derived next cycle.
		slog.Warn("Store write failed", "fingerprint", fingerprint, "error", err)
		stats.mu.Lock()
		stats.storeErrors++
		stats.mu.Unlock()
		return
	}

	deduper.MarkStored(ctx, fingerprint)

	stats.mu.Lock()
	if status == database.StatusApproved {
		stats.approved++
	} else {
		stats.rejected++
	}
	stats.mu.Unlock()

	slog.Debug("Candidate settled",
		"source", c.SourcePlatform,
		"title", c.Title,
		"score", result.Score,
		"status", string(status))
}
