package airdrop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dropcomb/dropcomb/app/cache"
	"github.com/dropcomb/dropcomb/app/database"
)

// Deduper decides new-vs-seen for one crawl cycle. It layers three checks:
// a cycle-local set (tie-break when two adapters list the same campaign in
// the same cycle: first processed wins), the process-lifetime fingerprint
// cache (cheap skip), and the store (authoritative, always consulted before
// a fingerprint is treated as new).
//
// A Deduper is scoped to a single cycle; create a fresh one per crawl tick.
type Deduper struct {
	repo  database.AirdropRepository
	cache cache.FingerprintCache

	mu         sync.Mutex
	cycleSeen  map[string]struct{}
	duplicates int
}

func NewDeduper(repo database.AirdropRepository, fpCache cache.FingerprintCache) *Deduper {
	return &Deduper{
		repo:      repo,
		cache:     fpCache,
		cycleSeen: make(map[string]struct{}),
	}
}

// IsNew reports whether the fingerprint has not been settled before. Later
// callers within the same cycle observe earlier claims, so concurrent
// adapters cannot both carry the same campaign forward.
func (d *Deduper) IsNew(ctx context.Context, fingerprint string) (bool, error) {
	d.mu.Lock()
	if _, ok := d.cycleSeen[fingerprint]; ok {
		d.duplicates++
		d.mu.Unlock()
		return false, nil
	}
	d.cycleSeen[fingerprint] = struct{}{}
	d.mu.Unlock()

	seen, err := d.cache.Seen(ctx, fingerprint)
	if err != nil {
		// Cache trouble never blocks the pipeline; fall through to the store.
		slog.Warn("Fingerprint cache lookup failed", "fingerprint", fingerprint, "error", err)
		seen = false
	}

	record, err := d.repo.GetByFingerprint(fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to check store for fingerprint: %w", err)
	}

	if record != nil {
		if !seen {
			d.addToCache(ctx, fingerprint)
		}
		return false, nil
	}

	// A cache hit without a store record means the cache is stale (shared
	// cache fed by an instance whose write never became durable).
	return true, nil
}

// MarkStored records a fingerprint in the cache once its record is durable.
func (d *Deduper) MarkStored(ctx context.Context, fingerprint string) {
	d.addToCache(ctx, fingerprint)
}

// Duplicates returns how many same-cycle duplicates were dropped.
func (d *Deduper) Duplicates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duplicates
}

func (d *Deduper) addToCache(ctx context.Context, fingerprint string) {
	if err := d.cache.Add(ctx, fingerprint); err != nil {
		slog.Warn("Failed to add fingerprint to cache", "fingerprint", fingerprint, "error", err)
	}
}
