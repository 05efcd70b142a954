package cache

import (
	"context"
)

// FingerprintCache remembers fingerprints the pipeline has already settled.
// It is an optimization only: a hit lets the crawl path skip a candidate
// cheaply, but the store remains authoritative and is always consulted
// before a final accept decision.
type FingerprintCache interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Add(ctx context.Context, fingerprint string) error
}
