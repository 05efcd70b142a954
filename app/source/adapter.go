package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

// Adapter produces zero or more candidates from one external platform. A
// failing adapter is skipped for the cycle and tried again on the next tick;
// implementations must honor the fetch context so a stuck platform cannot
// stall the crawl.
type Adapter interface {
	Name() string
	Platform() string
	Fetch(ctx context.Context) ([]airdrop.Candidate, error)
}

// NewAdapter builds the adapter for a source config. Downstream stages only
// ever see the Adapter interface, so adding a platform type stops here.
func NewAdapter(cfg *Config, httpClient *http.Client, userAgent string) (Adapter, error) {
	switch cfg.Type {
	case TypeRSS:
		return NewRSSAdapter(cfg, httpClient, userAgent), nil
	case TypeLaunchpad:
		return NewLaunchpadAdapter(cfg, httpClient, userAgent), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}
