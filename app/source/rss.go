package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

var _ Adapter = (*RSSAdapter)(nil)

// RSSAdapter turns an RSS/Atom announcement feed into airdrop candidates.
// Non-matching entries (maintenance notices, market updates) are dropped by
// the relevance filter before they reach the pipeline.
type RSSAdapter struct {
	cfg        *Config
	httpClient *http.Client
	userAgent  string
	parser     *gofeed.Parser
	relevance  *airdrop.RelevanceFilter
}

func NewRSSAdapter(cfg *Config, httpClient *http.Client, userAgent string) *RSSAdapter {
	return &RSSAdapter{
		cfg:        cfg,
		httpClient: httpClient,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
		relevance:  airdrop.NewRelevanceFilter(cfg.Keywords),
	}
}

func (a *RSSAdapter) Name() string {
	return a.cfg.Name
}

func (a *RSSAdapter) Platform() string {
	return a.cfg.Platform
}

func (a *RSSAdapter) Fetch(ctx context.Context) ([]airdrop.Candidate, error) {
	timeout := time.Duration(a.cfg.Settings.Timeout) * time.Second

	data, err := fetchURL(ctx, a.httpClient, a.cfg.URL, a.userAgent, timeout)
	if err != nil {
		return nil, err
	}

	feed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]airdrop.Candidate, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= a.cfg.Settings.MaxItems {
			break
		}
		if item == nil || item.Link == "" {
			continue
		}

		candidate := a.normalizeItem(item)
		if !a.relevance.Matches(candidate) {
			continue
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (a *RSSAdapter) normalizeItem(item *gofeed.Item) airdrop.Candidate {
	title := stripHTML(item.Title)
	description := truncate(stripHTML(firstNonEmpty(item.Description, item.Content)), 500)

	publishedAt := time.Now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		publishedAt = item.UpdatedParsed.UTC()
	}

	deadline := publishedAt.Add(defaultCampaignWindow)

	rawPayload, _ := json.Marshal(item)

	return airdrop.Candidate{
		SourcePlatform: a.cfg.Platform,
		SourceURL:      item.Link,
		Title:          title,
		Description:    description,
		RewardHint:     extractRewardHint(title + " " + description),
		Deadline:       &deadline,
		PublishedAt:    publishedAt,
		RawPayload:     string(rawPayload),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
