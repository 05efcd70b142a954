package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

var _ Adapter = (*LaunchpadAdapter)(nil)

// LaunchpadAdapter reads a JSON listing endpoint in the shape exchange
// launch programs publish (Binance Launchpool, OKX Jumpstart): an array of
// campaigns, either bare or wrapped in a "data" envelope.
type LaunchpadAdapter struct {
	cfg        *Config
	httpClient *http.Client
	userAgent  string
	relevance  *airdrop.RelevanceFilter
}

type launchpadListing struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Reward      string `json:"reward"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

func NewLaunchpadAdapter(cfg *Config, httpClient *http.Client, userAgent string) *LaunchpadAdapter {
	return &LaunchpadAdapter{
		cfg:        cfg,
		httpClient: httpClient,
		userAgent:  userAgent,
		relevance:  airdrop.NewRelevanceFilter(cfg.Keywords),
	}
}

func (a *LaunchpadAdapter) Name() string {
	return a.cfg.Name
}

func (a *LaunchpadAdapter) Platform() string {
	return a.cfg.Platform
}

func (a *LaunchpadAdapter) Fetch(ctx context.Context) ([]airdrop.Candidate, error) {
	timeout := time.Duration(a.cfg.Settings.Timeout) * time.Second

	data, err := fetchURL(ctx, a.httpClient, a.cfg.URL, a.userAgent, timeout)
	if err != nil {
		return nil, err
	}

	listings, err := decodeListings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	candidates := make([]airdrop.Candidate, 0, len(listings))
	for i, listing := range listings {
		if i >= a.cfg.Settings.MaxItems {
			break
		}
		if listing.URL == "" {
			continue
		}

		candidate := a.normalizeListing(listing)
		if !a.relevance.Matches(candidate) {
			continue
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (a *LaunchpadAdapter) normalizeListing(listing launchpadListing) airdrop.Candidate {
	publishedAt := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, listing.StartTime); err == nil {
		publishedAt = t.UTC()
	}

	var deadline *time.Time
	if t, err := time.Parse(time.RFC3339, listing.EndTime); err == nil {
		utc := t.UTC()
		deadline = &utc
	}

	title := stripHTML(listing.Title)
	description := truncate(stripHTML(listing.Description), 500)

	rewardHint := listing.Reward
	if rewardHint == "" {
		rewardHint = extractRewardHint(title + " " + description)
	}

	rawPayload, _ := json.Marshal(listing)

	return airdrop.Candidate{
		SourcePlatform: a.cfg.Platform,
		SourceURL:      listing.URL,
		Title:          title,
		Description:    description,
		RewardHint:     rewardHint,
		Deadline:       deadline,
		PublishedAt:    publishedAt,
		RawPayload:     string(rawPayload),
	}
}

func decodeListings(data []byte) ([]launchpadListing, error) {
	var listings []launchpadListing
	if err := json.Unmarshal(data, &listings); err == nil {
		return listings, nil
	}

	var envelope struct {
		Data []launchpadListing `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	return envelope.Data, nil
}
