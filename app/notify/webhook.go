package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dropcomb/dropcomb/app/database"
)

var _ Channel = (*WebhookChannel)(nil)

// WebhookChannel posts the batch as JSON to a configured endpoint (the chat
// service ingests it and fans the messages out to groups). Any 2xx response
// counts as confirmed acceptance.
type WebhookChannel struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

type webhookPayload struct {
	SentAt   time.Time        `json:"sent_at"`
	Count    int              `json:"count"`
	Airdrops []webhookAirdrop `json:"airdrops"`
}

type webhookAirdrop struct {
	Fingerprint string     `json:"fingerprint"`
	Platform    string     `json:"platform"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Score       float64    `json:"score"`
	RewardHint  string     `json:"reward_hint,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Message     string     `json:"message"`
}

func NewWebhookChannel(url string, httpClient *http.Client, userAgent string) *WebhookChannel {
	return &WebhookChannel{
		url:        url,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (c *WebhookChannel) Name() string {
	return "webhook"
}

func (c *WebhookChannel) DeliverBatch(ctx context.Context, records []database.Airdrop) error {
	payload := webhookPayload{
		SentAt:   time.Now().UTC(),
		Count:    len(records),
		Airdrops: make([]webhookAirdrop, 0, len(records)),
	}

	for _, record := range records {
		payload.Airdrops = append(payload.Airdrops, webhookAirdrop{
			Fingerprint: record.Fingerprint,
			Platform:    record.Platform,
			Title:       record.Title,
			URL:         record.URL,
			Score:       record.Score,
			RewardHint:  record.RewardHint,
			Deadline:    record.Deadline,
			Message:     FormatMessage(record),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook rejected batch: %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}

// FormatMessage renders the chat text for a single record.
func FormatMessage(record database.Airdrop) string {
	stars := strings.Repeat("*", int(math.Ceil(record.Score/2)))

	var b strings.Builder
	fmt.Fprintf(&b, "New airdrop: %s\n", record.Title)
	fmt.Fprintf(&b, "Platform: %s\n", strings.ToUpper(record.Platform))
	if record.RewardHint != "" {
		fmt.Fprintf(&b, "Reward: %s\n", record.RewardHint)
	}
	fmt.Fprintf(&b, "Score: %.1f/10 %s\n", record.Score, stars)
	if record.Deadline != nil {
		fmt.Fprintf(&b, "Ends: %s\n", record.Deadline.Format("2006-01-02 15:04 MST"))
	}
	if record.Description != "" {
		desc := record.Description
		if len(desc) > 200 {
			cut := 200
			for cut > 0 && !utf8.RuneStart(desc[cut]) {
				cut--
			}
			desc = desc[:cut] + "..."
		}
		fmt.Fprintf(&b, "%s\n", desc)
	}
	if record.URL != "" {
		fmt.Fprintf(&b, "%s", record.URL)
	}

	return b.String()
}
