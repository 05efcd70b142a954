package source

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	rewardPattern  = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(USDT|USDC|BTC|ETH|BNB)\b`)
)

// Campaigns that publish no deadline are assumed to run this long after
// their announcement.
const defaultCampaignWindow = 30 * 24 * time.Hour

func fetchURL(ctx context.Context, client *http.Client, url, userAgent string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// stripHTML removes markup and collapses whitespace; listing feeds routinely
// embed formatted announcement bodies in their description fields.
func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// extractRewardHint pulls the first amount-plus-token mention out of the
// listing text, e.g. "500,000 USDT".
func extractRewardHint(text string) string {
	return rewardPattern.FindString(text)
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
