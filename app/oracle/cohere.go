package oracle

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

var _ airdrop.Oracle = (*CohereOracle)(nil)

const coherePreamble = `You rate crypto airdrop listings for quality and legitimacy.
Respond with a single JSON object: {"score": <0-10>, "rationale": "<one sentence>"}.
Established exchanges and clearly stated rewards score high; vague giveaways,
unverifiable projects and engagement bait score low.`

// CohereOracle scores candidates through the Cohere chat API.
type CohereOracle struct {
	client *cohereclient.Client
	model  string
}

func NewCohereOracle(apiKey, model string) *CohereOracle {
	// Force HTTP/1.1; the Cohere endpoint intermittently resets HTTP/2 streams.
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)

	return &CohereOracle{client: client, model: model}
}

func (o *CohereOracle) Name() string {
	return "cohere:" + o.model
}

func (o *CohereOracle) Evaluate(ctx context.Context, c airdrop.Candidate) (airdrop.Evaluation, error) {
	preamble := coherePreamble
	temperature := 0.0

	resp, err := o.client.Chat(ctx, &cohere.ChatRequest{
		Message:     buildPrompt(c),
		Model:       &o.model,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		return airdrop.Evaluation{}, fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Text == "" {
		return airdrop.Evaluation{}, errors.New("cohere chat returned empty response")
	}

	eval, err := parseEvaluation(resp.Text)
	if err != nil {
		return airdrop.Evaluation{}, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	return eval, nil
}

func buildPrompt(c airdrop.Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Platform: %s\n", c.SourcePlatform)
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	if c.RewardHint != "" {
		fmt.Fprintf(&b, "Reward: %s\n", c.RewardHint)
	}
	if c.Deadline != nil {
		fmt.Fprintf(&b, "Deadline: %s\n", c.Deadline.Format(time.RFC3339))
	}
	if c.Description != "" {
		desc := c.Description
		if len(desc) > 500 {
			desc = desc[:500]
		}
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}

	return b.String()
}

// parseEvaluation extracts the JSON object from the model output, tolerating
// surrounding prose or markdown fences.
func parseEvaluation(text string) (airdrop.Evaluation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return airdrop.Evaluation{}, fmt.Errorf("no JSON object in response: %q", text)
	}

	var parsed struct {
		Score     float64 `json:"score"`
		Rationale string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return airdrop.Evaluation{}, err
	}

	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 10 {
		parsed.Score = 10
	}

	return airdrop.Evaluation{Score: parsed.Score, Rationale: parsed.Rationale}, nil
}
