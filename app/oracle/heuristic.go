package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

var _ airdrop.Oracle = (*HeuristicOracle)(nil)

// Reputation bonus per platform, applied on top of the base score.
var platformBonus = map[string]float64{
	"binance":       3,
	"okx":           2,
	"bybit":         2,
	"coinmarketcap": 1,
}

// HeuristicOracle scores candidates with a deterministic rule set: a base
// score plus bonuses for platform reputation, an explicit reward amount and
// official wording, capped at 10. It is the fallback when no external
// scoring provider is configured.
type HeuristicOracle struct{}

func NewHeuristicOracle() *HeuristicOracle {
	return &HeuristicOracle{}
}

func (o *HeuristicOracle) Name() string {
	return "heuristic"
}

func (o *HeuristicOracle) Evaluate(ctx context.Context, c airdrop.Candidate) (airdrop.Evaluation, error) {
	score := 5.0
	var reasons []string

	if bonus, ok := platformBonus[strings.ToLower(c.SourcePlatform)]; ok {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("platform %s (+%g)", c.SourcePlatform, bonus))
	}

	if hint := strings.TrimSpace(c.RewardHint); hint != "" && !strings.EqualFold(hint, "TBA") {
		score += 1
		reasons = append(reasons, "explicit reward (+1)")
	}

	title := strings.ToLower(c.Title)
	if strings.Contains(title, "official") {
		score += 1
		reasons = append(reasons, "official wording (+1)")
	}

	if score > 10 {
		score = 10
	}

	return airdrop.Evaluation{
		Score:     score,
		Rationale: "heuristic: " + strings.Join(append([]string{"base 5"}, reasons...), ", "),
	}, nil
}
