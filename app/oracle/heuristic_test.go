package oracle

import (
	"context"
	"strings"
	"testing"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

func TestHeuristicBaseScore(t *testing.T) {
	oracle := NewHeuristicOracle()

	eval, err := oracle.Evaluate(context.Background(), airdrop.Candidate{
		SourcePlatform: "unknown-platform",
		Title:          "Some Campaign",
	})
	if err != nil {
		t.Fatal(err)
	}

	if eval.Score != 5.0 {
		t.Errorf("Expected base score 5.0, got %f", eval.Score)
	}
	if !strings.Contains(eval.Rationale, "base 5") {
		t.Errorf("Expected rationale to mention the base score, got %q", eval.Rationale)
	}
}

func TestHeuristicPlatformBonus(t *testing.T) {
	oracle := NewHeuristicOracle()

	eval, err := oracle.Evaluate(context.Background(), airdrop.Candidate{
		SourcePlatform: "Binance",
		Title:          "Some Campaign",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Platform lookup is case-insensitive
	if eval.Score != 8.0 {
		t.Errorf("Expected 5 + 3 platform bonus, got %f", eval.Score)
	}
}

func TestHeuristicRewardAndOfficialBonus(t *testing.T) {
	oracle := NewHeuristicOracle()

	eval, err := oracle.Evaluate(context.Background(), airdrop.Candidate{
		SourcePlatform: "okx",
		Title:          "Official XYZ Jumpstart",
		RewardHint:     "500,000 USDT",
	})
	if err != nil {
		t.Fatal(err)
	}

	// 5 base + 2 platform + 1 reward + 1 official
	if eval.Score != 9.0 {
		t.Errorf("Expected score 9.0, got %f", eval.Score)
	}
}

func TestHeuristicIgnoresTBAReward(t *testing.T) {
	oracle := NewHeuristicOracle()

	eval, err := oracle.Evaluate(context.Background(), airdrop.Candidate{
		SourcePlatform: "bybit",
		Title:          "Some Campaign",
		RewardHint:     "TBA",
	})
	if err != nil {
		t.Fatal(err)
	}

	if eval.Score != 7.0 {
		t.Errorf("Expected no reward bonus for TBA, got %f", eval.Score)
	}
}

func TestHeuristicCapsAtTen(t *testing.T) {
	oracle := NewHeuristicOracle()

	eval, err := oracle.Evaluate(context.Background(), airdrop.Candidate{
		SourcePlatform: "binance",
		Title:          "Official Megadrop",
		RewardHint:     "1,000,000 USDT",
	})
	if err != nil {
		t.Fatal(err)
	}

	// 5 + 3 + 1 + 1 = 10, the cap
	if eval.Score != 10.0 {
		t.Errorf("Expected score capped at 10, got %f", eval.Score)
	}
}
