package oracle

import (
	"log/slog"
	"os"

	"github.com/dropcomb/dropcomb/app/airdrop"
)

// NewFromEnv selects the scoring oracle: Cohere when COHERE_API_KEY is set,
// otherwise the deterministic heuristic.
func NewFromEnv(model string) airdrop.Oracle {
	if apiKey := os.Getenv("COHERE_API_KEY"); apiKey != "" {
		if model == "" {
			model = "command-r"
		}
		slog.Info("Using Cohere scoring oracle", "model", model)
		return NewCohereOracle(apiKey, model)
	}

	slog.Info("COHERE_API_KEY not set, using heuristic scoring oracle")
	return NewHeuristicOracle()
}
