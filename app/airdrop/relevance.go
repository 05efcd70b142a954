package airdrop

import (
	"strings"
)

// Default keyword set used when a source config does not provide its own.
// Listings from exchange announcement feeds mix airdrop campaigns with
// maintenance notices and market updates; only the former are of interest.
var DefaultKeywords = []string{
	"airdrop",
	"launchpad",
	"launchpool",
	"megadrop",
	"jumpstart",
	"listing",
	"new token",
	"giveaway",
}

type RelevanceFilter struct {
	keywords []string
}

func NewRelevanceFilter(keywords []string) *RelevanceFilter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &RelevanceFilter{keywords: keywords}
}

// Matches reports whether the candidate's title or description contains any
// of the configured keywords, case-insensitively.
func (f *RelevanceFilter) Matches(c Candidate) bool {
	text := strings.ToLower(c.Title + " " + c.Description)

	for _, keyword := range f.keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}
