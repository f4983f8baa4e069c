package playtomic

import "github.com/blastedheath77/drill-babies-pb-sub001/internal/league"

// PlaytomicClient defines the interface for interacting with the Playtomic API.
// This allows for mock implementations to be used in tests.
type PlaytomicClient interface {
	GetMatches(params *SearchMatchesParams) ([]MatchSummary, error)
	GetSpecificMatch(matchID string) (league.Match, error)
}
