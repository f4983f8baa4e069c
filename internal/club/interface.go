package club

import "github.com/blastedheath77/drill-babies-pb-sub001/internal/league"

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	UpsertMatch(match *league.Match) error
	UpsertMatches(matches []*league.Match) error
	UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error
	GetMatchesForProcessing() ([]*league.Match, error)
	GetAllMatches() ([]*league.Match, error)
	// GetCompletedMatches returns every match with a recorded result, newest
	// first. The form engine consumes this as a player's match history.
	GetCompletedMatches() ([]*league.Match, error)

	AddPlayer(playerID, name string, rating float64)
	UpsertPlayers(players []PlayerInfo) error
	IsKnownPlayer(playerID string) bool
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayersSortedByRating() ([]PlayerInfo, error)
	// GetRatings returns the current rating for each requested player.
	// Unknown players are simply absent from the map; the rating engine
	// substitutes its default for them.
	GetRatings(playerIDs []string) (map[string]float64, error)

	// ApplyMatchResult persists the outcome of a single match atomically:
	// the rating snapshots on the match row, each participant's new rating,
	// and the win/loss/draw and points tallies. changes is empty for draws.
	ApplyMatchResult(match *league.Match, changes map[string]league.RatingChange) error

	GetPlayerStats() ([]PlayerStats, error)
	GetPlayerStatsByName(playerName string) (*PlayerStats, error)

	Clear()
	ClearMatch(matchID string)
}
