package processor

import (
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]*league.Match, error)
	UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error
	UpsertPlayers(players []club.PlayerInfo) error
	GetRatings(playerIDs []string) (map[string]float64, error)
	ApplyMatchResult(match *league.Match, changes map[string]league.RatingChange) error
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
