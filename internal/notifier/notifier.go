package notifier

import (
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For upcoming matches
	SendBookingNotification(match *league.Match, dryRun bool) (string, error)
	// For completed matches; includes the rating changes recorded on the match
	SendResultNotification(match *league.Match, dryRun bool) (string, error)
	// For slash commands
	SendLeaderboard(stats []club.PlayerStats, dryRun bool) error
	SendRatingLeaderboard(players []club.PlayerInfo, dryRun bool) error
	SendPlayerStats(stats *club.PlayerStats, query string, dryRun bool) error
	SendPlayerForm(report form.Report, playerName string, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(stats []club.PlayerStats) (any, error)
	FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error)
	FormatPlayerStatsResponse(stats *club.PlayerStats, query string) (any, error)
	FormatPlayerFormResponse(report form.Report, playerName string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
