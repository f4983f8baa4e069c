package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/metrics"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/notifier"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	store     metrics.MetricsStore
}

// NewNotifier creates a new Notifier. The store keeps durable send counters in
// the database, next to the in-process Prometheus counters.
func NewNotifier(token, channelID string, metrics metrics.Metrics, store metrics.MetricsStore) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		store:     store,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, store metrics.MetricsStore) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		store:     store,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		s.store.Increment("slack_notifications_failed")
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	s.store.Increment("slack_notifications_sent")
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendBookingNotification(match *league.Match, dryRun bool) (string, error) {
	msg := s.formatBookingNotification(match)
	_, timestamp, err := s.sendMessage(msg, dryRun)
	return timestamp, err
}

func (s *Notifier) SendResultNotification(match *league.Match, dryRun bool) (string, error) {
	msg := s.formatResultNotification(match)
	_, timestamp, err := s.sendMessage(msg, dryRun)
	return timestamp, err
}

func (s *Notifier) SendLeaderboard(stats []club.PlayerStats, dryRun bool) error {
	msg := s.formatLeaderboard(stats)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendRatingLeaderboard(players []club.PlayerInfo, dryRun bool) error {
	msg := s.formatRatingLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStats(stats *club.PlayerStats, query string, dryRun bool) error {
	msg := s.formatPlayerStats(stats, query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerForm(report form.Report, playerName string, dryRun bool) error {
	msg := s.formatPlayerForm(report, playerName)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	return s.formatLeaderboard(stats), nil
}

// FormatRatingLeaderboardResponse formats a rating leaderboard message for a slash command response.
func (s *Notifier) FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error) {
	return s.formatRatingLeaderboard(players), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(stats *club.PlayerStats, query string) (any, error) {
	return s.formatPlayerStats(stats, query), nil
}

// FormatPlayerFormResponse formats a player form message for a slash command response.
func (s *Notifier) FormatPlayerFormResponse(report form.Report, playerName string) (any, error) {
	return s.formatPlayerForm(report, playerName), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// teamName joins the names of a team's players for display.
func teamName(team league.Team) string {
	names := make([]string, 0, len(team.Players))
	for _, p := range team.Players {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, " & ")
}

func formatStartTime(start int64) string {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return time.Unix(start, 0).Format("Monday 02 Jan, 15:04")
	}
	return time.Unix(start, 0).In(loc).Format("Monday 02 Jan, 15:04")
}

// formatBookingNotification creates the Slack message for an upcoming match using Block Kit.
func (s *Notifier) formatBookingNotification(match *league.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	headerText := slack.NewTextBlockObject("plain_text", "🥒 New match booked! 🥒", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Court: %s\nTime: %s", match.CourtName, formatStartTime(match.Start))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Players
	var playerNames []string
	for _, team := range match.Teams {
		for _, player := range team.Players {
			if player.Name != "" {
				playerNames = append(playerNames, fmt.Sprintf("• %s", player.Name))
			}
		}
	}
	if len(playerNames) > 0 {
		playersText := "Players:\n" + strings.Join(playerNames, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playersText, true, false), nil, nil))
	}

	// Context - For simpler, single-line info.
	matchTypeText := "Singles match"
	if match.MatchType == league.MatchTypeDoubles {
		matchTypeText = "Doubles match"
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", matchTypeText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a finished match, including
// the rating movement of each player.
func (s *Notifier) formatResultNotification(match *league.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🥒 Match finished! 🥒", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	detailsText := fmt.Sprintf("%s at %s", match.CourtName, formatStartTime(match.Start))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	// Result
	if len(match.Teams) == 2 {
		var resultText string
		if winner, ok := match.Winner(); ok {
			loser, _ := match.Opposing(match.TeamOf(winner.Players[0].UserID))
			resultText = fmt.Sprintf("Result: %s def. %s %d-%d 🏆",
				teamName(winner), teamName(loser), winner.Score, loser.Score)
		} else {
			resultText = fmt.Sprintf("Result: %s and %s drew %d-%d",
				teamName(match.Teams[0]), teamName(match.Teams[1]),
				match.Teams[0].Score, match.Teams[1].Score)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))
	}

	// Rating changes
	if len(match.RatingChanges) > 0 {
		var lines []string
		for _, team := range match.Teams {
			for _, player := range team.Players {
				change, ok := match.RatingChanges[player.UserID]
				if !ok {
					continue
				}
				delta := change.After - change.Before
				arrow := "▲"
				if delta < 0 {
					arrow = "▼"
				}
				lines = append(lines, fmt.Sprintf("• %s: %.2f → %.2f (%s %+.2f)",
					player.Name, change.Before, change.After, arrow, delta))
			}
		}
		if len(lines) > 0 {
			ratingsText := "Ratings:\n" + strings.Join(lines, "\n")
			blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", ratingsText, true, false), nil, nil))
		}
	}

	return slack.NewBlockMessage(blocks...)
}

func medalFor(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []club.PlayerStats) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, stat := range stats {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Win %%: %.2f%% (%d/%d) | Points For: %d | Points Against: %d",
			rank,
			medalFor(rank),
			stat.PlayerName,
			stat.WinPercentage,
			stat.Wins,
			stat.MatchesPlayed,
			stat.PointsFor,
			stat.PointsAgainst,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatRatingLeaderboard creates a Slack message to display the player leaderboard by rating.
func (s *Notifier) formatRatingLeaderboard(players []club.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard (by Rating) 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players found.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, player := range players {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> *Rating*: %.2f",
			rank,
			medalFor(rank),
			player.Name,
			player.Rating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(stat *club.PlayerStats, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", stat.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Rating*: %.2f\n> *Win %%*: %.2f%% (%d/%d)\n> *Record*: %dW-%dL-%dD\n> *Points*: %d for / %d against",
		stat.Rating,
		stat.WinPercentage,
		stat.Wins,
		stat.MatchesPlayed,
		stat.Wins,
		stat.Losses,
		stat.Draws,
		stat.PointsFor,
		stat.PointsAgainst,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func trendLabel(trend form.Trend) string {
	switch trend {
	case form.TrendUp:
		return "📈 On the up"
	case form.TrendDown:
		return "📉 Cooling off"
	default:
		return "➡️ Steady"
	}
}

// formatPlayerForm creates a Slack message to display a player's recent form.
func (s *Notifier) formatPlayerForm(report form.Report, playerName string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("📊 Form for %s 📊", playerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	summaryText := fmt.Sprintf("> *Form Score*: %.0f/100\n> *Trend*: %s\n> *Last %d games*: %dW-%dL-%dD",
		report.Score,
		trendLabel(report.Trend),
		len(report.Games),
		report.Wins,
		report.Losses,
		report.Draws,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", summaryText, false, false), nil, nil))

	// Per-game breakdown, most recent first.
	if len(report.Games) > 0 {
		var lines []string
		for _, game := range report.Games {
			outcome := "D"
			switch game.Outcome {
			case form.OutcomeWin:
				outcome = "W"
			case form.OutcomeLoss:
				outcome = "L"
			}
			opp := fmt.Sprintf("%.2f", game.OpponentRating)
			if game.Approximate {
				opp = "~" + opp
			}
			lines = append(lines, fmt.Sprintf("%s by %d vs %s rated opposition", outcome, game.Margin, opp))
		}
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
