package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/playtomic"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

func (s *Server) FetchMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match fetch...")
		s.Metrics.IncFetcherRuns()
		isDryRun := isDryRunFromContext(r)

		daysStr := r.URL.Query().Get("days")
		daysToSubtract := 0
		if daysStr != "" {
			parsedDays, err := strconv.Atoi(daysStr)
			if err == nil && parsedDays > 0 {
				daysToSubtract = parsedDays
				log.Info("Fetching historical matches", "days", daysToSubtract)
			} else {
				log.Warn("Invalid 'days' parameter provided. Defaulting to 0.", "days_param", daysStr)
			}
		}

		startDate := time.Now().AddDate(0, 0, -daysToSubtract)

		params := &playtomic.SearchMatchesParams{
			SportID:       playtomic.SportID,
			HasPlayers:    true,
			Sort:          "start_date,ASC",
			TenantIDs:     []string{s.Cfg.TenantID},
			FromStartDate: startDate.Format("2006-01-02") + "T00:00:00",
		}
		log.Info("Fetching matches from", "startDate", startDate)
		matches, err := s.PlaytomicClient.GetMatches(params)
		if err != nil {
			log.Error("Error fetching Playtomic bookings", "error", err)
			http.Error(w, "Failed to fetch matches", http.StatusInternalServerError)
			return
		}

		log.Info("Found matches from API", "count", len(matches))

		var clubMatchesToUpsert []*league.Match
		var mu sync.Mutex
		var wg sync.WaitGroup

		for _, match := range matches {

			wg.Add(1)
			go func(matchID string) {
				defer wg.Done()
				if match.OwnerID == nil || !s.Store.IsKnownPlayer(*match.OwnerID) {
					log.Debug("Skipping non-club match", "matchID", matchID)
					return
				}
				specificMatch, err := s.PlaytomicClient.GetSpecificMatch(matchID)
				if err != nil {
					log.Error("Error fetching specific match", "matchID", matchID, "error", err)
					return
				}

				if !isClubMatch(specificMatch, s.Store) {
					log.Debug("Skipping non-club match", "matchID", matchID)
					return
				}

				mu.Lock()
				clubMatchesToUpsert = append(clubMatchesToUpsert, &specificMatch)
				mu.Unlock()
			}(match.MatchID)
		}
		wg.Wait()

		if len(clubMatchesToUpsert) > 0 {
			if !isDryRun {
				log.Info("Upserting club matches", "count", len(clubMatchesToUpsert))
				if err := s.Store.UpsertMatches(clubMatchesToUpsert); err != nil {
					log.Error("Failed to bulk upsert matches", "error", err)
					http.Error(w, "Failed to save matches", http.StatusInternalServerError)
					return
				}
			} else {
				log.Info("[Dry Run] Would have upserted club matches", "count", len(clubMatchesToUpsert))
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match fetch completed.")
		log.Info("Match fetch finished.", "total_api_matches", len(matches), "club_matches_found", len(clubMatchesToUpsert))
	}
}

// isClubMatch reports whether enough of the roster is made up of club members
// for the match to count towards ratings. Full doubles rosters need all four
// players known; smaller rosters must be entirely known.
func isClubMatch(match league.Match, store club.ClubStore) bool {
	knownPlayers := 0
	totalPlayers := 0
	for _, team := range match.Teams {
		totalPlayers += len(team.Players)
		for _, player := range team.Players {
			if store.IsKnownPlayer(player.UserID) {
				knownPlayers++
			}
		}
	}

	if totalPlayers >= 4 && knownPlayers >= 4 {
		return true
	}
	if totalPlayers > 0 && totalPlayers < 4 && knownPlayers == totalPlayers {
		return true
	}
	return false
}

// decodePushMessage unwraps a Pub/Sub push delivery: the outer JSON wrapper
// carries a base64-encoded MessagePack payload.
func decodePushMessage(r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}

	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}

	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return rawData, nil
}

func (s *Server) ApplyRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushMessage(r)
		if err != nil {
			log.Error("Failed to decode apply ratings message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		match := league.Match{}
		s.pubsub.ProcessMessage(rawData, &match)
		if err := s.Processor.ApplyRatings(&match, isDryRun); err != nil {
			log.Error("Failed to apply ratings", "error", err, "matchID", match.MatchID)
			http.Error(w, "Failed to apply ratings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, err := decodePushMessage(r)
		if err != nil {
			log.Error("Failed to decode notify result message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		match := league.Match{}
		s.pubsub.ProcessMessage(rawData, &match)
		if err := s.Processor.NotifyResult(&match, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err, "matchID", match.MatchID)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
		log.Info("Match processing finished.")
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the player statistics leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to encode player stats to JSON", "error", err)
		}
	}
}

// RatingLeaderboardHandler returns a handler that serves players ordered by rating.
func (s *Server) RatingLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetPlayersSortedByRating()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players sorted by rating from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to encode players to JSON", "error", err)
		}
	}
}

// playerForm resolves a player by (fuzzy) name and computes their form report
// over their most recent played matches.
func (s *Server) playerForm(playerName string) (*club.PlayerStats, form.Report, error) {
	stats, err := s.Store.GetPlayerStatsByName(playerName)
	if err != nil {
		return nil, form.Report{}, err
	}

	matches, err := s.Store.GetCompletedMatches()
	if err != nil {
		return nil, form.Report{}, err
	}

	report, err := s.FormEngine.ComputeForm(stats.PlayerID, matches, stats.Rating)
	if err != nil {
		return stats, form.Report{}, err
	}
	s.Metrics.IncFormComputations()
	return stats, report, nil
}

// PlayerFormHandler returns a handler that serves a player's form report as JSON.
func (s *Server) PlayerFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerName := r.URL.Query().Get("player")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		_, report, err := s.playerForm(playerName)
		if err != nil {
			if errors.Is(err, form.ErrNoMatches) {
				http.Error(w, "No played matches for player", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to compute form", http.StatusInternalServerError)
			log.Error("Failed to compute player form", "player", playerName, "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("Failed to encode form report to JSON", "error", err)
		}
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetPlayerStats()
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		stats, err := s.Store.GetPlayerStatsByName(playerName)
		var msg any
		if err != nil {
			log.Warn("Could not find player stats", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerStatsResponse(stats, playerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// RatingLeaderboardCommandHandler returns a handler for the /rating-leaderboard Slack command.
func (s *Server) RatingLeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetPlayersSortedByRating()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players sorted by rating from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatRatingLeaderboardResponse(players)
		if err != nil {
			http.Error(w, "Failed to format rating leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format rating leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerFormCommandHandler returns a handler for the /form Slack command.
func (s *Server) PlayerFormCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := r.FormValue("text")
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player form command", "player", playerName)

		stats, report, err := s.playerForm(playerName)
		var msg any
		if err != nil {
			log.Warn("Could not compute player form", "player", playerName, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName)
		} else {
			msg, err = s.Notifier.FormatPlayerFormResponse(report, stats.PlayerName)
		}

		if err != nil {
			http.Error(w, "Failed to format player form", http.StatusInternalServerError)
			log.Error("Failed to format player form", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
