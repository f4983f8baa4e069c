package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

// APIClient is a custom Playtomic API client that implements the PlaytomicClient interface.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
}

// NewClient creates a new custom Playtomic client.
func NewClient() PlaytomicClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL: "https://api.playtomic.io",
	}
}

// Ensure APIClient implements the PlaytomicClient interface.
var _ PlaytomicClient = (*APIClient)(nil)

// GetMatches fetches a list of matches based on the provided search parameters.
func (c *APIClient) GetMatches(params *SearchMatchesParams) ([]MatchSummary, error) {
	const pageSize = 300
	var (
		allMatches []MatchSummary
		page       = 0
	)

	for {
		externalParams := &models.SearchMatchesParams{
			SportID:       params.SportID,
			HasPlayers:    params.HasPlayers,
			Sort:          params.Sort,
			TenantIDs:     params.TenantIDs,
			FromStartDate: params.FromStartDate,
			Size:          pageSize,
			Page:          page,
		}

		log.Debug("Fetching matches from Playtomic API", "params", externalParams)
		matches, err := c.apiClient.GetMatches(context.Background(), externalParams)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from playtomic api: %w", err)
		}

		log.Info("Successfully fetched matches", "count", len(matches), "page", page)
		for _, m := range matches {
			allMatches = append(allMatches, MatchSummary{
				MatchID: m.MatchID,
				OwnerID: m.OwnerID,
			})
		}

		// If we got less than pageSize, we've reached the last page
		if len(matches) < pageSize {
			log.Info("Reached last page", "page", page)
			break
		}
		page++
	}
	log.Info("Fetched all matches", "count", len(allMatches))
	return allMatches, nil
}

// GetSpecificMatch fetches a specific match by its ID and converts it into the
// internal match representation.
func (c *APIClient) GetSpecificMatch(matchID string) (league.Match, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		return league.Match{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")
	log.Debug("Requesting specific match from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return league.Match{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return league.Match{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var matchResponse playtomicMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matchResponse); err != nil {
		return league.Match{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return convertMatch(matchID, matchResponse)
}

// convertMatch maps an API match response onto a league.Match. Total points
// per team are the summed game scores; the match type is derived from the
// roster sizes.
func convertMatch(matchID string, matchResponse playtomicMatchResponse) (league.Match, error) {
	const layout = "2006-01-02T15:04:05"

	startTime, err := time.Parse(layout, matchResponse.StartDate)
	if err != nil {
		return league.Match{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	endTime, err := time.Parse(layout, matchResponse.EndDate)
	if err != nil {
		return league.Match{}, fmt.Errorf("failed to parse end time: %w", err)
	}
	createdAtTime, err := time.Parse(layout, matchResponse.CreatedAt)
	if err != nil {
		return league.Match{}, fmt.Errorf("failed to parse created at time: %w", err)
	}

	scores := make(map[string]int)
	for _, result := range matchResponse.Results {
		for _, score := range result.Scores {
			scores[score.TeamID] += score.Score
		}
	}

	var teams []league.Team
	doubles := false
	for _, responseTeam := range matchResponse.Teams {
		t := league.Team{
			ID:    responseTeam.TeamID,
			Score: scores[responseTeam.TeamID],
		}
		for _, responsePlayer := range responseTeam.Players {
			rating := 0.0
			if responsePlayer.LevelValue != nil {
				rating = *responsePlayer.LevelValue
			}
			t.Players = append(t.Players, league.Player{
				UserID: responsePlayer.UserID,
				Name:   responsePlayer.Name,
				Rating: rating,
			})
		}
		if len(t.Players) > 1 {
			doubles = true
		}
		teams = append(teams, t)
	}

	matchType := league.MatchTypeSingles
	if doubles {
		matchType = league.MatchTypeDoubles
	}

	ownerName := ""
	for _, team := range teams {
		for _, player := range team.Players {
			if player.UserID == matchResponse.OwnerID {
				ownerName = player.Name
				break
			}
		}
		if ownerName != "" {
			break
		}
	}

	var gameStatus league.GameStatus
	switch matchResponse.GameStatus {
	case string(league.GameStatusPending):
		gameStatus = league.GameStatusPending
	case string(league.GameStatusPlayed):
		gameStatus = league.GameStatusPlayed
	case string(league.GameStatusCanceled):
		gameStatus = league.GameStatusCanceled
	case string(league.GameStatusExpired):
		gameStatus = league.GameStatusExpired
	case string(league.GameStatusInProgress):
		gameStatus = league.GameStatusInProgress
	default:
		gameStatus = league.GameStatusUnknown
		log.Warn("Unknown game status received from Playtomic API", "status", matchResponse.GameStatus, "matchID", matchID)
	}

	var resultsStatus league.ResultsStatus
	switch matchResponse.ResultsStatus {
	case string(league.ResultsStatusPending):
		resultsStatus = league.ResultsStatusPending
	case string(league.ResultsStatusConfirmed):
		resultsStatus = league.ResultsStatusConfirmed
	case string(league.ResultsStatusExpired):
		resultsStatus = league.ResultsStatusExpired
	case string(league.ResultsStatusValidating):
		resultsStatus = league.ResultsStatusValidating
	case string(league.ResultsStatusWaitingFor):
		resultsStatus = league.ResultsStatusWaitingFor
	default:
		log.Warn("Unknown results status received from Playtomic API", "status", matchResponse.ResultsStatus, "matchID", matchID)
	}

	match := league.Match{
		MatchID:       matchID,
		OwnerID:       matchResponse.OwnerID,
		OwnerName:     ownerName,
		Start:         startTime.Local().Unix(),
		End:           endTime.Local().Unix(),
		CreatedAt:     createdAtTime.Local().Unix(),
		Teams:         teams,
		GameStatus:    gameStatus,
		ResultsStatus: resultsStatus,
		CourtName:     matchResponse.ResourceName,
		Tenant: league.Tenant{
			ID:   matchResponse.Tenant.ID,
			Name: matchResponse.Tenant.Name,
		},
		MatchType: matchType,
	}

	log.Debug("Match", "match", match)
	return match, nil
}
