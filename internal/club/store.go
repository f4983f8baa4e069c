package club

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// UpsertMatch inserts a new match or updates an existing one. It is "dumb":
// it never touches the processing status or the rating snapshots of an
// existing match, since those belong to the result-recording flow.
func (s *store) UpsertMatch(match *league.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := upsertMatchTx(tx, match); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertMatches inserts or updates a batch of matches in one transaction.
func (s *store) UpsertMatches(matches []*league.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := upsertMatchTx(tx, match); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func upsertMatchTx(tx *sql.Tx, match *league.Match) error {
	teamsJSON, err := json.Marshal(match.Teams)
	if err != nil {
		return err
	}

	// ON CONFLICT updates all fields EXCEPT processing_status and
	// rating_changes_json.
	_, err = tx.Exec(`
		INSERT INTO matches (id, owner_id, owner_name, start_time, end_time, created_at, game_status, results_status, court_name, tenant_id, tenant_name, match_type, teams_json, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			owner_name = excluded.owner_name,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			created_at = excluded.created_at,
			game_status = excluded.game_status,
			results_status = excluded.results_status,
			court_name = excluded.court_name,
			tenant_id = excluded.tenant_id,
			tenant_name = excluded.tenant_name,
			match_type = excluded.match_type,
			teams_json = excluded.teams_json;
	`, match.MatchID, match.OwnerID, match.OwnerName, match.Start, match.End, match.CreatedAt,
		match.GameStatus, match.ResultsStatus, match.CourtName, match.Tenant.ID, match.Tenant.Name,
		match.MatchType, teamsJSON, league.StatusNew)
	return err
}

// UpdateProcessingStatus transitions a match to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

const matchColumns = `id, owner_id, owner_name, start_time, end_time, created_at, game_status, results_status, court_name, tenant_id, tenant_name, match_type, teams_json, rating_changes_json, processing_status`

// GetMatchesForProcessing retrieves all matches that are not yet in a completed state.
func (s *store) GetMatchesForProcessing() ([]*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMatches(`
		SELECT `+matchColumns+`
		FROM matches
		WHERE processing_status != ?
	`, league.StatusCompleted)
}

// GetAllMatches retrieves all matches, newest first.
func (s *store) GetAllMatches() ([]*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMatches(`
		SELECT ` + matchColumns + `
		FROM matches ORDER BY start_time DESC
	`)
}

// GetCompletedMatches retrieves every played match, newest first. This is the
// history the form engine consumes; it filters per player itself.
func (s *store) GetCompletedMatches() ([]*league.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMatches(`
		SELECT `+matchColumns+`
		FROM matches
		WHERE game_status = ?
		ORDER BY start_time DESC
	`, league.GameStatusPlayed)
}

func (s *store) queryMatches(query string, args ...any) ([]*league.Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*league.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*league.Match, error) {
	var match league.Match
	var teamsJSON, changesJSON sql.NullString

	err := scanner.Scan(
		&match.MatchID, &match.OwnerID, &match.OwnerName, &match.Start, &match.End, &match.CreatedAt,
		&match.GameStatus, &match.ResultsStatus, &match.CourtName, &match.Tenant.ID, &match.Tenant.Name,
		&match.MatchType, &teamsJSON, &changesJSON, &match.ProcessingStatus,
	)
	if err != nil {
		return nil, err
	}

	if teamsJSON.Valid && teamsJSON.String != "" {
		if err := json.Unmarshal([]byte(teamsJSON.String), &match.Teams); err != nil {
			log.Error("Failed to unmarshal teams_json", "error", err, "matchID", match.MatchID)
		}
	} else {
		match.Teams = []league.Team{}
	}

	if changesJSON.Valid && changesJSON.String != "" {
		if err := json.Unmarshal([]byte(changesJSON.String), &match.RatingChanges); err != nil {
			log.Error("Failed to unmarshal rating_changes_json", "error", err, "matchID", match.MatchID)
		}
	}

	return &match, nil
}

// ApplyMatchResult records the outcome of a single match in one transaction:
// the snapshots on the match row, the new rating for every player that has a
// change, and the win/loss/draw and points tallies derived from the scores.
// This read-modify-write is the serialization point for concurrent result
// recording; callers must not update ratings outside of it.
func (s *store) ApplyMatchResult(match *league.Match, changes map[string]league.RatingChange) error {
	if len(match.Teams) != 2 {
		return fmt.Errorf("match %s has %d teams, want 2", match.MatchID, len(match.Teams))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	changesJSON, err := json.Marshal(changes)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("UPDATE matches SET rating_changes_json = ? WHERE id = ?", changesJSON, match.MatchID); err != nil {
		tx.Rollback()
		return err
	}

	for pid, change := range changes {
		if _, err := tx.Exec("UPDATE players SET rating = ? WHERE id = ?", change.After, pid); err != nil {
			tx.Rollback()
			return err
		}
	}

	draw := match.IsDraw()
	for ti, team := range match.Teams {
		opponent, _ := match.Opposing(ti)
		won := 0
		lost := 0
		drew := 0
		switch {
		case draw:
			drew = 1
		case team.Score > opponent.Score:
			won = 1
		default:
			lost = 1
		}
		for _, player := range team.Players {
			_, err := tx.Exec(`
				INSERT INTO player_stats (player_id, matches_played, wins, losses, draws, points_for, points_against)
				VALUES (?, 1, ?, ?, ?, ?, ?)
				ON CONFLICT(player_id) DO UPDATE SET
					matches_played = matches_played + 1,
					wins = wins + excluded.wins,
					losses = losses + excluded.losses,
					draws = draws + excluded.draws,
					points_for = points_for + excluded.points_for,
					points_against = points_against + excluded.points_against;
			`, player.UserID, won, lost, drew, team.Score, opponent.Score)
			if err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Applied match result", "matchID", match.MatchID, "players", len(changes), "draw", draw)
	return nil
}

func (s *store) AddPlayer(playerID, name string, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return
	}

	if !exists {
		_, err := s.db.Exec("INSERT INTO players (id, name, rating) VALUES (?, ?, ?)", playerID, name, rating)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
		} else {
			log.Info("Added new player to the store", "playerID", playerID, "name", name, "rating", rating)
		}
	} else {
		_, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
		if err != nil {
			log.Error("Failed to update player", "error", err, "playerID", playerID)
		}
	}
}

// UpsertPlayers ensures every player exists. Existing players keep their
// rating; only the display name is refreshed. New players start unrated and
// get the default rating on their first recorded result.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, p := range players {
		_, err := tx.Exec(`
			INSERT INTO players (id, name, rating) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name;
		`, p.ID, p.Name, p.Rating)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return nil, nil
	}
	placeholders := ""
	for i := range playerIDs {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
	}
	rows, err := s.db.Query("SELECT id, name, rating FROM players WHERE id IN ("+placeholders+")", ToAnySlice(playerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// GetRatings returns the current rating for each requested player that exists.
func (s *store) GetRatings(playerIDs []string) (map[string]float64, error) {
	players, err := s.GetPlayers(playerIDs)
	if err != nil {
		return nil, err
	}
	ratings := make(map[string]float64, len(players))
	for _, p := range players {
		ratings[p.ID] = p.Rating
	}
	return ratings, nil
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// GetPlayersSortedByRating retrieves all players, highest rated first.
func (s *store) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, rating FROM players ORDER BY rating DESC, name ASC")
	if err != nil {
		log.Error("Failed to query players sorted by rating", "error", err)
		return nil, err
	}
	defer rows.Close()
	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]PlayerInfo, error) {
	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		var rating sql.NullFloat64
		if err := rows.Scan(&p.ID, &name, &rating); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String // handle NULL name from db
		p.Rating = rating.Float64
		players = append(players, p)
	}
	return players, rows.Err()
}

const playerStatsColumns = `
	p.id,
	p.name,
	p.rating,
	COALESCE(ps.matches_played, 0),
	COALESCE(ps.wins, 0),
	COALESCE(ps.losses, 0),
	COALESCE(ps.draws, 0),
	COALESCE(ps.points_for, 0),
	COALESCE(ps.points_against, 0)`

func (s *store) GetPlayerStats() ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ` + playerStatsColumns + `
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		ORDER BY COALESCE(ps.wins, 0) DESC, p.rating DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		stat, err := scanPlayerStats(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	return stats, rows.Err()
}

// GetPlayerStatsByName retrieves the statistics for a single player. The
// lookup is fuzzy and case-insensitive, so "morten" matches "Morten Voss".
func (s *store) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players")
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	names := make(map[string]string)
	var all []string
	for rows.Next() {
		var id string
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			continue
		}
		if name.Valid && name.String != "" {
			names[name.String] = id
			all = append(all, name.String)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	ranks := fuzzy.RankFindNormalizedFold(playerName, all)
	if len(ranks) == 0 {
		log.Info("No player matched query", "query", playerName)
		return nil, fmt.Errorf("player matching '%s' not found", playerName)
	}
	sort.Sort(ranks)
	best := ranks[0].Target

	row := s.db.QueryRow(`
		SELECT `+playerStatsColumns+`
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		WHERE p.id = ?
	`, names[best])
	stat, err := scanPlayerStats(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player matching '%s' not found", playerName)
		}
		log.Error("Failed to query player stats by name", "error", err, "query", playerName)
		return nil, fmt.Errorf("database error: %w", err)
	}

	log.Debug("Found player stats by name", "query", playerName, "player", stat.PlayerName)
	return stat, nil
}

func scanPlayerStats(scanner interface{ Scan(...any) error }) (*PlayerStats, error) {
	var stat PlayerStats
	err := scanner.Scan(
		&stat.PlayerID,
		&stat.PlayerName,
		&stat.Rating,
		&stat.MatchesPlayed,
		&stat.Wins,
		&stat.Losses,
		&stat.Draws,
		&stat.PointsFor,
		&stat.PointsAgainst,
	)
	if err != nil {
		return nil, err
	}
	if stat.MatchesPlayed > 0 {
		stat.WinPercentage = (float64(stat.Wins) / float64(stat.MatchesPlayed)) * 100
	}
	return &stat, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"matches", "player_stats", "players", "metrics"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		log.Error("Failed to clear match", "error", err, "matchID", matchID)
	}
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
