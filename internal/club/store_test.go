package club

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/database"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

func setupTestStore(t *testing.T) ClubStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db)
}

// seedRoster registers the fixture players. The schema enforces foreign keys
// from matches.owner_id and player_stats.player_id to players, so the roster
// must exist before any match rows do.
func seedRoster(store ClubStore) {
	store.AddPlayer("p1", "Alice", 3.5)
	store.AddPlayer("p2", "Bob", 3.5)
	store.AddPlayer("p3", "Cara", 3.5)
	store.AddPlayer("p4", "Dan", 3.5)
}

func doublesMatch(id string, start int64, score1, score2 int) *league.Match {
	return &league.Match{
		MatchID:       id,
		OwnerID:       "p1",
		OwnerName:     "Alice",
		Start:         start,
		End:           start + 3600,
		GameStatus:    league.GameStatusPlayed,
		ResultsStatus: league.ResultsStatusConfirmed,
		MatchType:     league.MatchTypeDoubles,
		Teams: []league.Team{
			{ID: "t1", Score: score1, Players: []league.Player{{UserID: "p1", Name: "Alice"}, {UserID: "p2", Name: "Bob"}}},
			{ID: "t2", Score: score2, Players: []league.Player{{UserID: "p3", Name: "Cara"}, {UserID: "p4", Name: "Dan"}}},
		},
	}
}

func TestUpsertMatch_PreservesProcessingState(t *testing.T) {
	store := setupTestStore(t)
	seedRoster(store)

	match := doublesMatch("m1", 1000, 11, 5)
	require.NoError(t, store.UpsertMatch(match))
	require.NoError(t, store.UpdateProcessingStatus("m1", league.StatusRatingsApplied))
	require.NoError(t, store.ApplyMatchResult(match, map[string]league.RatingChange{
		"p1": {Before: 3.5, After: 3.6},
	}))

	// Re-fetching the same match from the source must not clobber the
	// pipeline's progress.
	match.CourtName = "Court 2"
	require.NoError(t, store.UpsertMatch(match))

	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Court 2", matches[0].CourtName)
	assert.Equal(t, league.StatusRatingsApplied, matches[0].ProcessingStatus)
	require.Contains(t, matches[0].RatingChanges, "p1")
	assert.Equal(t, 3.6, matches[0].RatingChanges["p1"].After)
}

func TestUpsertMatches_Batch(t *testing.T) {
	store := setupTestStore(t)
	seedRoster(store)

	err := store.UpsertMatches([]*league.Match{
		doublesMatch("m1", 1000, 11, 5),
		doublesMatch("m2", 2000, 7, 11),
	})
	require.NoError(t, err)

	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m2", matches[0].MatchID, "newest first")
	assert.Equal(t, "m1", matches[1].MatchID)
}

func TestGetMatchesForProcessing_ExcludesCompleted(t *testing.T) {
	store := setupTestStore(t)
	seedRoster(store)

	require.NoError(t, store.UpsertMatch(doublesMatch("m1", 1000, 11, 5)))
	require.NoError(t, store.UpsertMatch(doublesMatch("m2", 2000, 11, 5)))
	require.NoError(t, store.UpdateProcessingStatus("m1", league.StatusCompleted))

	pending, err := store.GetMatchesForProcessing()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "m2", pending[0].MatchID)
}

func TestGetCompletedMatches_OnlyPlayed(t *testing.T) {
	store := setupTestStore(t)
	seedRoster(store)

	played := doublesMatch("m1", 1000, 11, 5)
	upcoming := doublesMatch("m2", 2000, 0, 0)
	upcoming.GameStatus = league.GameStatusPending
	require.NoError(t, store.UpsertMatches([]*league.Match{played, upcoming}))

	completed, err := store.GetCompletedMatches()
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "m1", completed[0].MatchID)
}

func TestApplyMatchResult(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Alice", 3.5)
	store.AddPlayer("p2", "Bob", 3.5)
	store.AddPlayer("p3", "Cara", 3.5)
	store.AddPlayer("p4", "Dan", 3.5)

	match := doublesMatch("m1", 1000, 11, 5)
	require.NoError(t, store.UpsertMatch(match))

	changes := map[string]league.RatingChange{
		"p1": {Before: 3.5, After: 3.6},
		"p2": {Before: 3.5, After: 3.6},
		"p3": {Before: 3.5, After: 3.4},
		"p4": {Before: 3.5, After: 3.4},
	}
	require.NoError(t, store.ApplyMatchResult(match, changes))

	ratings, err := store.GetRatings([]string{"p1", "p3"})
	require.NoError(t, err)
	assert.Equal(t, 3.6, ratings["p1"])
	assert.Equal(t, 3.4, ratings["p3"])

	stats, err := store.GetPlayerStats()
	require.NoError(t, err)
	require.Len(t, stats, 4)

	byID := make(map[string]PlayerStats)
	for _, s := range stats {
		byID[s.PlayerID] = s
	}
	assert.Equal(t, 1, byID["p1"].Wins)
	assert.Equal(t, 11, byID["p1"].PointsFor)
	assert.Equal(t, 5, byID["p1"].PointsAgainst)
	assert.Equal(t, 100.0, byID["p1"].WinPercentage)
	assert.Equal(t, 1, byID["p3"].Losses)
	assert.Equal(t, 5, byID["p3"].PointsFor)
	assert.Equal(t, 11, byID["p3"].PointsAgainst)
}

func TestApplyMatchResult_Draw(t *testing.T) {
	store := setupTestStore(t)

	// p1 first so seedRoster's default seed does not apply to them.
	store.AddPlayer("p1", "Alice", 3.7)
	seedRoster(store)
	match := doublesMatch("m1", 1000, 9, 9)
	require.NoError(t, store.UpsertMatch(match))

	// Draws carry no rating changes but still count in the tallies.
	require.NoError(t, store.ApplyMatchResult(match, nil))

	ratings, err := store.GetRatings([]string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 3.7, ratings["p1"], "draw must not move the rating")

	stat, err := store.GetPlayerStatsByName("Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, stat.Draws)
	assert.Equal(t, 0, stat.Wins)
	assert.Equal(t, 1, stat.MatchesPlayed)
}

func TestApplyMatchResult_RejectsMalformedMatch(t *testing.T) {
	store := setupTestStore(t)

	match := &league.Match{MatchID: "m1", Teams: []league.Team{{ID: "t1"}}}
	assert.Error(t, store.ApplyMatchResult(match, nil))
}

func TestUpsertPlayers_KeepsExistingRating(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Alice", 4.2)
	err := store.UpsertPlayers([]PlayerInfo{
		{ID: "p1", Name: "Alice Smith", Rating: 3.5},
		{ID: "p2", Name: "Bob", Rating: 3.5},
	})
	require.NoError(t, err)

	players, err := store.GetPlayers([]string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, players, 2)

	byID := make(map[string]PlayerInfo)
	for _, p := range players {
		byID[p.ID] = p
	}
	assert.Equal(t, "Alice Smith", byID["p1"].Name, "name refreshes")
	assert.Equal(t, 4.2, byID["p1"].Rating, "rating survives the upsert")
	assert.Equal(t, 3.5, byID["p2"].Rating)
}

func TestIsKnownPlayer(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Alice", 3.5)
	assert.True(t, store.IsKnownPlayer("p1"))
	assert.False(t, store.IsKnownPlayer("stranger"))
}

func TestGetPlayersSortedByRating(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Alice", 3.2)
	store.AddPlayer("p2", "Bob", 4.8)
	store.AddPlayer("p3", "Cara", 3.9)

	players, err := store.GetPlayersSortedByRating()
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "Bob", players[0].Name)
	assert.Equal(t, "Cara", players[1].Name)
	assert.Equal(t, "Alice", players[2].Name)
}

func TestGetPlayerStatsByName_Fuzzy(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Morten Voss", 3.5)
	store.AddPlayer("p2", "Bob Jones", 3.5)

	stat, err := store.GetPlayerStatsByName("morten")
	require.NoError(t, err)
	assert.Equal(t, "Morten Voss", stat.PlayerName)

	_, err = store.GetPlayerStatsByName("zzzzz")
	assert.Error(t, err)
}

func TestClearAndClearMatch(t *testing.T) {
	store := setupTestStore(t)

	store.AddPlayer("p1", "Alice", 3.5)
	require.NoError(t, store.UpsertMatches([]*league.Match{
		doublesMatch("m1", 1000, 11, 5),
		doublesMatch("m2", 2000, 11, 5),
	}))

	store.ClearMatch("m1")
	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m2", matches[0].MatchID)

	store.Clear()
	matches, err = store.GetAllMatches()
	require.NoError(t, err)
	assert.Empty(t, matches)
	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)
}
