package form

import (
	"fmt"
	"math"
	"testing"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedSingles builds a completed singles match between p1 and opponentID,
// with rating snapshots attached.
func playedSingles(id string, start int64, ownScore, oppScore int, ownBefore, oppBefore float64) *league.Match {
	return &league.Match{
		MatchID:    id,
		Start:      start,
		GameStatus: league.GameStatusPlayed,
		MatchType:  league.MatchTypeSingles,
		Teams: []league.Team{
			{ID: "t1", Score: ownScore, Players: []league.Player{{UserID: "p1"}}},
			{ID: "t2", Score: oppScore, Players: []league.Player{{UserID: "p2"}}},
		},
		RatingChanges: map[string]league.RatingChange{
			"p1": {Before: ownBefore, After: ownBefore},
			"p2": {Before: oppBefore, After: oppBefore},
		},
	}
}

func TestComputeForm_NoMatches(t *testing.T) {
	engine := NewEngine(DefaultParams())

	_, err := engine.ComputeForm("p1", nil, 3.5)
	assert.ErrorIs(t, err, ErrNoMatches)

	// Matches the player did not take part in do not count.
	other := playedSingles("m1", 100, 11, 5, 3.5, 3.5)
	_, err = engine.ComputeForm("p9", []*league.Match{other}, 3.5)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestComputeForm_SingleWin(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// Win by 6 over an equal opponent: quality 1.0, margin factor
	// 0.7 + 6/10 capped at 1.0, points 1.0. Score = 50 + 25 = 75.
	m := playedSingles("m1", 100, 11, 5, 3.5, 3.5)
	report, err := engine.ComputeForm("p1", []*league.Match{m}, 3.5)
	require.NoError(t, err)

	assert.Equal(t, 75.0, report.Score)
	assert.Equal(t, TrendUp, report.Trend)
	assert.Equal(t, 1, report.Wins)

	require.Len(t, report.Games, 1)
	g := report.Games[0]
	assert.Equal(t, OutcomeWin, g.Outcome)
	assert.Equal(t, 1.0, g.Quality)
	assert.Equal(t, 1.0, g.MarginFactor)
	assert.Equal(t, 1.0, g.Points)
	assert.False(t, g.Approximate)
}

func TestComputeForm_QualityWeighting(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// Beating a stronger opponent scores higher than beating a weaker one.
	upset := playedSingles("m1", 100, 11, 9, 3.5, 4.5)
	routine := playedSingles("m2", 100, 11, 9, 3.5, 2.5)

	upsetReport, err := engine.ComputeForm("p1", []*league.Match{upset}, 3.5)
	require.NoError(t, err)
	routineReport, err := engine.ComputeForm("p1", []*league.Match{routine}, 3.5)
	require.NoError(t, err)

	assert.Greater(t, upsetReport.Score, routineReport.Score)
	assert.Equal(t, 1.25, upsetReport.Games[0].Quality)
	assert.Equal(t, 0.75, routineReport.Games[0].Quality)

	// Losing to a weaker opponent is punished harder than losing to a
	// stronger one.
	badLoss := playedSingles("m3", 100, 9, 11, 3.5, 2.5)
	okLoss := playedSingles("m4", 100, 9, 11, 3.5, 4.5)

	badReport, err := engine.ComputeForm("p1", []*league.Match{badLoss}, 3.5)
	require.NoError(t, err)
	okReport, err := engine.ComputeForm("p1", []*league.Match{okLoss}, 3.5)
	require.NoError(t, err)

	assert.Less(t, badReport.Score, okReport.Score)
}

func TestComputeForm_DrawsCountInDenominator(t *testing.T) {
	engine := NewEngine(DefaultParams())

	win := playedSingles("m1", 200, 11, 5, 3.5, 3.5)
	draw := playedSingles("m2", 100, 9, 9, 3.5, 3.5)

	report, err := engine.ComputeForm("p1", []*league.Match{win, draw}, 3.5)
	require.NoError(t, err)

	// The draw contributes zero points but still dilutes the average:
	// score = 50 + (1.0+0.0)/2 * 25 = 62.5.
	assert.Equal(t, 62.5, report.Score)
	assert.Equal(t, TrendNeutral, report.Trend)
	assert.Equal(t, 1, report.Wins)
	assert.Equal(t, 1, report.Draws)
	assert.Equal(t, 0.0, report.Games[1].Points)
}

func TestComputeForm_WindowKeepsMostRecent(t *testing.T) {
	params := DefaultParams()
	params.WindowSize = 3
	engine := NewEngine(params)

	// Five matches; only the newest three may count. The two oldest are
	// heavy losses that would drag the score down.
	var matches []*league.Match
	matches = append(matches,
		playedSingles("old1", 10, 0, 11, 3.5, 3.5),
		playedSingles("old2", 20, 0, 11, 3.5, 3.5),
	)
	for i := 0; i < 3; i++ {
		matches = append(matches, playedSingles(fmt.Sprintf("new%d", i), int64(100+i), 11, 5, 3.5, 3.5))
	}

	report, err := engine.ComputeForm("p1", matches, 3.5)
	require.NoError(t, err)

	require.Len(t, report.Games, 3)
	assert.Equal(t, 3, report.Wins)
	assert.Equal(t, 0, report.Losses)
	// Newest first.
	assert.Equal(t, "new2", report.Games[0].MatchID)
	assert.Equal(t, 75.0, report.Score, "only the three recent wins count")
	assert.Equal(t, TrendUp, report.Trend)
}

func TestComputeForm_SkipsEmptyRosters(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// A played match with a vacated side has no opponent strength to measure;
	// it must not poison the score with a division by zero.
	empty := playedSingles("m1", 200, 11, 0, 3.5, 3.5)
	empty.Teams[1].Players = nil

	_, err := engine.ComputeForm("p1", []*league.Match{empty}, 3.5)
	assert.ErrorIs(t, err, ErrNoMatches)

	// Alongside a well-formed match it is simply ignored.
	win := playedSingles("m2", 100, 11, 5, 3.5, 3.5)
	report, err := engine.ComputeForm("p1", []*league.Match{empty, win}, 3.5)
	require.NoError(t, err)
	require.Len(t, report.Games, 1)
	assert.Equal(t, "m2", report.Games[0].MatchID)
	assert.Equal(t, 75.0, report.Score)
	assert.False(t, math.IsNaN(report.Score))
}

func TestComputeForm_AllDrawWindowIsNeutral(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// A window with no decisive games has nothing to shift the baseline.
	draws := []*league.Match{
		playedSingles("m1", 100, 9, 9, 3.5, 3.5),
		playedSingles("m2", 200, 7, 7, 3.5, 4.5),
	}

	report, err := engine.ComputeForm("p1", draws, 3.5)
	require.NoError(t, err)

	assert.Equal(t, 50.0, report.Score)
	assert.Equal(t, TrendNeutral, report.Trend)
	assert.Equal(t, 2, report.Draws)
	assert.Equal(t, 0, report.Wins)
	assert.Equal(t, 0, report.Losses)
	for _, g := range report.Games {
		assert.Equal(t, 0.0, g.Points)
	}
}

func TestComputeForm_SkipsUnplayedMatches(t *testing.T) {
	engine := NewEngine(DefaultParams())

	pending := playedSingles("m1", 100, 0, 0, 3.5, 3.5)
	pending.GameStatus = league.GameStatusPending

	_, err := engine.ComputeForm("p1", []*league.Match{pending}, 3.5)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestComputeForm_SnapshotFallback(t *testing.T) {
	engine := NewEngine(DefaultParams())

	m := playedSingles("m1", 100, 11, 5, 3.5, 3.5)
	m.RatingChanges = nil

	report, err := engine.ComputeForm("p1", []*league.Match{m}, 4.2)
	require.NoError(t, err)

	g := report.Games[0]
	assert.True(t, g.Approximate, "missing snapshots must be flagged")
	assert.Equal(t, 4.2, g.OpponentRating, "fallback uses the current rating")
	// Both sides fall back to the same rating, so the gap collapses to zero.
	assert.Equal(t, 1.0, g.Quality)
}

func TestComputeForm_TrendDown(t *testing.T) {
	engine := NewEngine(DefaultParams())

	losses := []*league.Match{
		playedSingles("m1", 100, 2, 11, 3.5, 3.5),
		playedSingles("m2", 200, 3, 11, 3.5, 3.5),
	}

	report, err := engine.ComputeForm("p1", losses, 3.5)
	require.NoError(t, err)

	assert.Equal(t, TrendDown, report.Trend)
	assert.Equal(t, 2, report.Losses)
	assert.Less(t, report.Score, 35.0)
	assert.GreaterOrEqual(t, report.Score, 0.0)
}
