package processor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/database"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/metrics"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/notifier"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/pubsub"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
)

type fixture struct {
	store    *club.MockStore
	notifier *notifier.MockNotifier
	metrics  *metrics.MockMetrics
	pubsub   *pubsub.MockPubSubClient
	p        *Processor
}

func setup() *fixture {
	f := &fixture{
		store:    club.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock("TEST"),
	}
	f.p = New(f.store, rating.NewEngine(rating.DefaultParams()), f.notifier, f.metrics, f.pubsub)
	return f
}

func newSinglesMatch(status league.ProcessingStatus, gameStatus league.GameStatus, resultsStatus league.ResultsStatus) *league.Match {
	return &league.Match{
		MatchID:          "m1",
		Start:            time.Now().Unix(),
		End:              time.Now().Unix() + 3600,
		GameStatus:       gameStatus,
		ResultsStatus:    resultsStatus,
		ProcessingStatus: status,
		MatchType:        league.MatchTypeSingles,
		Teams: []league.Team{
			{ID: "t1", Score: 11, Players: []league.Player{{UserID: "p1", Name: "Alice"}}},
			{ID: "t2", Score: 5, Players: []league.Player{{UserID: "p2", Name: "Bob"}}},
		},
	}
}

func lastStatus(t *testing.T, store *club.MockStore) league.ProcessingStatus {
	t.Helper()
	require.NotEmpty(t, store.UpdateProcessingStatusCalls)
	return store.UpdateProcessingStatusCalls[len(store.UpdateProcessingStatusCalls)-1].Status
}

func TestProcessMatches_NewUpcomingMatch(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusPending, league.ResultsStatusPending)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	require.Len(t, f.notifier.SendBookingNotificationCalls, 1)
	assert.Equal(t, "m1", f.notifier.SendBookingNotificationCalls[0].MatchID)
	assert.Equal(t, league.StatusBookingNotified, lastStatus(t, f.store))
	assert.Equal(t, 1, f.metrics.MatchesProcessedCount)

	// Players from the roster get registered before anything else.
	require.Len(t, f.store.UpsertPlayersCalls, 1)
	assert.Len(t, f.store.UpsertPlayersCalls[0], 2)
}

func TestProcessMatches_PlayedMatchRunsToCompletion(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}
	f.store.GetRatingsFunc = func(ids []string) (map[string]float64, error) {
		return map[string]float64{"p1": 3.5, "p2": 3.5}, nil
	}

	f.p.ProcessMatches(false)

	// Already-played matches never trigger a booking notification.
	assert.Empty(t, f.notifier.SendBookingNotificationCalls)

	require.Len(t, f.store.ApplyMatchResultCalls, 1)
	changes := f.store.ApplyMatchResultCalls[0].Changes
	require.Contains(t, changes, "p1")
	assert.Greater(t, changes["p1"].After, changes["p1"].Before)
	assert.Equal(t, 1, f.metrics.RatingUpdatesCount)

	require.Len(t, f.pubsub.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventNotifyResult), f.pubsub.SendMessageCalls[0].Topic)

	assert.Equal(t, league.StatusCompleted, lastStatus(t, f.store))
}

func TestProcessMatches_CanceledMatchCompletes(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusCanceled, league.ResultsStatusPending)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	assert.Empty(t, f.notifier.SendBookingNotificationCalls)
	assert.Empty(t, f.store.ApplyMatchResultCalls)
	assert.Equal(t, league.StatusCompleted, lastStatus(t, f.store))
}

func TestProcessMatches_ExpiredResultsComplete(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusPlayed, league.ResultsStatusExpired)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	assert.Empty(t, f.store.ApplyMatchResultCalls)
	assert.Equal(t, league.StatusCompleted, lastStatus(t, f.store))
}

func TestProcessMatches_PlayedUnconfirmedWaits(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusPlayed, league.ResultsStatusValidating)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	// Skips the booking notification and parks until the result confirms.
	assert.Empty(t, f.notifier.SendBookingNotificationCalls)
	assert.Empty(t, f.store.ApplyMatchResultCalls)
	assert.Equal(t, league.StatusBookingNotified, lastStatus(t, f.store))
}

func TestProcessMatches_BookingNotifiedAdvancesOnConfirmedResult(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusBookingNotified, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	require.Len(t, f.store.ApplyMatchResultCalls, 1)
	assert.Equal(t, league.StatusCompleted, lastStatus(t, f.store))
}

func TestProcessMatches_InvalidResultCompletesWithoutRatings(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusResultAvailable, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	match.Teams[0].Players = nil // roster no longer matches the match type
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}

	f.p.ProcessMatches(false)

	assert.Empty(t, f.store.ApplyMatchResultCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls)
	assert.Equal(t, league.StatusCompleted, lastStatus(t, f.store))
}

func TestProcessMatches_DryRunTouchesNothing(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusNew, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	f.store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
		return []*league.Match{match}, nil
	}
	f.store.GetRatingsFunc = func(ids []string) (map[string]float64, error) {
		return map[string]float64{"p1": 3.5, "p2": 3.5}, nil
	}

	f.p.ProcessMatches(true)

	assert.Empty(t, f.store.UpdateProcessingStatusCalls)
	assert.Empty(t, f.store.ApplyMatchResultCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls)

	// The in-memory copy still walks the whole machine.
	assert.Equal(t, league.StatusCompleted, match.ProcessingStatus)
	require.Contains(t, match.RatingChanges, "p1")
}

func TestProcessMatches_SeedsUnratedPlayersAtDefault(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	store := club.New(db)
	store.AddPlayer("owner", "Owner", 3.5)

	// The booking platform reports no level for unranked players (zero) and
	// can report levels outside the league scale. Neither may reach the
	// engine or the database raw.
	match := newSinglesMatch(league.StatusNew, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	match.OwnerID = "owner"
	match.OwnerName = "Owner"
	match.Teams[0].Players[0].Rating = 0
	match.Teams[1].Players[0].Rating = 9.5
	require.NoError(t, store.UpsertMatch(match))

	proc := New(store, rating.NewEngine(rating.DefaultParams()), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))
	proc.ProcessMatches(false)

	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, league.StatusCompleted, matches[0].ProcessingStatus)

	changes := matches[0].RatingChanges
	require.Contains(t, changes, "p1")
	require.Contains(t, changes, "p2")
	assert.Equal(t, 3.5, changes["p1"].Before, "missing level seeds the default rating")
	assert.Equal(t, 8.0, changes["p2"].Before, "reported level is clamped to the scale")

	ratings, err := store.GetRatings([]string{"p1", "p2"})
	require.NoError(t, err)
	for id, r := range ratings {
		assert.GreaterOrEqual(t, r, 2.0, id)
		assert.LessOrEqual(t, r, 8.0, id)
	}
}

func TestApplyRatings_Draw(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusResultAvailable, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	match.Teams[1].Score = 11

	require.NoError(t, f.p.ApplyRatings(match, false))

	require.Len(t, f.store.ApplyMatchResultCalls, 1)
	assert.Nil(t, f.store.ApplyMatchResultCalls[0].Changes, "draws record no rating changes")
	assert.Empty(t, f.store.GetRatingsCalls)
	assert.Equal(t, 0, f.metrics.RatingUpdatesCount)
}

func TestApplyRatings_ValidationError(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusResultAvailable, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	match.Teams = match.Teams[:1]

	assert.Error(t, f.p.ApplyRatings(match, false))
	assert.Empty(t, f.store.ApplyMatchResultCalls)
}

func TestApplyRatings_StoreErrorPropagates(t *testing.T) {
	f := setup()
	match := newSinglesMatch(league.StatusResultAvailable, league.GameStatusPlayed, league.ResultsStatusConfirmed)
	f.store.GetRatingsFunc = func(ids []string) (map[string]float64, error) {
		return map[string]float64{"p1": 3.5, "p2": 3.5}, nil
	}
	f.store.ApplyMatchResultFunc = func(m *league.Match, c map[string]league.RatingChange) error {
		return errors.New("db locked")
	}

	assert.Error(t, f.p.ApplyRatings(match, false))
	assert.Equal(t, 0, f.metrics.RatingUpdatesCount)
}

func TestNotifyResult(t *testing.T) {
	t.Run("recent match notifies", func(t *testing.T) {
		f := setup()
		match := newSinglesMatch(league.StatusRatingsApplied, league.GameStatusPlayed, league.ResultsStatusConfirmed)
		match.End = time.Now().Add(-1 * time.Hour).Unix()

		require.NoError(t, f.p.NotifyResult(match, false))
		assert.Len(t, f.notifier.SendResultNotificationCalls, 1)
	})

	t.Run("old match is skipped", func(t *testing.T) {
		f := setup()
		match := newSinglesMatch(league.StatusRatingsApplied, league.GameStatusPlayed, league.ResultsStatusConfirmed)
		match.End = time.Now().Add(-25 * time.Hour).Unix()

		require.NoError(t, f.p.NotifyResult(match, false))
		assert.Empty(t, f.notifier.SendResultNotificationCalls)
	})

	t.Run("notifier error propagates", func(t *testing.T) {
		f := setup()
		match := newSinglesMatch(league.StatusRatingsApplied, league.GameStatusPlayed, league.ResultsStatusConfirmed)
		match.End = time.Now().Unix()
		f.notifier.SendResultNotificationFunc = func(m *league.Match, dryRun bool) (string, error) {
			return "", errors.New("slack down")
		}

		assert.Error(t, f.p.NotifyResult(match, false))
	})
}
