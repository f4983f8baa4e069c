package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/database"
)

func setupTestDB(t *testing.T) MetricsStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db)
}

func TestMetricsStore(t *testing.T) {
	store := setupTestDB(t)

	// 1. Initially, there should be no metrics
	counts, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, counts)

	// 2. Increment a new key
	store.Increment("fetcher_runs")
	counts, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fetcher_runs": 1}, counts)

	// 3. Increment the same key again
	store.Increment("fetcher_runs")
	counts, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fetcher_runs": 2}, counts)

	// 4. Increment a different key
	store.Increment("slack_notifications_sent")
	counts, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"fetcher_runs":             2,
		"slack_notifications_sent": 1,
	}, counts)
}
