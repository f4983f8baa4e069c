package club

import (
	"sync"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertMatchFunc              func(match *league.Match) error
	UpsertMatchesFunc            func(matches []*league.Match) error
	UpdateProcessingStatusFunc   func(matchID string, status league.ProcessingStatus) error
	GetMatchesForProcessingFunc  func() ([]*league.Match, error)
	GetAllMatchesFunc            func() ([]*league.Match, error)
	GetCompletedMatchesFunc      func() ([]*league.Match, error)
	AddPlayerFunc                func(playerID, name string, rating float64)
	UpsertPlayersFunc            func(players []PlayerInfo) error
	IsKnownPlayerFunc            func(playerID string) bool
	GetPlayersFunc               func(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayersFunc            func() ([]PlayerInfo, error)
	GetPlayersSortedByRatingFunc func() ([]PlayerInfo, error)
	GetRatingsFunc               func(playerIDs []string) (map[string]float64, error)
	ApplyMatchResultFunc         func(match *league.Match, changes map[string]league.RatingChange) error
	GetPlayerStatsFunc           func() ([]PlayerStats, error)
	GetPlayerStatsByNameFunc     func(playerName string) (*PlayerStats, error)
	ClearFunc                    func()
	ClearMatchFunc               func(matchID string)

	// Call records
	UpsertMatchCalls            []*league.Match
	UpsertMatchesCalls          [][]*league.Match
	UpsertPlayersCalls          [][]PlayerInfo
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  league.ProcessingStatus
	}
	ApplyMatchResultCalls []struct {
		Match   *league.Match
		Changes map[string]league.RatingChange
	}
	GetRatingsCalls [][]string
	GetPlayersCalls [][]string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchCalls = nil
	m.UpsertMatchesCalls = nil
	m.UpsertPlayersCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.ApplyMatchResultCalls = nil
	m.GetRatingsCalls = nil
	m.GetPlayersCalls = nil
}

func (m *MockStore) UpsertMatch(match *league.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchCalls = append(m.UpsertMatchCalls, match)
	if m.UpsertMatchFunc != nil {
		return m.UpsertMatchFunc(match)
	}
	return nil
}

func (m *MockStore) UpsertMatches(matches []*league.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchesCalls = append(m.UpsertMatchesCalls, matches)
	if m.UpsertMatchesFunc != nil {
		return m.UpsertMatchesFunc(matches)
	}
	return nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  league.ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) GetMatchesForProcessing() ([]*league.Match, error) {
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) GetAllMatches() ([]*league.Match, error) {
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetCompletedMatches() ([]*league.Match, error) {
	if m.GetCompletedMatchesFunc != nil {
		return m.GetCompletedMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) AddPlayer(playerID, name string, rating float64) {
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name, rating)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	m.GetPlayersCalls = append(m.GetPlayersCalls, playerIDs)
	m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	if m.GetPlayersSortedByRatingFunc != nil {
		return m.GetPlayersSortedByRatingFunc()
	}
	return nil, nil
}

func (m *MockStore) GetRatings(playerIDs []string) (map[string]float64, error) {
	m.mu.Lock()
	m.GetRatingsCalls = append(m.GetRatingsCalls, playerIDs)
	m.mu.Unlock()
	if m.GetRatingsFunc != nil {
		return m.GetRatingsFunc(playerIDs)
	}
	return map[string]float64{}, nil
}

func (m *MockStore) ApplyMatchResult(match *league.Match, changes map[string]league.RatingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyMatchResultCalls = append(m.ApplyMatchResultCalls, struct {
		Match   *league.Match
		Changes map[string]league.RatingChange
	}{match, changes})
	if m.ApplyMatchResultFunc != nil {
		return m.ApplyMatchResultFunc(match, changes)
	}
	return nil
}

func (m *MockStore) GetPlayerStats() ([]PlayerStats, error) {
	if m.GetPlayerStatsFunc != nil {
		return m.GetPlayerStatsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	if m.GetPlayerStatsByNameFunc != nil {
		return m.GetPlayerStatsByNameFunc(playerName)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

func (m *MockStore) ClearMatch(matchID string) {
	if m.ClearMatchFunc != nil {
		m.ClearMatchFunc(matchID)
	}
}
