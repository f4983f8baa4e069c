package notifier

import (
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

// MockNotifier is a mock implementation of the Notifier interface for testing.
type MockNotifier struct {
	SendBookingNotificationFunc func(match *league.Match, dryRun bool) (string, error)
	SendResultNotificationFunc  func(match *league.Match, dryRun bool) (string, error)
	SendLeaderboardFunc         func(stats []club.PlayerStats, dryRun bool) error
	SendRatingLeaderboardFunc   func(players []club.PlayerInfo, dryRun bool) error
	SendPlayerStatsFunc         func(stats *club.PlayerStats, query string, dryRun bool) error
	SendPlayerFormFunc          func(report form.Report, playerName string, dryRun bool) error
	SendPlayerNotFoundFunc      func(query string, dryRun bool) error

	FormatLeaderboardResponseFunc       func(stats []club.PlayerStats) (any, error)
	FormatRatingLeaderboardResponseFunc func(players []club.PlayerInfo) (any, error)
	FormatPlayerStatsResponseFunc       func(stats *club.PlayerStats, query string) (any, error)
	FormatPlayerFormResponseFunc        func(report form.Report, playerName string) (any, error)
	FormatPlayerNotFoundResponseFunc    func(query string) (any, error)

	SendBookingNotificationCalls []*league.Match
	SendResultNotificationCalls  []*league.Match
	SendLeaderboardCalls         [][]club.PlayerStats
	SendRatingLeaderboardCalls   [][]club.PlayerInfo
	SendPlayerStatsCalls         []string
	SendPlayerFormCalls          []string
	SendPlayerNotFoundCalls      []string
}

var _ Notifier = &MockNotifier{}

func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendBookingNotification(match *league.Match, dryRun bool) (string, error) {
	m.SendBookingNotificationCalls = append(m.SendBookingNotificationCalls, match)
	if m.SendBookingNotificationFunc != nil {
		return m.SendBookingNotificationFunc(match, dryRun)
	}
	return "", nil
}

func (m *MockNotifier) SendResultNotification(match *league.Match, dryRun bool) (string, error) {
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, match)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return "", nil
}

func (m *MockNotifier) SendLeaderboard(stats []club.PlayerStats, dryRun bool) error {
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, stats)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(stats, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendRatingLeaderboard(players []club.PlayerInfo, dryRun bool) error {
	m.SendRatingLeaderboardCalls = append(m.SendRatingLeaderboardCalls, players)
	if m.SendRatingLeaderboardFunc != nil {
		return m.SendRatingLeaderboardFunc(players, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendPlayerStats(stats *club.PlayerStats, query string, dryRun bool) error {
	m.SendPlayerStatsCalls = append(m.SendPlayerStatsCalls, query)
	if m.SendPlayerStatsFunc != nil {
		return m.SendPlayerStatsFunc(stats, query, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendPlayerForm(report form.Report, playerName string, dryRun bool) error {
	m.SendPlayerFormCalls = append(m.SendPlayerFormCalls, playerName)
	if m.SendPlayerFormFunc != nil {
		return m.SendPlayerFormFunc(report, playerName, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendPlayerNotFound(query string, dryRun bool) error {
	m.SendPlayerNotFoundCalls = append(m.SendPlayerNotFoundCalls, query)
	if m.SendPlayerNotFoundFunc != nil {
		return m.SendPlayerNotFoundFunc(query, dryRun)
	}
	return nil
}

func (m *MockNotifier) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(stats)
	}
	return nil, nil
}

func (m *MockNotifier) FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error) {
	if m.FormatRatingLeaderboardResponseFunc != nil {
		return m.FormatRatingLeaderboardResponseFunc(players)
	}
	return nil, nil
}

func (m *MockNotifier) FormatPlayerStatsResponse(stats *club.PlayerStats, query string) (any, error) {
	if m.FormatPlayerStatsResponseFunc != nil {
		return m.FormatPlayerStatsResponseFunc(stats, query)
	}
	return nil, nil
}

func (m *MockNotifier) FormatPlayerFormResponse(report form.Report, playerName string) (any, error) {
	if m.FormatPlayerFormResponseFunc != nil {
		return m.FormatPlayerFormResponseFunc(report, playerName)
	}
	return nil, nil
}

func (m *MockNotifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return nil, nil
}

// Reset clears all recorded calls.
func (m *MockNotifier) Reset() {
	m.SendBookingNotificationCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendRatingLeaderboardCalls = nil
	m.SendPlayerStatsCalls = nil
	m.SendPlayerFormCalls = nil
	m.SendPlayerNotFoundCalls = nil
}
