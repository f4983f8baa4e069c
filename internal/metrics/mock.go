package metrics

import "sync"

// MockMetrics is a no-op implementation of the Metrics interface that records
// call counts for assertions.
type MockMetrics struct {
	mu sync.Mutex

	FetcherRunsCount      int
	MatchesProcessedCount int
	ProcessingDurations   []float64
	RatingUpdatesCount    int
	FormComputationsCount int
	SlackNotifSentCount   int
	SlackNotifFailedCount int
	StartupTimes          []float64
}

var _ Metrics = (*MockMetrics)(nil)

// NewMock creates a new mock Metrics.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncFetcherRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetcherRunsCount++
}

func (m *MockMetrics) IncMatchesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesProcessedCount++
}

func (m *MockMetrics) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessingDurations = append(m.ProcessingDurations, duration)
}

func (m *MockMetrics) IncRatingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingUpdatesCount++
}

func (m *MockMetrics) IncFormComputations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormComputationsCount++
}

func (m *MockMetrics) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCount++
}

func (m *MockMetrics) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCount++
}

func (m *MockMetrics) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, duration)
}

// SlackNotifSent returns how many notifications were recorded as sent.
func (m *MockMetrics) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SlackNotifSentCount
}

// SlackNotifFailed returns how many notifications were recorded as failed.
func (m *MockMetrics) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SlackNotifFailedCount
}

// MockMetricsStore is an in-memory MetricsStore for tests.
type MockMetricsStore struct {
	mu     sync.Mutex
	Counts map[string]int
}

var _ MetricsStore = (*MockMetricsStore)(nil)

// NewMockStore creates a new in-memory metrics store.
func NewMockStore() *MockMetricsStore {
	return &MockMetricsStore{Counts: make(map[string]int)}
}

func (m *MockMetricsStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts[key]++
}

func (m *MockMetricsStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.Counts))
	for k, v := range m.Counts {
		out[k] = v
	}
	return out, nil
}
