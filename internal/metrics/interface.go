package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncFetcherRuns()
	IncMatchesProcessed()
	ObserveProcessingDuration(duration float64)
	IncRatingUpdates()
	IncFormComputations()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists simple named counters in the database, surviving
// restarts where the in-process Prometheus counters do not.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
