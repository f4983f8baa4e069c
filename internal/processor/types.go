package processor

import (
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/metrics"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/pubsub"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
)

// Processor drives matches through the processing state machine and owns the
// result-recording flow: rating computation, atomic persistence, notification.
type Processor struct {
	store    Store
	engine   *rating.Engine
	notifier Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
}
