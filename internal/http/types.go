package http

import (
	"net/http"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/config"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/metrics"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/notifier"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/playtomic"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/processor"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/pubsub"
)

type Server struct {
	Store           club.ClubStore
	Metrics         metrics.Metrics
	MetricsHandler  http.Handler
	Cfg             config.Config
	PlaytomicClient playtomic.PlaytomicClient
	Notifier        notifier.Notifier
	Processor       *processor.Processor
	FormEngine      *form.Engine
	Router          *http.ServeMux
	pubsub          pubsub.PubSubClient
}
