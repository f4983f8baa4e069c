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

func NewServer(store club.ClubStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, playtomicClient playtomic.PlaytomicClient, notifier notifier.Notifier, processor *processor.Processor, formEngine *form.Engine, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:           store,
		Metrics:         metricsSvc,
		MetricsHandler:  metricsHandler,
		Cfg:             cfg,
		PlaytomicClient: playtomicClient,
		Notifier:        notifier,
		Processor:       processor,
		FormEngine:      formEngine,
		Router:          http.NewServeMux(),
		pubsub:          pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/fetch", Chain(s.FetchMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/rating-leaderboard", Chain(s.RatingLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/form", Chain(s.PlayerFormHandler(), paramsMiddleware))
	s.Router.Handle("/apply-ratings", Chain(s.ApplyRatingsHandler(), paramsMiddleware))
	s.Router.Handle("/notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/rating-leaderboard", Chain(s.RatingLeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/form", Chain(s.PlayerFormCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
