package processor

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/metrics"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/pubsub"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
)

// New creates a new Processor.
func New(store Store, engine *rating.Engine, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		engine:   engine,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for _, match := range matches {
		startTime := time.Now()
		p.processMatch(match, dryRun)
		p.metrics.IncMatchesProcessed()
		duration := time.Since(startTime).Seconds()
		p.metrics.ObserveProcessingDuration(duration)
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *league.Match, dryRun bool) {
	log.Info("Processing match", "matchID", match.MatchID, "initial_status", match.ProcessingStatus, "game_status", match.GameStatus)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.MatchID, "status", currentState)

		switch currentState {
		case league.StatusNew:
			// Ensure all players from the match are in our database.
			var playersToUpsert []club.PlayerInfo
			for _, team := range match.Teams {
				for _, player := range team.Players {
					playersToUpsert = append(playersToUpsert, club.PlayerInfo{
						ID:     player.UserID,
						Name:   player.Name,
						Rating: p.seedRating(player.Rating),
					})
				}
			}
			if len(playersToUpsert) > 0 {
				if err := p.store.UpsertPlayers(playersToUpsert); err != nil {
					log.Error("Failed to upsert players for match", "error", err, "matchID", match.MatchID)
				}
			}

			// A match that was already played never gets a booking notification.
			switch match.GameStatus {
			case league.GameStatusPlayed:
				switch match.ResultsStatus {
				case league.ResultsStatusConfirmed:
					log.Info("Match is new but already played with confirmed results. Advancing to result available.", "matchID", match.MatchID)
					p.updateStatus(match, league.StatusResultAvailable, dryRun)
				case league.ResultsStatusExpired:
					log.Info("Match is new and already played, but results are expired. Setting match to completed.", "matchID", match.MatchID)
					p.updateStatus(match, league.StatusCompleted, dryRun)
				default:
					// Played but the result is not confirmed yet; suppress the
					// booking notification and wait for confirmation.
					log.Info("Match is new and already played, but results are not confirmed. Skipping booking notification.", "matchID", match.MatchID)
					p.updateStatus(match, league.StatusBookingNotified, dryRun)
				}
			case league.GameStatusCanceled:
				log.Info("Match is canceled. Setting match to completed.", "matchID", match.MatchID)
				p.updateStatus(match, league.StatusCompleted, dryRun)
			default:
				// A normal, upcoming match.
				log.Info("Match is new. Sending booking notification.", "matchID", match.MatchID)
				p.notifier.SendBookingNotification(match, dryRun)
				p.updateStatus(match, league.StatusBookingNotified, dryRun)
			}

		case league.StatusBookingNotified:
			if match.GameStatus == league.GameStatusPlayed && match.ResultsStatus == league.ResultsStatusConfirmed {
				log.Info("Match has been played. Marking as result available.", "matchID", match.MatchID)
				p.updateStatus(match, league.StatusResultAvailable, dryRun)
			}

		case league.StatusResultAvailable:
			log.Info("Match result is available. Applying rating updates.", "matchID", match.MatchID)
			if err := p.ApplyRatings(match, dryRun); err != nil {
				log.Error("Failed to apply rating updates. Marking match as complete.", "error", err, "matchID", match.MatchID)
				p.updateStatus(match, league.StatusCompleted, dryRun)
				break
			}
			p.updateStatus(match, league.StatusRatingsApplied, dryRun)

		case league.StatusRatingsApplied:
			log.Info("Ratings applied. Publishing result notification event.", "matchID", match.MatchID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventNotifyResult, match)
			}
			p.updateStatus(match, league.StatusResultNotified, dryRun)

		case league.StatusResultNotified:
			log.Info("Match result has been notified. Marking match as complete.", "matchID", match.MatchID)
			p.updateStatus(match, league.StatusCompleted, dryRun)

		case league.StatusCompleted:
			log.Debug("Match is complete. No further processing needed.", "matchID", match.MatchID)
			return

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.MatchID)
			return
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.MatchID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.MatchID, "final_status", match.ProcessingStatus)
}

// ApplyRatings records a match result: it validates the result, computes each
// participant's rating update, and persists the snapshots plus the win/loss
// and points tallies in one atomic store write. The engine itself is pure; a
// result is either recorded here in full or not at all. Draws skip the rating
// engine and only bump the draws tally.
func (p *Processor) ApplyRatings(match *league.Match, dryRun bool) error {
	if err := league.ValidateResult(match); err != nil {
		if !errors.Is(err, league.ErrTiedResult) {
			return err
		}
		log.Info("Match ended in a draw. Recording tally without rating changes.", "matchID", match.MatchID)
		if dryRun {
			log.Info("[Dry Run] Would record draw", "matchID", match.MatchID)
			return nil
		}
		return p.store.ApplyMatchResult(match, nil)
	}

	before, err := p.store.GetRatings(match.PlayerIDs())
	if err != nil {
		return err
	}

	changes := p.engine.ComputeUpdate(match, before)
	if dryRun {
		log.Info("[Dry Run] Would apply rating updates", "matchID", match.MatchID, "changes", changes)
		match.RatingChanges = changes
		return nil
	}
	if err := p.store.ApplyMatchResult(match, changes); err != nil {
		return err
	}
	match.RatingChanges = changes // keep the in-memory match in sync for notifications
	p.metrics.IncRatingUpdates()

	for pid, c := range changes {
		log.Debug("Rating updated", "matchID", match.MatchID, "playerID", pid, "before", c.Before, "after", c.After)
	}
	return nil
}

// NotifyResult sends the result notification for a match whose ratings are
// already applied. Matches that ended more than a day ago are skipped so
// historic backfills do not spam the channel.
func (p *Processor) NotifyResult(match *league.Match, dryRun bool) error {
	timeEnded := time.Unix(match.End, 0)
	if time.Since(timeEnded) >= 24*time.Hour {
		log.Info("Match ended more than a day ago. Skipping result notification.", "matchID", match.MatchID)
		return nil
	}
	_, err := p.notifier.SendResultNotification(match, dryRun)
	return err
}

// seedRating normalizes a platform-reported level before it is persisted. The
// booking platform omits levels for unranked players (zero value); those seed
// the default rating, and anything else is clamped to the league scale.
func (p *Processor) seedRating(level float64) float64 {
	rp := p.engine.Params()
	if level == 0 {
		return rp.DefaultRating
	}
	return rating.Clamp(level, rp.MinRating, rp.MaxRating)
}

func (p *Processor) updateStatus(match *league.Match, newStatus league.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.MatchID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.MatchID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.MatchID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.MatchID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
