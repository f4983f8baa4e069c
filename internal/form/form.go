// Package form computes a rolling 0-100 "recent form" score for a player from
// their most recent matches. Form is a short-term indicator recomputed on
// demand; it is independent of the persisted rating, which is the long-term
// skill estimate maintained incrementally by the rating engine.
package form

import (
	"errors"
	"sort"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
)

// ErrNoMatches is returned when the player has no completed matches at all.
// Callers should render this as "no form data" rather than a neutral score.
var ErrNoMatches = errors.New("no matches for player")

// Trend classifies a form score.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendNeutral Trend = "neutral"
	TrendDown    Trend = "down"
)

// Outcome of a single game from the player's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Params holds the form tuning. See rating.Params for why these are injected.
type Params struct {
	// WindowSize is the number of most recent matches considered.
	WindowSize int

	// Quality multiplier per point of rating gap, and its clamp.
	QualityWeight float64
	QualityMin    float64
	QualityMax    float64

	// Margin factor: base + min(margin/divisor, cap-base), bounded [base, cap].
	MarginBase    float64
	MarginDivisor float64
	MarginCap     float64

	// Final score: clamp(Baseline + avg*Scale, 0, 100).
	Baseline float64
	Scale    float64

	// Trend thresholds.
	TrendUpAt   float64
	TrendDownAt float64
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		WindowSize:    10,
		QualityWeight: 0.25,
		QualityMin:    0.5,
		QualityMax:    1.5,
		MarginBase:    0.7,
		MarginDivisor: 10,
		MarginCap:     1.0,
		Baseline:      50,
		Scale:         25,
		TrendUpAt:     65,
		TrendDownAt:   35,
	}
}

// GameBreakdown explains one game's contribution to the form score.
type GameBreakdown struct {
	MatchID string `json:"match_id"`
	// PlayedAt is the match start time (unix seconds).
	PlayedAt int64   `json:"played_at"`
	Outcome  Outcome `json:"outcome"`
	Margin   int     `json:"margin"`
	// OpponentRating is the mean opponent-team rating at the time of the
	// game, taken from the stored rating snapshots.
	OpponentRating float64 `json:"opponent_rating"`
	// Approximate is true when at least one rating lacked a stored snapshot
	// and the player's current rating was used instead. This happens for
	// matches recorded before snapshotting existed and biases historical
	// games toward the present; a known approximation, not a bug.
	Approximate  bool    `json:"approximate"`
	Quality      float64 `json:"quality"`
	MarginFactor float64 `json:"margin_factor"`
	// Points is the signed quality-weighted score: positive for wins,
	// negative for losses, exactly zero for draws.
	Points float64 `json:"points"`
}

// Report is the result of a form computation.
type Report struct {
	PlayerID string          `json:"player_id"`
	Score    float64         `json:"score"`
	Trend    Trend           `json:"trend"`
	Wins     int             `json:"wins"`
	Losses   int             `json:"losses"`
	Draws    int             `json:"draws"`
	Games    []GameBreakdown `json:"games"`
}

// Engine computes form scores. Pure and stateless, like the rating engine.
type Engine struct {
	params Params
}

// NewEngine creates a form engine with the given tuning.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// ComputeForm derives the player's form from their match history. matches may
// be the full history available to the caller; the engine restricts itself to
// the player's most recent WindowSize completed games. currentRating is the
// fallback reference whenever a match lacks a stored rating snapshot.
func (e *Engine) ComputeForm(playerID string, matches []*league.Match, currentRating float64) (Report, error) {
	p := e.params
	window := e.window(playerID, matches)
	if len(window) == 0 {
		return Report{}, ErrNoMatches
	}

	report := Report{PlayerID: playerID}
	sum := 0.0
	for _, m := range window {
		g := e.scoreGame(playerID, m, currentRating)
		sum += g.Points
		switch g.Outcome {
		case OutcomeWin:
			report.Wins++
		case OutcomeLoss:
			report.Losses++
		case OutcomeDraw:
			report.Draws++
		}
		report.Games = append(report.Games, g)
	}

	// Draws sit in the denominator but contribute nothing to the numerator.
	avg := sum / float64(len(window))
	report.Score = rating.Clamp(p.Baseline+avg*p.Scale, 0, 100)
	report.Trend = e.trend(report.Score)
	return report, nil
}

// window filters to the player's games with a recorded result, newest first,
// capped at WindowSize. Matches with an empty side carry no usable opponent
// strength and are skipped.
func (e *Engine) window(playerID string, matches []*league.Match) []*league.Match {
	var own []*league.Match
	for _, m := range matches {
		if len(m.Teams) != 2 {
			continue
		}
		if len(m.Teams[0].Players) == 0 || len(m.Teams[1].Players) == 0 {
			continue
		}
		if m.GameStatus != league.GameStatusPlayed {
			continue
		}
		if m.TeamOf(playerID) < 0 {
			continue
		}
		own = append(own, m)
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].Start > own[j].Start
	})
	if len(own) > e.params.WindowSize {
		own = own[:e.params.WindowSize]
	}
	return own
}

func (e *Engine) scoreGame(playerID string, m *league.Match, currentRating float64) GameBreakdown {
	p := e.params
	ti := m.TeamOf(playerID)
	own := m.Teams[ti]
	opponent, _ := m.Opposing(ti)

	g := GameBreakdown{
		MatchID:  m.MatchID,
		PlayedAt: m.Start,
		Margin:   m.Margin(),
	}

	// Opponent strength at the time of the game, from the match's own
	// snapshots where present.
	oppSum := 0.0
	for _, op := range opponent.Players {
		r, exact := snapshotBefore(m, op.UserID)
		if !exact {
			r = currentRating
			g.Approximate = true
		}
		oppSum += r
	}
	g.OpponentRating = oppSum / float64(len(opponent.Players))

	playerRating, exact := snapshotBefore(m, playerID)
	if !exact {
		playerRating = currentRating
		g.Approximate = true
	}

	switch {
	case own.Score == opponent.Score:
		g.Outcome = OutcomeDraw
		return g
	case own.Score > opponent.Score:
		g.Outcome = OutcomeWin
	default:
		g.Outcome = OutcomeLoss
	}

	ratingDiff := g.OpponentRating - playerRating
	if g.Outcome == OutcomeWin {
		g.Quality = rating.Clamp(1.0+ratingDiff*p.QualityWeight, p.QualityMin, p.QualityMax)
	} else {
		g.Quality = rating.Clamp(1.0-ratingDiff*p.QualityWeight, p.QualityMin, p.QualityMax)
	}

	extra := float64(g.Margin) / p.MarginDivisor
	if extra > p.MarginCap-p.MarginBase {
		extra = p.MarginCap - p.MarginBase
	}
	g.MarginFactor = p.MarginBase + extra

	base := 1.0
	if g.Outcome == OutcomeLoss {
		base = -1.0
	}
	g.Points = base * g.Quality * g.MarginFactor
	return g
}

func (e *Engine) trend(score float64) Trend {
	switch {
	case score >= e.params.TrendUpAt:
		return TrendUp
	case score <= e.params.TrendDownAt:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// snapshotBefore looks up the stored pre-match rating for a player. exact is
// false when the match carries no snapshot for them, in which case the caller
// falls back to the current rating.
func snapshotBefore(m *league.Match, playerID string) (float64, bool) {
	if m.RatingChanges == nil {
		return 0, false
	}
	rc, ok := m.RatingChanges[playerID]
	if !ok {
		return 0, false
	}
	return rc.Before, true
}
