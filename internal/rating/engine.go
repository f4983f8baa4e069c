package rating

import (
	"math"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
)

// Engine computes post-match rating updates. It is a pure function of its
// inputs: no I/O, no internal state, safe for concurrent use. Input validation
// (roster sizes, no tie, no player on both teams) is the caller's job; see
// league.ValidateResult.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given tuning.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's tuning.
func (e *Engine) Params() Params {
	return e.params
}

// ComputeUpdate returns, for every participant of the match, the rating pair
// {before, after}. Missing entries in before default to DefaultRating. The
// result is suitable for direct persistence: After is already clamped to
// [MinRating, MaxRating].
func (e *Engine) ComputeUpdate(match *league.Match, before map[string]float64) map[string]league.RatingChange {
	p := e.params
	changes := make(map[string]league.RatingChange)

	winner, ok := match.Winner()
	if !ok {
		// Draws and malformed rosters are rejected upstream; per team a
		// 0.5/0.5 split would be a no-op for equally rated teams anyway.
		return changes
	}
	margin := match.Margin()

	for ti, team := range match.Teams {
		opponent, ok := match.Opposing(ti)
		if !ok {
			return changes
		}
		teamRating := e.teamRating(team, before)
		opponentRating := e.teamRating(opponent, before)

		expected := e.expectedScore(teamRating, opponentRating)
		won := team.ID == winner.ID
		actual := 0.0
		if won {
			actual = 1.0
		}

		baseChange := p.KFactor * (actual - expected) * 2
		marginMult := e.marginMultiplier(margin)

		for _, player := range team.Players {
			old := e.ratingOf(player.UserID, before)

			perfMult := 1.0
			if match.MatchType == league.MatchTypeDoubles {
				perfMult = e.performanceMultiplier(old, teamRating, won)
			}
			underdogMult := e.underdogMultiplier(old, teamRating, opponentRating, won)

			delta := baseChange * marginMult * perfMult * underdogMult
			changes[player.UserID] = league.RatingChange{
				Before: old,
				After:  Clamp(old+delta, p.MinRating, p.MaxRating),
			}
		}
	}
	return changes
}

func (e *Engine) ratingOf(playerID string, before map[string]float64) float64 {
	if r, ok := before[playerID]; ok {
		return r
	}
	return e.params.DefaultRating
}

// teamRating is the arithmetic mean of the members' pre-match ratings.
func (e *Engine) teamRating(team league.Team, before map[string]float64) float64 {
	if len(team.Players) == 0 {
		return e.params.DefaultRating
	}
	sum := 0.0
	for _, p := range team.Players {
		sum += e.ratingOf(p.UserID, before)
	}
	return sum / float64(len(team.Players))
}

// expectedScore is the logistic win probability of a team rated r1 against a
// team rated r2. expectedScore(r1, r2) + expectedScore(r2, r1) == 1.
func (e *Engine) expectedScore(r1, r2 float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (r2-r1)/e.params.Spread))
}

// marginMultiplier scales the swing by how decisive the win was: the base at
// a 1-point win, one increment per additional point, clamped.
func (e *Engine) marginMultiplier(margin int) float64 {
	p := e.params
	return Clamp(p.MarginBase+float64(margin-1)*p.MarginPerPoint, p.MarginMin, p.MarginMax)
}

// performanceMultiplier rewards doubles players who are weaker than their
// team average on a win, and penalizes stronger-than-average players harder
// on a loss.
func (e *Engine) performanceMultiplier(playerRating, teamRating float64, won bool) float64 {
	p := e.params
	diff := playerRating - teamRating
	if won {
		return Clamp(1.0-diff*p.PerformanceWeight, p.PerformanceMin, p.PerformanceMax)
	}
	return Clamp(1.0+diff*p.PerformanceWeight, p.PerformanceMin, p.PerformanceMax)
}

// underdogMultiplier combines a team-level adjustment (rating gap between the
// teams) with an individual-level one (offset from DefaultRating). Both parts
// and the combination are clamped independently.
func (e *Engine) underdogMultiplier(playerRating, teamRating, opponentRating float64, won bool) float64 {
	p := e.params
	teamDiff := teamRating - opponentRating
	globalDiff := playerRating - p.DefaultRating

	if won {
		teamMult := 1.0 - teamDiff*p.UnderdogTeamCoeff
		individual := Clamp(1.0-globalDiff*p.WinnerIndividualCoeff, p.WinnerIndividualMin, p.WinnerIndividualMax)
		return Clamp(teamMult*individual, p.WinnerCombinedMin, p.WinnerCombinedMax)
	}
	teamMult := 1.0 + teamDiff*p.UnderdogTeamCoeff
	individual := Clamp(1.0+globalDiff*p.LoserIndividualCoeff, p.LoserIndividualMin, p.LoserIndividualMax)
	return Clamp(teamMult*individual, p.LoserCombinedMin, p.LoserCombinedMax)
}
