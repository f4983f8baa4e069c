package league

import (
	"errors"
	"fmt"
)

// ErrTiedResult is returned by ValidateResult when both teams have the same
// score. Ties are rejected for rating purposes; the stats flow records them
// as draws without touching ratings.
var ErrTiedResult = errors.New("tied result")

// IsDraw reports whether both teams scored the same number of points.
func (m *Match) IsDraw() bool {
	if len(m.Teams) != 2 {
		return false
	}
	return m.Teams[0].Score == m.Teams[1].Score
}

// Winner returns the winning team. ok is false for draws or malformed rosters.
func (m *Match) Winner() (Team, bool) {
	if len(m.Teams) != 2 || m.IsDraw() {
		return Team{}, false
	}
	if m.Teams[0].Score > m.Teams[1].Score {
		return m.Teams[0], true
	}
	return m.Teams[1], true
}

// Margin returns the absolute score difference between the two teams.
func (m *Match) Margin() int {
	if len(m.Teams) != 2 {
		return 0
	}
	d := m.Teams[0].Score - m.Teams[1].Score
	if d < 0 {
		d = -d
	}
	return d
}

// TeamOf returns the index of the team the player is on, or -1.
func (m *Match) TeamOf(playerID string) int {
	for i, team := range m.Teams {
		for _, p := range team.Players {
			if p.UserID == playerID {
				return i
			}
		}
	}
	return -1
}

// Opposing returns the team facing the given team index. ok is false when the
// match does not have exactly two teams or the index is out of range.
func (m *Match) Opposing(teamIdx int) (Team, bool) {
	if len(m.Teams) != 2 || teamIdx < 0 || teamIdx > 1 {
		return Team{}, false
	}
	return m.Teams[1-teamIdx], true
}

// PlayerIDs returns the IDs of every participant, team order preserved.
func (m *Match) PlayerIDs() []string {
	var ids []string
	for _, team := range m.Teams {
		for _, p := range team.Players {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// ValidateResult enforces the preconditions the rating engine assumes: exactly
// two teams, roster sizes matching the match type, no player on both teams,
// non-negative scores and no tie.
func ValidateResult(m *Match) error {
	if len(m.Teams) != 2 {
		return fmt.Errorf("expected 2 teams, got %d", len(m.Teams))
	}

	want := 1
	if m.MatchType == MatchTypeDoubles {
		want = 2
	}
	for _, team := range m.Teams {
		if len(team.Players) != want {
			return fmt.Errorf("team %s has %d players, want %d for %s", team.ID, len(team.Players), want, m.MatchType)
		}
		if team.Score < 0 {
			return fmt.Errorf("team %s has negative score %d", team.ID, team.Score)
		}
	}

	seen := make(map[string]bool)
	for _, team := range m.Teams {
		for _, p := range team.Players {
			if seen[p.UserID] {
				return fmt.Errorf("player %s appears on both teams", p.UserID)
			}
			seen[p.UserID] = true
		}
	}

	if m.Teams[0].Score == m.Teams[1].Score {
		return ErrTiedResult
	}
	return nil
}
