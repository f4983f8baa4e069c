package league

// MatchType represents the format of a club match.
type MatchType string

const (
	// MatchTypeSingles is a one-on-one match.
	MatchTypeSingles MatchType = "SINGLES"
	// MatchTypeDoubles is a two-on-two match.
	MatchTypeDoubles MatchType = "DOUBLES"
)

// ProcessingStatus defines the internal processing state of a match.
type ProcessingStatus string

const (
	StatusNew             ProcessingStatus = "NEW"
	StatusBookingNotified ProcessingStatus = "BOOKING_NOTIFIED"
	StatusResultAvailable ProcessingStatus = "RESULT_AVAILABLE"
	StatusRatingsApplied  ProcessingStatus = "RATINGS_APPLIED"
	StatusResultNotified  ProcessingStatus = "RESULT_NOTIFIED"
	StatusCompleted       ProcessingStatus = "COMPLETED"
)

// GameStatus defines the status of a game on the booking platform.
type GameStatus string

const (
	GameStatusPending    GameStatus = "PENDING"
	GameStatusPlayed     GameStatus = "PLAYED"
	GameStatusCanceled   GameStatus = "CANCELED"
	GameStatusExpired    GameStatus = "EXPIRED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusUnknown    GameStatus = "UNKNOWN"
)

// ResultsStatus defines the status of the reported match result.
type ResultsStatus string

const (
	ResultsStatusPending    ResultsStatus = "PENDING"
	ResultsStatusConfirmed  ResultsStatus = "CONFIRMED"
	ResultsStatusExpired    ResultsStatus = "EXPIRED"
	ResultsStatusValidating ResultsStatus = "VALIDATING"
	ResultsStatusWaitingFor ResultsStatus = "WAITING_FOR"
)

// RatingChange is the permanent rating snapshot recorded against a match for
// one player. Before is the rating immediately prior to the match, After the
// clamped rating after it. It is the only way historical analyses can recover
// the rating a player had at the time of a given match.
type RatingChange struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Player is a roster entry inside a team.
type Player struct {
	UserID string
	Name   string
	Rating float64
}

// Team is one side of a match. Score is the total points the team scored.
type Team struct {
	ID      string
	Players []Player
	Score   int
}

// Tenant identifies the club/venue a match belongs to.
type Tenant struct {
	ID   string
	Name string
}

// Match represents a single club match. Once its result has been recorded the
// match is immutable; RatingChanges is attached permanently at that point.
type Match struct {
	MatchID          string
	OwnerID          string
	OwnerName        string
	Start            int64
	End              int64
	CreatedAt        int64
	GameStatus       GameStatus
	ResultsStatus    ResultsStatus
	ProcessingStatus ProcessingStatus
	CourtName        string
	Tenant           Tenant
	MatchType        MatchType
	Teams            []Team
	RatingChanges    map[string]RatingChange
}
