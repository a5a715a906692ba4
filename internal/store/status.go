package store

// GameStatus is the internal three-state game lifecycle.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// statusRank orders the lifecycle so transitions can be validated without
// string comparisons scattered through the jobs.
var statusRank = map[GameStatus]int{
	StatusScheduled: 0,
	StatusLive:      1,
	StatusFinal:     2,
}

// Valid reports whether s is one of the three internal states.
func (s GameStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a game may move from s to next. Forward
// moves and same-state updates are allowed; a final game never regresses.
func (s GameStatus) CanTransition(next GameStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// ParseProviderStatus maps a provider status string onto the internal model,
// failing closed: anything unrecognized is treated as non-final.
func ParseProviderStatus(raw string) GameStatus {
	switch raw {
	case "Final", "final", "F", "completed", "closed", "STATUS_FINAL":
		return StatusFinal
	case "InProgress", "in_progress", "live", "halftime", "STATUS_IN_PROGRESS", "STATUS_HALFTIME":
		return StatusLive
	case "Scheduled", "scheduled", "pre", "upcoming", "STATUS_SCHEDULED":
		return StatusScheduled
	default:
		return StatusScheduled
	}
}

// OrderPair returns the canonically ordered (low, high) form of two ids.
// Symmetric: OrderPair(a, b) == OrderPair(b, a).
func OrderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// DecadeOf buckets a season year into its decade (2017 -> 2010).
func DecadeOf(seasonYear int) int {
	return seasonYear / 10 * 10
}
