package matching

import (
	"fmt"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/normalize"
)

// DefaultMatchWindow is how far an odds event's commence time may sit from
// the internal game's start time and still be considered.
const DefaultMatchWindow = 3 * time.Hour

// GameRef is the internal game the strict matcher tries to attach an odds
// event to.
type GameRef struct {
	GameID    int64
	HomeName  string
	AwayName  string
	StartTime time.Time
}

// OddsEvent is one event from the odds feed, reduced to what matching needs.
// TotalsByBook holds the totals line per bookmaker key for events that carry
// the market; events without it can still match by name and then fail on
// market extraction.
type OddsEvent struct {
	EventID      string
	SportKey     string
	CommenceTime time.Time
	HomeName     string
	AwayName     string
	TotalsByBook map[string]float64
	RawPayload   []byte
}

// StrictMatch is a successful strict match: exactly one event, exact name
// equality, totals line present for the requested bookmaker.
type StrictMatch struct {
	Event      OddsEvent
	TotalLine  float64
	Swapped    bool // event listed home/away in the opposite orientation
	TimeDelta  time.Duration
	Confidence float64 // always 1.0 on this path
}

// StrictMatcher attaches odds events to internal games by exact
// normalized+canonicalized name equality inside a time window. Ambiguity is
// rejection: if two or more exact candidates tie on the smallest
// time-distance, no match is returned.
type StrictMatcher struct {
	resolver *normalize.Resolver
	window   time.Duration
}

// NewStrictMatcher creates a strict matcher with the default 3-hour window.
func NewStrictMatcher(resolver *normalize.Resolver) *StrictMatcher {
	return &StrictMatcher{resolver: resolver, window: DefaultMatchWindow}
}

// NewStrictMatcherWithWindow overrides the time window.
func NewStrictMatcherWithWindow(resolver *normalize.Resolver, window time.Duration) *StrictMatcher {
	return &StrictMatcher{resolver: resolver, window: window}
}

type strictCandidate struct {
	event   OddsEvent
	swapped bool
	delta   time.Duration
}

// Match finds at most one event matching the game. On failure the reason
// string explains why ("no event within window", "ambiguous", "no totals
// market"), since no-match is an expected steady-state outcome, not an error.
func (m *StrictMatcher) Match(game GameRef, events []OddsEvent, bookmaker string) (*StrictMatch, string) {
	homeCanonical := m.resolver.CanonicalName(game.HomeName)
	awayCanonical := m.resolver.CanonicalName(game.AwayName)

	var candidates []strictCandidate
	for _, event := range events {
		delta := absDuration(event.CommenceTime.Sub(game.StartTime))
		if delta > m.window {
			continue
		}

		eventHome := m.resolver.CanonicalName(event.HomeName)
		eventAway := m.resolver.CanonicalName(event.AwayName)

		switch {
		case eventHome == homeCanonical && eventAway == awayCanonical:
			candidates = append(candidates, strictCandidate{event: event, swapped: false, delta: delta})
		case eventHome == awayCanonical && eventAway == homeCanonical:
			candidates = append(candidates, strictCandidate{event: event, swapped: true, delta: delta})
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Sprintf("no exact event for %q vs %q within %s of start", game.HomeName, game.AwayName, m.window)
	}

	// Smallest time-distance wins. A tie on the minimum is ambiguous and we
	// refuse to guess: only exact numeric equality counts as a tie.
	best := candidates[0]
	tied := false
	for _, c := range candidates[1:] {
		if c.delta < best.delta {
			best = c
			tied = false
		} else if c.delta == best.delta {
			tied = true
		}
	}
	if tied {
		return nil, fmt.Sprintf("ambiguous: %d events tie at %s from start for %q vs %q",
			len(candidates), best.delta, game.HomeName, game.AwayName)
	}

	line, ok := best.event.TotalsByBook[bookmaker]
	if !ok {
		return nil, fmt.Sprintf("event %s matched but has no %s totals market", best.event.EventID, bookmaker)
	}

	return &StrictMatch{
		Event:      best.event,
		TotalLine:  line,
		Swapped:    best.swapped,
		TimeDelta:  best.delta,
		Confidence: 1.0,
	}, ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
