package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/percentile"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/oddsfeed"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// EventSource is the odds feed the syncer matches against.
type EventSource interface {
	FetchEvents(ctx context.Context, sportKey string) ([]matching.OddsEvent, []oddsfeed.Invalid, error)
}

// oddsLookahead bounds which upcoming games the syncer tries to match. The
// feed only carries near-term events, so anything further out cannot match.
const oddsLookahead = 48 * time.Hour

// OddsSyncer attaches current odds events to upcoming games and recomputes
// each game's daily edge against matchup history. An edge row is written for
// every upcoming game, with line_offered=false when no event matched, so the
// absence of a line is itself queryable.
type OddsSyncer struct {
	sport     string
	sportKey  string
	bookmaker string

	source    EventSource
	matcher   *matching.StrictMatcher
	games     GameStore
	teams     TeamStore
	matchups  MatchupStore
	odds      OddsStore
	edges     EdgeStore
	publisher EdgePublisher
	ledger    *jobs.Ledger

	now func() time.Time
}

// NewOddsSyncer creates an odds syncer. publisher may be nil.
func NewOddsSyncer(sport, sportKey, bookmaker string, source EventSource, matcher *matching.StrictMatcher,
	games GameStore, teams TeamStore, matchups MatchupStore, odds OddsStore, edges EdgeStore,
	publisher EdgePublisher, ledger *jobs.Ledger) *OddsSyncer {
	return &OddsSyncer{
		sport:     sport,
		sportKey:  sportKey,
		bookmaker: bookmaker,
		source:    source,
		matcher:   matcher,
		games:     games,
		teams:     teams,
		matchups:  matchups,
		odds:      odds,
		edges:     edges,
		publisher: publisher,
		ledger:    ledger,
		now:       time.Now,
	}
}

// Sync fetches current events, matches them to upcoming games, and writes
// odds snapshots plus the day's edge rows.
func (s *OddsSyncer) Sync(ctx context.Context) (*Counters, error) {
	runID, err := s.ledger.Start(ctx, "odds_sync", map[string]interface{}{
		"sport":     s.sport,
		"bookmaker": s.bookmaker,
	})
	if err != nil {
		return nil, err
	}

	counters := &Counters{}
	if err := checkCredentials(s.source); err != nil {
		counters.RecordError("config", err)
		s.ledger.Finish(ctx, runID, jobs.StatusFail, counters.Details())
		return counters, err
	}

	runErr := s.sync(ctx, counters)
	if runErr != nil {
		counters.RecordError("odds sync", runErr)
	}

	s.ledger.Finish(ctx, runID, counters.Status(runErr != nil), counters.Details())
	return counters, runErr
}

func (s *OddsSyncer) sync(ctx context.Context, counters *Counters) error {
	events, invalid, err := s.source.FetchEvents(ctx, s.sportKey)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	counters.Fetched = len(events)
	for _, bad := range invalid {
		counters.RecordError("invalid event "+bad.Key, fmt.Errorf("%s", bad.Reason))
	}

	now := s.now().UTC()
	upcoming, err := s.games.ListByDateRange(ctx, s.sport, now, now.Add(oddsLookahead))
	if err != nil {
		return fmt.Errorf("list upcoming games: %w", err)
	}

	edgeDate := now.Truncate(24 * time.Hour)

	for _, game := range upcoming {
		if game.Status == store.StatusFinal {
			continue
		}
		if err := s.syncGame(ctx, counters, game, events, edgeDate); err != nil {
			counters.RecordError(fmt.Sprintf("game %d", game.GameID), err)
		}
	}

	log.Printf("[odds] %s sync done: %d events, %d matched, %d unmatched",
		s.sport, counters.Fetched, counters.Matched, counters.Unmatched)
	return nil
}

func (s *OddsSyncer) syncGame(ctx context.Context, counters *Counters, game *store.Game, events []matching.OddsEvent, edgeDate time.Time) error {
	ref, err := s.gameRef(ctx, game)
	if err != nil {
		return err
	}

	totals, err := s.matchups.HistoricalTotals(ctx, s.sport, game.HomeTeamID, game.AwayTeamID, game.GameID)
	if err != nil {
		return err
	}
	stats := percentile.Summarize(totals)

	edge := &store.DailyEdge{
		GameID:     game.GameID,
		EdgeDate:   edgeDate,
		Sport:      s.sport,
		SampleSize: stats.SampleSize,
		Sufficient: stats.Sufficient,
	}

	match, reason := s.matcher.Match(ref, events, s.bookmaker)
	if match == nil {
		counters.Add(func(c *Counters) { c.Unmatched++ })
		log.Printf("[odds] game %d unmatched: %s", game.GameID, reason)
		return s.writeEdge(ctx, edge)
	}

	counters.Add(func(c *Counters) { c.Matched++ })

	if err := s.odds.InsertSnapshot(ctx, &store.OddsSnapshot{
		GameID:     game.GameID,
		EventID:    match.Event.EventID,
		Bookmaker:  s.bookmaker,
		TotalLine:  match.TotalLine,
		RawPayload: match.Event.RawPayload,
	}); err != nil {
		return err
	}

	if err := s.odds.UpsertEventMap(ctx, &store.OddsEventMap{
		SportKey:        match.Event.SportKey,
		ProviderEventID: match.Event.EventID,
		GameID:          game.GameID,
		Confidence:      match.Confidence,
	}); err != nil {
		return err
	}

	edge.LineOffered = true
	edge.TotalLine = sql.NullFloat64{Float64: match.TotalLine, Valid: true}
	edge.Bookmaker = sql.NullString{String: s.bookmaker, Valid: true}

	pct := percentile.LinePercentile(totals, match.TotalLine)
	edge.LinePercentile = sql.NullFloat64{Float64: pct, Valid: true}
	if stats.Sufficient {
		edge.Classification = sql.NullString{String: percentile.Classify(pct), Valid: true}
	}

	return s.writeEdge(ctx, edge)
}

func (s *OddsSyncer) writeEdge(ctx context.Context, edge *store.DailyEdge) error {
	if err := s.edges.Upsert(ctx, edge); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEdge(ctx, edge); err != nil {
			// Publication is best-effort; the row is already durable.
			log.Printf("[odds] publish edge for game %d: %v", edge.GameID, err)
		}
	}
	return nil
}

func (s *OddsSyncer) gameRef(ctx context.Context, game *store.Game) (matching.GameRef, error) {
	home, err := s.teams.GetByID(ctx, game.HomeTeamID)
	if err != nil {
		return matching.GameRef{}, err
	}
	away, err := s.teams.GetByID(ctx, game.AwayTeamID)
	if err != nil {
		return matching.GameRef{}, err
	}
	if home == nil || away == nil {
		return matching.GameRef{}, fmt.Errorf("game %d references missing team", game.GameID)
	}

	return matching.GameRef{
		GameID:    game.GameID,
		HomeName:  home.DisplayName,
		AwayName:  away.DisplayName,
		StartTime: game.StartTime,
	}, nil
}
