package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/identity"
	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/boxscore"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// GameSource is the box-score feed the engine ingests from.
type GameSource interface {
	FetchGames(ctx context.Context, from, to time.Time) ([]boxscore.Game, []boxscore.Invalid, error)
}

// Engine ingests historical and current games for one sport. Runs are
// idempotent: every write is an upsert on the provider game key, so a re-run
// over the same range inserts nothing new.
type Engine struct {
	sport    string
	source   GameSource
	registry *identity.Registry
	games    GameStore
	matchups MatchupStore
	ledger   *jobs.Ledger
}

// NewEngine creates a backfill engine for one sport.
func NewEngine(sport string, source GameSource, registry *identity.Registry, games GameStore, matchups MatchupStore, ledger *jobs.Ledger) *Engine {
	return &Engine{
		sport:    sport,
		source:   source,
		registry: registry,
		games:    games,
		matchups: matchups,
		ledger:   ledger,
	}
}

// Backfill ingests every game in [from, to], bracketed by a job run record.
// Row-level failures are counted and sampled; only a failure to reach the
// provider at all fails the run.
func (e *Engine) Backfill(ctx context.Context, from, to time.Time) (*Counters, error) {
	runID, err := e.ledger.Start(ctx, "backfill", map[string]interface{}{
		"sport": e.sport,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	counters := &Counters{}
	if err := checkCredentials(e.source); err != nil {
		counters.RecordError("config", err)
		e.ledger.Finish(ctx, runID, jobs.StatusFail, counters.Details())
		return counters, err
	}

	runErr := e.backfill(ctx, counters, from, to)
	if runErr != nil {
		counters.RecordError("backfill", runErr)
	}

	e.ledger.Finish(ctx, runID, counters.Status(runErr != nil), counters.Details())
	return counters, runErr
}

func (e *Engine) backfill(ctx context.Context, counters *Counters, from, to time.Time) error {
	log.Printf("[ingest] backfilling %s games %s..%s", e.sport, from.Format("2006-01-02"), to.Format("2006-01-02"))

	games, invalid, err := e.source.FetchGames(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetch games: %w", err)
	}

	counters.Fetched = len(games)
	for _, bad := range invalid {
		counters.RecordError("invalid row "+bad.Key, fmt.Errorf("%s", bad.Reason))
	}

	run := e.registry.NewRun(boxscore.Provider)
	for _, game := range games {
		if err := e.ingestGame(ctx, run, counters, game); err != nil {
			counters.RecordError("game "+game.ProviderGameKey, err)
		}
	}

	log.Printf("[ingest] %s backfill done: %d fetched, %d inserted, %d updated, %d skipped",
		e.sport, counters.Fetched, counters.Inserted, counters.Updated, counters.Skipped)
	return nil
}

func (e *Engine) ingestGame(ctx context.Context, run *identity.Run, counters *Counters, parsed boxscore.Game) error {
	home, ok, err := run.EnsureTeamAndFranchise(ctx, e.sport, parsed.HomeAbbrev)
	if err != nil {
		return err
	}
	if !ok {
		counters.RecordSkip(fmt.Sprintf("game %s: unknown home team %s", parsed.ProviderGameKey, parsed.HomeAbbrev))
		return nil
	}

	away, ok, err := run.EnsureTeamAndFranchise(ctx, e.sport, parsed.AwayAbbrev)
	if err != nil {
		return err
	}
	if !ok {
		counters.RecordSkip(fmt.Sprintf("game %s: unknown away team %s", parsed.ProviderGameKey, parsed.AwayAbbrev))
		return nil
	}

	status := store.ParseProviderStatus(parsed.Status)

	game := &store.Game{
		Sport:           e.sport,
		Provider:        boxscore.Provider,
		ProviderGameKey: parsed.ProviderGameKey,
		HomeTeamID:      home.Team.TeamID,
		AwayTeamID:      away.Team.TeamID,
		HomeFranchiseID: sql.NullInt64{Int64: home.Franchise.FranchiseID, Valid: true},
		AwayFranchiseID: sql.NullInt64{Int64: away.Franchise.FranchiseID, Valid: true},
		Status:          status,
		StartTime:       parsed.StartTime,
		SeasonYear:      parsed.SeasonYear,
		Decade:          store.DecadeOf(parsed.SeasonYear),
		Playoff:         parsed.Playoff,
	}

	// Scores are only trusted once the provider reports the game final.
	if status == store.StatusFinal {
		game.HomeScore = sql.NullInt32{Int32: int32(parsed.HomeScore), Valid: true}
		game.AwayScore = sql.NullInt32{Int32: int32(parsed.AwayScore), Valid: true}
		game.FinalTotal = sql.NullInt32{Int32: int32(parsed.HomeScore + parsed.AwayScore), Valid: true}
	}

	inserted, err := e.games.Upsert(ctx, game)
	if err != nil {
		return err
	}
	if inserted {
		counters.Inserted++
	} else {
		counters.Updated++
	}

	if status == store.StatusFinal {
		if err := e.upsertMatchup(ctx, game, home, away); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) upsertMatchup(ctx context.Context, game *store.Game, home, away *identity.Resolution) error {
	low, high := store.OrderPair(game.HomeTeamID, game.AwayTeamID)

	franchiseLow := sql.NullInt64{Int64: home.Franchise.FranchiseID, Valid: true}
	franchiseHigh := sql.NullInt64{Int64: away.Franchise.FranchiseID, Valid: true}
	if low != game.HomeTeamID {
		franchiseLow, franchiseHigh = franchiseHigh, franchiseLow
	}

	matchup := &store.MatchupGame{
		Sport:           game.Sport,
		TeamLowID:       low,
		TeamHighID:      high,
		FranchiseLowID:  franchiseLow,
		FranchiseHighID: franchiseHigh,
		GameID:          game.GameID,
		FinalTotal:      int(game.FinalTotal.Int32),
		SeasonYear:      game.SeasonYear,
		Decade:          game.Decade,
	}

	return e.matchups.Upsert(ctx, matchup)
}

// BackfillFranchises fills franchise links on games ingested before their
// lineage was known, bracketed by its own job run.
func (e *Engine) BackfillFranchises(ctx context.Context) (int, error) {
	runID, err := e.ledger.Start(ctx, "franchise_backfill", map[string]interface{}{"sport": e.sport})
	if err != nil {
		return 0, err
	}

	updated, runErr := e.registry.BackfillFranchiseIDs(ctx, e.sport, boxscore.Provider)

	status := jobs.StatusSuccess
	if runErr != nil {
		status = jobs.StatusFail
	}
	e.ledger.Finish(ctx, runID, status, map[string]interface{}{"updated": updated})

	return updated, runErr
}
