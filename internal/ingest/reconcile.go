package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/identity"
	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/scoreboard"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// ScoreSource is the authoritative scoreboard reconciliation verifies against.
type ScoreSource interface {
	FetchScores(ctx context.Context, sport string, date time.Time) ([]scoreboard.Score, []scoreboard.Invalid, error)
}

const (
	reconcileBatchSize = 10
	reconcilePause     = 500 * time.Millisecond
)

// Reconciler re-verifies stored final scores against the scoreboard provider
// and corrects rows only when the two disagree. A clean run writes nothing.
type Reconciler struct {
	sport    string
	source   ScoreSource
	games    GameStore
	teams    TeamStore
	matchups MatchupStore
	ledger   *jobs.Ledger

	batchSize int
	pause     time.Duration
}

// NewReconciler creates a reconciler for one sport.
func NewReconciler(sport string, source ScoreSource, games GameStore, teams TeamStore, matchups MatchupStore, ledger *jobs.Ledger) *Reconciler {
	return &Reconciler{
		sport:     sport,
		source:    source,
		games:     games,
		teams:     teams,
		matchups:  matchups,
		ledger:    ledger,
		batchSize: reconcileBatchSize,
		pause:     reconcilePause,
	}
}

// Reconcile verifies every final game in [from, to], one scoreboard fetch per
// date, batched to bound provider pressure.
func (r *Reconciler) Reconcile(ctx context.Context, from, to time.Time) (*Counters, error) {
	runID, err := r.ledger.Start(ctx, "reconcile", map[string]interface{}{
		"sport": r.sport,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	counters := &Counters{}
	runErr := r.reconcile(ctx, counters, from, to)
	if runErr != nil {
		counters.RecordError("reconcile", runErr)
	}

	r.ledger.Finish(ctx, runID, counters.Status(runErr != nil), counters.Details())
	return counters, runErr
}

func (r *Reconciler) reconcile(ctx context.Context, counters *Counters, from, to time.Time) error {
	var dates []time.Time
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	for start := 0; start < len(dates); start += r.batchSize {
		end := start + r.batchSize
		if end > len(dates) {
			end = len(dates)
		}

		var wg sync.WaitGroup
		for _, date := range dates[start:end] {
			wg.Add(1)
			go func(date time.Time) {
				defer wg.Done()
				if err := r.reconcileDate(ctx, counters, date); err != nil {
					counters.RecordError("date "+date.Format("2006-01-02"), err)
				}
			}(date)
		}
		wg.Wait()

		if end < len(dates) && r.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.pause):
			}
		}
	}

	log.Printf("[reconcile] %s done: %d checked, %d corrected", r.sport, counters.Checked, counters.Corrected)
	return nil
}

func (r *Reconciler) reconcileDate(ctx context.Context, counters *Counters, date time.Time) error {
	finals, err := r.games.ListFinalByDateRange(ctx, r.sport, date, date.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	if len(finals) == 0 {
		return nil
	}

	scores, invalid, err := r.source.FetchScores(ctx, r.sport, date)
	if err != nil {
		return err
	}
	for _, bad := range invalid {
		counters.RecordError("invalid scoreboard row "+bad.Key, fmt.Errorf("%s", bad.Reason))
	}

	// Index authoritative results by remapped abbreviation pair.
	byPair := make(map[string]scoreboard.Score, len(scores))
	for _, score := range scores {
		if !score.Final {
			continue
		}
		home := identity.RemapScoreboardAbbrev(r.sport, score.HomeAbbrev)
		away := identity.RemapScoreboardAbbrev(r.sport, score.AwayAbbrev)
		byPair[home+"|"+away] = score
	}

	for _, game := range finals {
		if err := r.verifyGame(ctx, counters, game, byPair); err != nil {
			counters.RecordError(fmt.Sprintf("game %d", game.GameID), err)
		}
	}

	return nil
}

func (r *Reconciler) verifyGame(ctx context.Context, counters *Counters, game *store.Game, byPair map[string]scoreboard.Score) error {
	homeAbbrev, err := r.teamAbbrev(ctx, game.HomeTeamID)
	if err != nil {
		return err
	}
	awayAbbrev, err := r.teamAbbrev(ctx, game.AwayTeamID)
	if err != nil {
		return err
	}

	score, ok := byPair[homeAbbrev+"|"+awayAbbrev]
	if !ok {
		// Scoreboard has no final for this pairing today; nothing to verify.
		return nil
	}

	counters.Add(func(c *Counters) { c.Checked++ })

	if game.HomeScore.Valid && game.AwayScore.Valid &&
		int(game.HomeScore.Int32) == score.HomeScore && int(game.AwayScore.Int32) == score.AwayScore {
		return nil
	}

	log.Printf("[reconcile] correcting game %d: %d-%d -> %d-%d",
		game.GameID, game.HomeScore.Int32, game.AwayScore.Int32, score.HomeScore, score.AwayScore)

	if err := r.games.CorrectScores(ctx, game.GameID, score.HomeScore, score.AwayScore); err != nil {
		return err
	}

	low, high := store.OrderPair(game.HomeTeamID, game.AwayTeamID)
	franchiseLow, franchiseHigh := game.HomeFranchiseID, game.AwayFranchiseID
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
		FinalTotal:      score.HomeScore + score.AwayScore,
		SeasonYear:      game.SeasonYear,
		Decade:          game.Decade,
	}
	if err := r.matchups.Upsert(ctx, matchup); err != nil {
		return err
	}

	counters.Add(func(c *Counters) { c.Corrected++ })
	return nil
}

func (r *Reconciler) teamAbbrev(ctx context.Context, teamID int64) (string, error) {
	team, err := r.teams.GetByID(ctx, teamID)
	if err != nil {
		return "", err
	}
	if team == nil {
		return "", fmt.Errorf("team %d not found", teamID)
	}
	if team.Abbreviation.Valid {
		return team.Abbreviation.String, nil
	}
	return team.ProviderTeamKey, nil
}
