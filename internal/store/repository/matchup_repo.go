package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// MatchupRepository handles the head-to-head rows behind percentile queries.
type MatchupRepository struct {
	db *store.Database
}

// NewMatchupRepository creates a matchup repository.
func NewMatchupRepository(db *store.Database) *MatchupRepository {
	return &MatchupRepository{db: db}
}

// Upsert writes the matchup row for a finished game. Team ids must already
// be canonically ordered; the CHECK constraint enforces it. Conflicts on
// (sport, pair, game) update the total so score corrections stay in sync.
func (r *MatchupRepository) Upsert(ctx context.Context, m *store.MatchupGame) error {
	if m.TeamLowID >= m.TeamHighID {
		return fmt.Errorf("matchup pair not canonically ordered: %d >= %d", m.TeamLowID, m.TeamHighID)
	}

	query := `
		INSERT INTO matchup_games (sport, team_low_id, team_high_id, franchise_low_id, franchise_high_id, game_id, final_total, season_year, decade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sport, team_low_id, team_high_id, game_id) DO UPDATE SET
			final_total = EXCLUDED.final_total,
			franchise_low_id = COALESCE(EXCLUDED.franchise_low_id, matchup_games.franchise_low_id),
			franchise_high_id = COALESCE(EXCLUDED.franchise_high_id, matchup_games.franchise_high_id),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		m.Sport, m.TeamLowID, m.TeamHighID,
		m.FranchiseLowID, m.FranchiseHighID,
		m.GameID, m.FinalTotal, m.SeasonYear, m.Decade,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert matchup game: %w", err)
	}

	return nil
}

// HistoricalTotals returns every finished total for a team pair, any
// argument order. Excludes the given game id so a game's own total never
// feeds its line percentile.
func (r *MatchupRepository) HistoricalTotals(ctx context.Context, sport string, teamA, teamB, excludeGameID int64) ([]int, error) {
	low, high := store.OrderPair(teamA, teamB)

	query := `
		SELECT final_total
		FROM matchup_games
		WHERE sport = $1 AND team_low_id = $2 AND team_high_id = $3 AND game_id <> $4
		ORDER BY season_year, game_id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, sport, low, high, excludeGameID)
	if err != nil {
		return nil, fmt.Errorf("query historical totals: %w", err)
	}
	defer rows.Close()

	var totals []int
	for rows.Next() {
		var total int
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

const filteredTotalsQuery = `
	SELECT m.final_total
	FROM matchup_games m
	JOIN games g ON g.game_id = m.game_id
	WHERE m.sport = $1 AND m.team_low_id = $2 AND m.team_high_id = $3
`

const (
	filterByDecade  = " AND m.decade = $%d"
	filterByPlayoff = " AND g.playoff = $%d"
)

// FilteredTotals is HistoricalTotals with optional decade and playoff
// narrowing, used by the matchup stats endpoint.
func (r *MatchupRepository) FilteredTotals(ctx context.Context, sport string, teamA, teamB int64, filter store.TotalsFilter) ([]int, error) {
	low, high := store.OrderPair(teamA, teamB)

	query := filteredTotalsQuery
	args := []interface{}{sport, low, high}

	if filter.Decade != 0 {
		args = append(args, filter.Decade)
		query += fmt.Sprintf(filterByDecade, len(args))
	}
	if filter.Playoff != nil {
		args = append(args, *filter.Playoff)
		query += fmt.Sprintf(filterByPlayoff, len(args))
	}
	query += " ORDER BY m.season_year, m.game_id"

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filtered totals: %w", err)
	}
	defer rows.Close()

	var totals []int
	for rows.Next() {
		var total int
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

// SetFranchisePair propagates franchise references onto matchup rows for a
// game, used by the identity backfill.
func (r *MatchupRepository) SetFranchisePair(ctx context.Context, gameID int64, franchiseLow, franchiseHigh sql.NullInt64) error {
	query := `
		UPDATE matchup_games
		SET franchise_low_id = COALESCE($1, franchise_low_id),
		    franchise_high_id = COALESCE($2, franchise_high_id),
		    updated_at = NOW()
		WHERE game_id = $3
	`

	_, err := r.db.DB.ExecContext(ctx, query, franchiseLow, franchiseHigh, gameID)
	if err != nil {
		return fmt.Errorf("set franchise pair: %w", err)
	}

	return nil
}
