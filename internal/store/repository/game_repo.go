package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// GameRepository handles game rows.
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a game repository.
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `
	game_id, sport, provider, provider_game_key, home_team_id, away_team_id,
	home_franchise_id, away_franchise_id, home_score, away_score, final_total,
	status, start_time, season_year, decade, playoff, playoff_round,
	created_at, updated_at
`

func scanGame(row interface{ Scan(...interface{}) error }) (*store.Game, error) {
	game := &store.Game{}
	err := row.Scan(
		&game.GameID, &game.Sport, &game.Provider, &game.ProviderGameKey,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.HomeFranchiseID, &game.AwayFranchiseID,
		&game.HomeScore, &game.AwayScore, &game.FinalTotal,
		&game.Status, &game.StartTime, &game.SeasonYear, &game.Decade,
		&game.Playoff, &game.PlayoffRound,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// Upsert inserts a game by its provider key or updates score/status fields
// on the existing row. The inserted result reports whether a new row was
// created, so jobs can count inserted vs updated. A final row never
// regresses: a stale non-final provider row cannot overwrite its status or
// scores.
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) (inserted bool, err error) {
	query := `
		INSERT INTO games (
			sport, provider, provider_game_key, home_team_id, away_team_id,
			home_franchise_id, away_franchise_id, home_score, away_score, final_total,
			status, start_time, season_year, decade, playoff, playoff_round
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (sport, provider, provider_game_key) DO UPDATE SET
			home_score = CASE WHEN games.status = 'final' AND EXCLUDED.status <> 'final'
				THEN games.home_score ELSE EXCLUDED.home_score END,
			away_score = CASE WHEN games.status = 'final' AND EXCLUDED.status <> 'final'
				THEN games.away_score ELSE EXCLUDED.away_score END,
			final_total = CASE WHEN games.status = 'final' AND EXCLUDED.status <> 'final'
				THEN games.final_total ELSE EXCLUDED.final_total END,
			status = CASE WHEN games.status = 'final' AND EXCLUDED.status <> 'final'
				THEN games.status ELSE EXCLUDED.status END,
			start_time = EXCLUDED.start_time,
			home_franchise_id = COALESCE(EXCLUDED.home_franchise_id, games.home_franchise_id),
			away_franchise_id = COALESCE(EXCLUDED.away_franchise_id, games.away_franchise_id),
			playoff = EXCLUDED.playoff,
			playoff_round = COALESCE(EXCLUDED.playoff_round, games.playoff_round),
			updated_at = NOW()
		RETURNING game_id, (created_at = updated_at) AS inserted, created_at, updated_at
	`

	err = r.db.DB.QueryRowContext(
		ctx, query,
		game.Sport, game.Provider, game.ProviderGameKey,
		game.HomeTeamID, game.AwayTeamID,
		game.HomeFranchiseID, game.AwayFranchiseID,
		game.HomeScore, game.AwayScore, game.FinalTotal,
		game.Status, game.StartTime, game.SeasonYear, game.Decade,
		game.Playoff, game.PlayoffRound,
	).Scan(&game.GameID, &inserted, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return false, fmt.Errorf("upsert game: %w", err)
	}

	return inserted, nil
}

// GetByProviderKey returns the game for a provider key, or nil if unknown.
func (r *GameRepository) GetByProviderKey(ctx context.Context, sport, provider, key string) (*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE sport = $1 AND provider = $2 AND provider_game_key = $3`

	game, err := scanGame(r.db.DB.QueryRowContext(ctx, query, sport, provider, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query game: %w", err)
	}

	return game, nil
}

// GetByID returns a game by id, or nil if absent.
func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = $1`

	game, err := scanGame(r.db.DB.QueryRowContext(ctx, query, gameID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query game: %w", err)
	}

	return game, nil
}

// ListByDateRange returns games for a sport whose start time falls in
// [from, to).
func (r *GameRepository) ListByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE sport = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time`

	rows, err := r.db.DB.QueryContext(ctx, query, sport, from, to)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []*store.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// ListFinalByDateRange returns final games in [from, to) for reconciliation.
func (r *GameRepository) ListFinalByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE sport = $1 AND status = 'final' AND start_time >= $2 AND start_time < $3
		ORDER BY start_time`

	rows, err := r.db.DB.QueryContext(ctx, query, sport, from, to)
	if err != nil {
		return nil, fmt.Errorf("query final games: %w", err)
	}
	defer rows.Close()

	var games []*store.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// ListMissingFranchise returns games lacking a franchise reference on either
// side, for the identity backfill pass.
func (r *GameRepository) ListMissingFranchise(ctx context.Context, sport string) ([]*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE sport = $1 AND (home_franchise_id IS NULL OR away_franchise_id IS NULL)
		ORDER BY game_id`

	rows, err := r.db.DB.QueryContext(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("query games missing franchise: %w", err)
	}
	defer rows.Close()

	var games []*store.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// CorrectScores fixes a final game's scores and derived total in place.
// Used only by reconciliation; status never changes here.
func (r *GameRepository) CorrectScores(ctx context.Context, gameID int64, homeScore, awayScore int) error {
	query := `
		UPDATE games
		SET home_score = $1, away_score = $2, final_total = $3, updated_at = NOW()
		WHERE game_id = $4 AND status = 'final'
	`

	_, err := r.db.DB.ExecContext(ctx, query, homeScore, awayScore, homeScore+awayScore, gameID)
	if err != nil {
		return fmt.Errorf("correct scores: %w", err)
	}

	return nil
}

// SetFranchises fills in franchise references for a game.
func (r *GameRepository) SetFranchises(ctx context.Context, gameID int64, homeFranchiseID, awayFranchiseID sql.NullInt64) error {
	query := `
		UPDATE games
		SET home_franchise_id = COALESCE($1, home_franchise_id),
		    away_franchise_id = COALESCE($2, away_franchise_id),
		    updated_at = NOW()
		WHERE game_id = $3
	`

	_, err := r.db.DB.ExecContext(ctx, query, homeFranchiseID, awayFranchiseID, gameID)
	if err != nil {
		return fmt.Errorf("set franchises: %w", err)
	}

	return nil
}
