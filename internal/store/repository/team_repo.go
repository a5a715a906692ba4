package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// TeamRepository handles team rows.
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a team repository.
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// Upsert inserts a team by its (sport, provider, provider_team_key) identity
// or updates the mutable fields, filling display name/abbreviation/city that
// arrived later without blanking values already stored.
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) error {
	query := `
		INSERT INTO teams (sport, provider, provider_team_key, display_name, abbreviation, city)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sport, provider, provider_team_key) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			abbreviation = COALESCE(EXCLUDED.abbreviation, teams.abbreviation),
			city = COALESCE(EXCLUDED.city, teams.city),
			updated_at = NOW()
		RETURNING team_id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		team.Sport, team.Provider, team.ProviderTeamKey,
		team.DisplayName, team.Abbreviation, team.City,
	).Scan(&team.TeamID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}

	return nil
}

// GetByProviderKey returns the team for a provider key, or nil if unseen.
func (r *TeamRepository) GetByProviderKey(ctx context.Context, sport, provider, key string) (*store.Team, error) {
	query := `
		SELECT team_id, sport, provider, provider_team_key, display_name, abbreviation, city, created_at, updated_at
		FROM teams
		WHERE sport = $1 AND provider = $2 AND provider_team_key = $3
	`

	team := &store.Team{}
	err := r.db.DB.QueryRowContext(ctx, query, sport, provider, key).Scan(
		&team.TeamID, &team.Sport, &team.Provider, &team.ProviderTeamKey,
		&team.DisplayName, &team.Abbreviation, &team.City,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query team: %w", err)
	}

	return team, nil
}

// GetByID returns a team by id, or nil if absent.
func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (*store.Team, error) {
	query := `
		SELECT team_id, sport, provider, provider_team_key, display_name, abbreviation, city, created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`

	team := &store.Team{}
	err := r.db.DB.QueryRowContext(ctx, query, teamID).Scan(
		&team.TeamID, &team.Sport, &team.Provider, &team.ProviderTeamKey,
		&team.DisplayName, &team.Abbreviation, &team.City,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query team: %w", err)
	}

	return team, nil
}

// ListBySport returns every team for a sport, for roster matching.
func (r *TeamRepository) ListBySport(ctx context.Context, sport string) ([]*store.Team, error) {
	query := `
		SELECT team_id, sport, provider, provider_team_key, display_name, abbreviation, city, created_at, updated_at
		FROM teams
		WHERE sport = $1
		ORDER BY team_id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		if err := rows.Scan(
			&team.TeamID, &team.Sport, &team.Provider, &team.ProviderTeamKey,
			&team.DisplayName, &team.Abbreviation, &team.City,
			&team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
