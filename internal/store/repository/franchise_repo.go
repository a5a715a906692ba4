package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// FranchiseRepository handles franchise lineages, their team versions and
// provider mappings.
type FranchiseRepository struct {
	db *store.Database
}

// NewFranchiseRepository creates a franchise repository.
func NewFranchiseRepository(db *store.Database) *FranchiseRepository {
	return &FranchiseRepository{db: db}
}

// EnsureFranchise looks up or creates the franchise for (sport, canonical
// name). The unique constraint makes concurrent creation collapse to one row.
func (r *FranchiseRepository) EnsureFranchise(ctx context.Context, sport, canonicalName string) (*store.Franchise, error) {
	query := `
		INSERT INTO franchises (sport, canonical_name)
		VALUES ($1, $2)
		ON CONFLICT (sport, canonical_name) DO UPDATE SET canonical_name = EXCLUDED.canonical_name
		RETURNING franchise_id, sport, canonical_name, created_at
	`

	franchise := &store.Franchise{}
	err := r.db.DB.QueryRowContext(ctx, query, sport, canonicalName).Scan(
		&franchise.FranchiseID, &franchise.Sport, &franchise.CanonicalName, &franchise.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure franchise: %w", err)
	}

	return franchise, nil
}

// CurrentVersion returns the open team version for a franchise, or nil if
// the lineage has none yet.
func (r *FranchiseRepository) CurrentVersion(ctx context.Context, franchiseID int64) (*store.TeamVersion, error) {
	query := `
		SELECT version_id, franchise_id, display_name, city, abbreviation, effective_from, effective_to, created_at
		FROM team_versions
		WHERE franchise_id = $1 AND effective_to IS NULL
	`

	version := &store.TeamVersion{}
	err := r.db.DB.QueryRowContext(ctx, query, franchiseID).Scan(
		&version.VersionID, &version.FranchiseID, &version.DisplayName,
		&version.City, &version.Abbreviation,
		&version.EffectiveFrom, &version.EffectiveTo, &version.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query current version: %w", err)
	}

	return version, nil
}

// OpenVersion closes the current open version (if any) at effectiveFrom and
// opens a new one, preserving the invariants: one open version per
// franchise, no overlapping ranges. Runs in a transaction.
func (r *FranchiseRepository) OpenVersion(ctx context.Context, version *store.TeamVersion) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Close the open version at the new effective date, if one exists.
	_, err = tx.ExecContext(ctx,
		`UPDATE team_versions SET effective_to = $1
		 WHERE franchise_id = $2 AND effective_to IS NULL AND effective_from < $1`,
		version.EffectiveFrom, version.FranchiseID,
	)
	if err != nil {
		return fmt.Errorf("close open version: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO team_versions (franchise_id, display_name, city, abbreviation, effective_from)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING version_id, created_at`,
		version.FranchiseID, version.DisplayName, version.City, version.Abbreviation, version.EffectiveFrom,
	).Scan(&version.VersionID, &version.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// EnsureCurrentVersion returns the franchise's open version, creating one
// from the given identity if the lineage is new.
func (r *FranchiseRepository) EnsureCurrentVersion(ctx context.Context, franchiseID int64, displayName, city, abbreviation string) (*store.TeamVersion, error) {
	current, err := r.CurrentVersion(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}

	version := &store.TeamVersion{
		FranchiseID:   franchiseID,
		DisplayName:   displayName,
		City:          nullString(city),
		Abbreviation:  nullString(abbreviation),
		EffectiveFrom: time.Now().UTC(),
	}
	if err := r.OpenVersion(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// UpsertProviderMapping records that a provider team key resolves to a team
// version. One mapping per (sport, provider, provider key).
func (r *FranchiseRepository) UpsertProviderMapping(ctx context.Context, mapping *store.ProviderMapping) error {
	query := `
		INSERT INTO provider_mappings (sport, provider, provider_team_key, team_version_id, franchise_id, team_id, confidence, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sport, provider, provider_team_key) DO UPDATE SET
			team_version_id = EXCLUDED.team_version_id,
			franchise_id = EXCLUDED.franchise_id,
			team_id = EXCLUDED.team_id,
			confidence = EXCLUDED.confidence,
			method = EXCLUDED.method,
			updated_at = NOW()
		RETURNING mapping_id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		mapping.Sport, mapping.Provider, mapping.ProviderTeamKey,
		mapping.TeamVersionID, mapping.FranchiseID, mapping.TeamID,
		mapping.Confidence, mapping.Method,
	).Scan(&mapping.MappingID, &mapping.CreatedAt, &mapping.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert provider mapping: %w", err)
	}

	return nil
}

// RecordUnmatchedParticipant stores (or refreshes) a participant name that
// could not be mapped above the persistence floor.
func (r *FranchiseRepository) RecordUnmatchedParticipant(ctx context.Context, u *store.UnmatchedParticipant) error {
	query := `
		INSERT INTO unmatched_participants (sport, provider, participant_key, best_confidence, reason)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sport, provider, participant_key) DO UPDATE SET
			best_confidence = EXCLUDED.best_confidence,
			reason = EXCLUDED.reason,
			seen_at = NOW()
	`

	_, err := r.db.DB.ExecContext(ctx, query, u.Sport, u.Provider, u.ParticipantKey, u.BestConfidence, u.Reason)
	if err != nil {
		return fmt.Errorf("record unmatched participant: %w", err)
	}

	return nil
}

// ListUnmatchedParticipants returns unresolved participant names for a sport.
func (r *FranchiseRepository) ListUnmatchedParticipants(ctx context.Context, sport string) ([]*store.UnmatchedParticipant, error) {
	query := `
		SELECT id, sport, provider, participant_key, best_confidence, reason, seen_at
		FROM unmatched_participants
		WHERE sport = $1
		ORDER BY seen_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("query unmatched participants: %w", err)
	}
	defer rows.Close()

	var out []*store.UnmatchedParticipant
	for rows.Next() {
		u := &store.UnmatchedParticipant{}
		if err := rows.Scan(&u.ID, &u.Sport, &u.Provider, &u.ParticipantKey, &u.BestConfidence, &u.Reason, &u.SeenAt); err != nil {
			return nil, fmt.Errorf("scan unmatched participant: %w", err)
		}
		out = append(out, u)
	}

	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
