package repository

import (
	"context"
	"fmt"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// OddsRepository handles odds snapshots and the event-to-game mapping cache.
type OddsRepository struct {
	db *store.Database
}

// NewOddsRepository creates an odds repository.
func NewOddsRepository(db *store.Database) *OddsRepository {
	return &OddsRepository{db: db}
}

// InsertSnapshot appends an odds snapshot. Never updates: each refresh is a
// new row with the raw payload kept for audit.
func (r *OddsRepository) InsertSnapshot(ctx context.Context, s *store.OddsSnapshot) error {
	query := `
		INSERT INTO odds_snapshots (game_id, event_id, bookmaker, total_line, raw_payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING snapshot_id, created_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		s.GameID, s.EventID, s.Bookmaker, s.TotalLine, s.RawPayload,
	).Scan(&s.SnapshotID, &s.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert odds snapshot: %w", err)
	}

	return nil
}

// UpsertEventMap caches the event-to-game mapping with the game id as the
// conflict key, so a game holds at most one mapping.
func (r *OddsRepository) UpsertEventMap(ctx context.Context, m *store.OddsEventMap) error {
	query := `
		INSERT INTO odds_event_map (sport_key, provider_event_id, game_id, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id) DO UPDATE SET
			sport_key = EXCLUDED.sport_key,
			provider_event_id = EXCLUDED.provider_event_id,
			confidence = EXCLUDED.confidence,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		m.SportKey, m.ProviderEventID, m.GameID, m.Confidence,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert odds event map: %w", err)
	}

	return nil
}
