package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// EdgeRepository handles the per-game-per-day edge rollups.
type EdgeRepository struct {
	db *store.Database
}

// NewEdgeRepository creates an edge repository.
func NewEdgeRepository(db *store.Database) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Upsert writes the daily edge row for a game and date. (game_id, edge_date)
// is the conflict key, so recomputation overwrites in place.
func (r *EdgeRepository) Upsert(ctx context.Context, e *store.DailyEdge) error {
	query := `
		INSERT INTO daily_edges (game_id, edge_date, sport, line_offered, total_line, bookmaker, line_percentile, sample_size, sufficient, classification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id, edge_date) DO UPDATE SET
			line_offered = EXCLUDED.line_offered,
			total_line = EXCLUDED.total_line,
			bookmaker = EXCLUDED.bookmaker,
			line_percentile = EXCLUDED.line_percentile,
			sample_size = EXCLUDED.sample_size,
			sufficient = EXCLUDED.sufficient,
			classification = EXCLUDED.classification,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.DB.QueryRowContext(
		ctx, query,
		e.GameID, e.EdgeDate, e.Sport, e.LineOffered, e.TotalLine, e.Bookmaker,
		e.LinePercentile, e.SampleSize, e.Sufficient, e.Classification,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert daily edge: %w", err)
	}

	return nil
}

// ListByDate returns the edges for a sport on a date.
func (r *EdgeRepository) ListByDate(ctx context.Context, sport string, date time.Time) ([]*store.DailyEdge, error) {
	query := `
		SELECT id, game_id, edge_date, sport, line_offered, total_line, bookmaker, line_percentile, sample_size, sufficient, classification, created_at, updated_at
		FROM daily_edges
		WHERE sport = $1 AND edge_date = $2
		ORDER BY game_id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, sport, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query daily edges: %w", err)
	}
	defer rows.Close()

	var edges []*store.DailyEdge
	for rows.Next() {
		e := &store.DailyEdge{}
		if err := rows.Scan(
			&e.ID, &e.GameID, &e.EdgeDate, &e.Sport, &e.LineOffered,
			&e.TotalLine, &e.Bookmaker, &e.LinePercentile,
			&e.SampleSize, &e.Sufficient, &e.Classification,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan daily edge: %w", err)
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}
