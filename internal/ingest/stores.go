package ingest

import (
	"context"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// The jobs in this package depend on narrow store interfaces rather than the
// concrete repositories, so tests can run them against in-memory fakes.

// GameStore is the game persistence the jobs use.
type GameStore interface {
	Upsert(ctx context.Context, game *store.Game) (bool, error)
	GetByID(ctx context.Context, gameID int64) (*store.Game, error)
	ListByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error)
	ListFinalByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error)
	CorrectScores(ctx context.Context, gameID int64, homeScore, awayScore int) error
}

// MatchupStore is the matchup-history persistence the jobs use.
type MatchupStore interface {
	Upsert(ctx context.Context, m *store.MatchupGame) error
	HistoricalTotals(ctx context.Context, sport string, teamA, teamB, excludeGameID int64) ([]int, error)
}

// TeamStore resolves team rows for match construction.
type TeamStore interface {
	GetByID(ctx context.Context, teamID int64) (*store.Team, error)
	ListBySport(ctx context.Context, sport string) ([]*store.Team, error)
}

// OddsStore persists odds snapshots and the event-to-game map.
type OddsStore interface {
	InsertSnapshot(ctx context.Context, s *store.OddsSnapshot) error
	UpsertEventMap(ctx context.Context, m *store.OddsEventMap) error
}

// EdgeStore persists the per-game-per-day edge rollup.
type EdgeStore interface {
	Upsert(ctx context.Context, e *store.DailyEdge) error
}

// MappingStore persists participant resolutions and their failures.
type MappingStore interface {
	UpsertProviderMapping(ctx context.Context, mapping *store.ProviderMapping) error
	RecordUnmatchedParticipant(ctx context.Context, u *store.UnmatchedParticipant) error
}

// EdgePublisher pushes a freshly computed edge to downstream consumers.
// Optional: jobs treat a nil publisher as "do not publish".
type EdgePublisher interface {
	PublishEdge(ctx context.Context, edge *store.DailyEdge) error
}

// credentialed is implemented by provider clients that need an API key.
type credentialed interface {
	RequireCredentials() error
}

// checkCredentials fails a job before any work when its source is known to
// be unusable, so a missing key surfaces as an immediate run failure rather
// than a provider 401 mid-run. Sources without credentials pass.
func checkCredentials(source interface{}) error {
	if c, ok := source.(credentialed); ok {
		return c.RequireCredentials()
	}
	return nil
}
