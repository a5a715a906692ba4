package store

import (
	"database/sql"
	"time"
)

// Team is the provider-facing row used for day-to-day joins. Created on
// first sighting from any provider; abbreviation/city may be back-filled
// later; never deleted.
type Team struct {
	TeamID          int64          `json:"team_id" db:"team_id"`
	Sport           string         `json:"sport" db:"sport"`
	Provider        string         `json:"provider" db:"provider"`
	ProviderTeamKey string         `json:"provider_team_key" db:"provider_team_key"`
	DisplayName     string         `json:"display_name" db:"display_name"`
	Abbreviation    sql.NullString `json:"abbreviation,omitempty" db:"abbreviation"`
	City            sql.NullString `json:"city,omitempty" db:"city"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Franchise is the enduring lineage identity ("Lakers" independent of city).
type Franchise struct {
	FranchiseID   int64     `json:"franchise_id" db:"franchise_id"`
	Sport         string    `json:"sport" db:"sport"`
	CanonicalName string    `json:"canonical_name" db:"canonical_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// TeamVersion is a time-bounded identity within a franchise lineage
// (rebrand/relocation). At most one version per franchise is open
// (effective_to null) at any time, and ranges never overlap.
type TeamVersion struct {
	VersionID     int64          `json:"version_id" db:"version_id"`
	FranchiseID   int64          `json:"franchise_id" db:"franchise_id"`
	DisplayName   string         `json:"display_name" db:"display_name"`
	City          sql.NullString `json:"city,omitempty" db:"city"`
	Abbreviation  sql.NullString `json:"abbreviation,omitempty" db:"abbreviation"`
	EffectiveFrom time.Time      `json:"effective_from" db:"effective_from"`
	EffectiveTo   sql.NullTime   `json:"effective_to,omitempty" db:"effective_to"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// ProviderMapping links a provider's team key to a specific TeamVersion
// (and transitively to a franchise and a team row). A given provider key
// maps to exactly one version at a time.
type ProviderMapping struct {
	MappingID       int64     `json:"mapping_id" db:"mapping_id"`
	Sport           string    `json:"sport" db:"sport"`
	Provider        string    `json:"provider" db:"provider"`
	ProviderTeamKey string    `json:"provider_team_key" db:"provider_team_key"`
	TeamVersionID   int64     `json:"team_version_id" db:"team_version_id"`
	FranchiseID     int64     `json:"franchise_id" db:"franchise_id"`
	TeamID          int64     `json:"team_id" db:"team_id"`
	Confidence      float64   `json:"confidence" db:"confidence"`
	Method          string    `json:"method" db:"method"` // exact|alias|fuzzy
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// UnmatchedParticipant records a provider participant name the fuzzy matcher
// could not map above the persistence floor. Cleared only by alias-table or
// provider-data changes, never retried automatically.
type UnmatchedParticipant struct {
	ID             int64           `json:"id" db:"id"`
	Sport          string          `json:"sport" db:"sport"`
	Provider       string          `json:"provider" db:"provider"`
	ParticipantKey string          `json:"participant_key" db:"participant_key"`
	BestConfidence sql.NullFloat64 `json:"best_confidence,omitempty" db:"best_confidence"`
	Reason         string          `json:"reason" db:"reason"`
	SeenAt         time.Time       `json:"seen_at" db:"seen_at"`
}

// Game is one tracked game. (sport, provider, provider_game_key) is the
// ingestion idempotency key. Scores are null until final; status mutates in
// place as the game progresses and reconciliation may correct final scores.
type Game struct {
	GameID          int64          `json:"game_id" db:"game_id"`
	Sport           string         `json:"sport" db:"sport"`
	Provider        string         `json:"provider" db:"provider"`
	ProviderGameKey string         `json:"provider_game_key" db:"provider_game_key"`
	HomeTeamID      int64          `json:"home_team_id" db:"home_team_id"`
	AwayTeamID      int64          `json:"away_team_id" db:"away_team_id"`
	HomeFranchiseID sql.NullInt64  `json:"home_franchise_id,omitempty" db:"home_franchise_id"`
	AwayFranchiseID sql.NullInt64  `json:"away_franchise_id,omitempty" db:"away_franchise_id"`
	HomeScore       sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore       sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	FinalTotal      sql.NullInt32  `json:"final_total,omitempty" db:"final_total"`
	Status          GameStatus     `json:"status" db:"status"`
	StartTime       time.Time      `json:"start_time" db:"start_time"`
	SeasonYear      int            `json:"season_year" db:"season_year"`
	Decade          int            `json:"decade" db:"decade"`
	Playoff         bool           `json:"playoff" db:"playoff"`
	PlayoffRound    sql.NullString `json:"playoff_round,omitempty" db:"playoff_round"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// MatchupGame is one row per finished game, keyed by the canonically ordered
// team pair so head-to-head queries never check both orderings. Immutable
// after creation except for score corrections.
type MatchupGame struct {
	ID              int64         `json:"id" db:"id"`
	Sport           string        `json:"sport" db:"sport"`
	TeamLowID       int64         `json:"team_low_id" db:"team_low_id"`
	TeamHighID      int64         `json:"team_high_id" db:"team_high_id"`
	FranchiseLowID  sql.NullInt64 `json:"franchise_low_id,omitempty" db:"franchise_low_id"`
	FranchiseHighID sql.NullInt64 `json:"franchise_high_id,omitempty" db:"franchise_high_id"`
	GameID          int64         `json:"game_id" db:"game_id"`
	FinalTotal      int           `json:"final_total" db:"final_total"`
	SeasonYear      int           `json:"season_year" db:"season_year"`
	Decade          int           `json:"decade" db:"decade"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// TotalsFilter narrows a head-to-head totals query. Zero values mean no
// filtering on that dimension.
type TotalsFilter struct {
	Decade  int
	Playoff *bool
}

// OddsSnapshot is one successful strict match between a game and an odds
// event. Append-only: each refresh writes a new row with the raw payload
// kept for audit.
type OddsSnapshot struct {
	SnapshotID int64     `json:"snapshot_id" db:"snapshot_id"`
	GameID     int64     `json:"game_id" db:"game_id"`
	EventID    string    `json:"event_id" db:"event_id"`
	Bookmaker  string    `json:"bookmaker" db:"bookmaker"`
	TotalLine  float64   `json:"total_line" db:"total_line"`
	RawPayload []byte    `json:"-" db:"raw_payload"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// OddsEventMap caches (provider sport key, provider event id) -> game with a
// confidence score. The game id is the conflict key: at most one mapping per
// game.
type OddsEventMap struct {
	ID              int64     `json:"id" db:"id"`
	SportKey        string    `json:"sport_key" db:"sport_key"`
	ProviderEventID string    `json:"provider_event_id" db:"provider_event_id"`
	GameID          int64     `json:"game_id" db:"game_id"`
	Confidence      float64   `json:"confidence" db:"confidence"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DailyEdge is the per-game-per-day rollup of the offered line versus
// matchup history. Recomputed whenever new totals or a new line arrive.
type DailyEdge struct {
	ID             int64           `json:"id" db:"id"`
	GameID         int64           `json:"game_id" db:"game_id"`
	EdgeDate       time.Time       `json:"edge_date" db:"edge_date"`
	Sport          string          `json:"sport" db:"sport"`
	LineOffered    bool            `json:"line_offered" db:"line_offered"`
	TotalLine      sql.NullFloat64 `json:"total_line,omitempty" db:"total_line"`
	Bookmaker      sql.NullString  `json:"bookmaker,omitempty" db:"bookmaker"`
	LinePercentile sql.NullFloat64 `json:"line_percentile,omitempty" db:"line_percentile"`
	SampleSize     int             `json:"sample_size" db:"sample_size"`
	Sufficient     bool            `json:"sufficient" db:"sufficient"`
	Classification sql.NullString  `json:"classification,omitempty" db:"classification"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// JobRun is the audit record of one batch operation. Created at start,
// updated exactly once at finish, never deleted.
type JobRun struct {
	RunID      string         `json:"run_id" db:"run_id"`
	JobName    string         `json:"job_name" db:"job_name"`
	Status     string         `json:"status" db:"status"` // running|success|fail|completed_with_errors
	Details    sql.NullString `json:"details,omitempty" db:"details"`
	StartedAt  time.Time      `json:"started_at" db:"started_at"`
	FinishedAt sql.NullTime   `json:"finished_at,omitempty" db:"finished_at"`
}
