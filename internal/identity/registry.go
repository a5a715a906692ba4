package identity

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// TeamStore is the team persistence the registry needs.
type TeamStore interface {
	Upsert(ctx context.Context, team *store.Team) error
	GetByID(ctx context.Context, teamID int64) (*store.Team, error)
}

// FranchiseStore is the lineage persistence the registry needs.
type FranchiseStore interface {
	EnsureFranchise(ctx context.Context, sport, canonicalName string) (*store.Franchise, error)
	EnsureCurrentVersion(ctx context.Context, franchiseID int64, displayName, city, abbreviation string) (*store.TeamVersion, error)
	UpsertProviderMapping(ctx context.Context, mapping *store.ProviderMapping) error
}

// GameStore is the slice of game persistence used by the franchise backfill.
type GameStore interface {
	ListMissingFranchise(ctx context.Context, sport string) ([]*store.Game, error)
	SetFranchises(ctx context.Context, gameID int64, homeFranchiseID, awayFranchiseID sql.NullInt64) error
}

// MatchupStore propagates franchise ids onto matchup rows.
type MatchupStore interface {
	SetFranchisePair(ctx context.Context, gameID int64, franchiseLow, franchiseHigh sql.NullInt64) error
}

// Resolution is a fully resolved team identity: the provider-facing team row,
// its franchise lineage, and the lineage's open version.
type Resolution struct {
	Team      *store.Team
	Franchise *store.Franchise
	Version   *store.TeamVersion
}

// Registry resolves provider team abbreviations to franchise lineages using a
// static sport-scoped table. It never guesses: an abbreviation absent from the
// table is reported not-found and the caller skips the row.
type Registry struct {
	teams      TeamStore
	franchises FranchiseStore
	games      GameStore
	matchups   MatchupStore
	table      FranchiseTable
}

// NewRegistry creates a registry. A nil table uses the built-in one.
func NewRegistry(teams TeamStore, franchises FranchiseStore, games GameStore, matchups MatchupStore, table FranchiseTable) *Registry {
	if table == nil {
		table = DefaultFranchiseTable()
	}
	return &Registry{
		teams:      teams,
		franchises: franchises,
		games:      games,
		matchups:   matchups,
		table:      table,
	}
}

// Run is a registry view scoped to one ingestion run for one provider. Each
// run carries its own lookup cache so a backfill touches the database once per
// distinct (sport, abbreviation) instead of once per game row. The cache is
// discarded with the run; nothing is shared across runs.
type Run struct {
	reg      *Registry
	provider string
	cache    map[string]*Resolution
}

// NewRun starts a run-scoped resolver for the given provider.
func (r *Registry) NewRun(provider string) *Run {
	return &Run{
		reg:      r,
		provider: provider,
		cache:    make(map[string]*Resolution),
	}
}

// EnsureTeamAndFranchise resolves (sport, abbreviation) to a team, franchise
// and open version, creating any of the three that do not exist yet. The
// second return is false when the abbreviation is unknown; no rows are
// written in that case.
func (run *Run) EnsureTeamAndFranchise(ctx context.Context, sport, abbrev string) (*Resolution, bool, error) {
	key := sport + "|" + abbrev
	if res, ok := run.cache[key]; ok {
		return res, true, nil
	}

	entry, ok := run.reg.table.Lookup(sport, abbrev)
	if !ok {
		return nil, false, nil
	}

	franchise, err := run.reg.franchises.EnsureFranchise(ctx, sport, entry.Franchise)
	if err != nil {
		return nil, false, fmt.Errorf("resolve %s/%s: %w", sport, abbrev, err)
	}

	version, err := run.reg.franchises.EnsureCurrentVersion(ctx, franchise.FranchiseID, entry.DisplayName, entry.City, abbrev)
	if err != nil {
		return nil, false, fmt.Errorf("resolve %s/%s: %w", sport, abbrev, err)
	}

	team := &store.Team{
		Sport:           sport,
		Provider:        run.provider,
		ProviderTeamKey: abbrev,
		DisplayName:     entry.DisplayName,
		Abbreviation:    sql.NullString{String: abbrev, Valid: true},
		City:            sql.NullString{String: entry.City, Valid: entry.City != ""},
	}
	if err := run.reg.teams.Upsert(ctx, team); err != nil {
		return nil, false, fmt.Errorf("resolve %s/%s: %w", sport, abbrev, err)
	}

	mapping := &store.ProviderMapping{
		Sport:           sport,
		Provider:        run.provider,
		ProviderTeamKey: abbrev,
		TeamVersionID:   version.VersionID,
		FranchiseID:     franchise.FranchiseID,
		TeamID:          team.TeamID,
		Confidence:      1.0,
		Method:          matching.MethodExact,
	}
	if err := run.reg.franchises.UpsertProviderMapping(ctx, mapping); err != nil {
		return nil, false, fmt.Errorf("resolve %s/%s: %w", sport, abbrev, err)
	}

	res := &Resolution{Team: team, Franchise: franchise, Version: version}
	run.cache[key] = res
	return res, true, nil
}

// BackfillFranchiseIDs fills franchise ids on games ingested before their
// lineage existed, then propagates the pair onto any matchup rows. Games
// whose team abbreviations the table still does not know are skipped, not
// failed; they will pick up ids on a later run once the table learns them.
// Returns the number of games updated.
func (r *Registry) BackfillFranchiseIDs(ctx context.Context, sport, provider string) (int, error) {
	games, err := r.games.ListMissingFranchise(ctx, sport)
	if err != nil {
		return 0, fmt.Errorf("backfill franchises: %w", err)
	}

	run := r.NewRun(provider)
	updated := 0

	for _, game := range games {
		homeID, ok, err := r.franchiseForTeam(ctx, run, sport, game.HomeTeamID)
		if err != nil {
			return updated, err
		}
		if !ok {
			continue
		}

		awayID, ok, err := r.franchiseForTeam(ctx, run, sport, game.AwayTeamID)
		if err != nil {
			return updated, err
		}
		if !ok {
			continue
		}

		home := sql.NullInt64{Int64: homeID, Valid: true}
		away := sql.NullInt64{Int64: awayID, Valid: true}
		if err := r.games.SetFranchises(ctx, game.GameID, home, away); err != nil {
			return updated, fmt.Errorf("backfill franchises: %w", err)
		}

		// Matchup rows key the pair by ordered team ids; the franchise
		// columns must line up with the same ordering.
		low, _ := store.OrderPair(game.HomeTeamID, game.AwayTeamID)
		franchiseLow, franchiseHigh := home, away
		if low != game.HomeTeamID {
			franchiseLow, franchiseHigh = away, home
		}
		if err := r.matchups.SetFranchisePair(ctx, game.GameID, franchiseLow, franchiseHigh); err != nil {
			return updated, fmt.Errorf("backfill franchises: %w", err)
		}

		updated++
	}

	return updated, nil
}

func (r *Registry) franchiseForTeam(ctx context.Context, run *Run, sport string, teamID int64) (int64, bool, error) {
	team, err := r.teams.GetByID(ctx, teamID)
	if err != nil {
		return 0, false, fmt.Errorf("backfill franchises: %w", err)
	}
	if team == nil {
		log.Printf("[identity] team %d referenced by game but missing", teamID)
		return 0, false, nil
	}

	abbrev := team.ProviderTeamKey
	if team.Abbreviation.Valid {
		abbrev = team.Abbreviation.String
	}

	res, ok, err := run.EnsureTeamAndFranchise(ctx, sport, abbrev)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	return res.Franchise.FranchiseID, true, nil
}
