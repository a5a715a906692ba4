package identity

import (
	"context"
	"database/sql"
	"testing"

	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// fakeStores backs all four registry interfaces in memory.
type fakeStores struct {
	nextTeamID      int64
	nextFranchiseID int64
	nextVersionID   int64

	teamsByID        map[int64]*store.Team
	teamsByKey       map[string]*store.Team
	franchisesByName map[string]*store.Franchise
	versions         map[int64]*store.TeamVersion // by franchise id
	mappings         []*store.ProviderMapping

	missingFranchise []*store.Game
	gameFranchises   map[int64][2]sql.NullInt64
	matchupPairs     map[int64][2]sql.NullInt64

	ensureFranchiseCalls int
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		teamsByID:        make(map[int64]*store.Team),
		teamsByKey:       make(map[string]*store.Team),
		franchisesByName: make(map[string]*store.Franchise),
		versions:         make(map[int64]*store.TeamVersion),
		gameFranchises:   make(map[int64][2]sql.NullInt64),
		matchupPairs:     make(map[int64][2]sql.NullInt64),
	}
}

func (f *fakeStores) Upsert(ctx context.Context, team *store.Team) error {
	key := team.Sport + "|" + team.Provider + "|" + team.ProviderTeamKey
	if existing, ok := f.teamsByKey[key]; ok {
		team.TeamID = existing.TeamID
	} else {
		f.nextTeamID++
		team.TeamID = f.nextTeamID
	}
	copied := *team
	f.teamsByKey[key] = &copied
	f.teamsByID[team.TeamID] = &copied
	return nil
}

func (f *fakeStores) GetByID(ctx context.Context, teamID int64) (*store.Team, error) {
	return f.teamsByID[teamID], nil
}

func (f *fakeStores) EnsureFranchise(ctx context.Context, sport, canonicalName string) (*store.Franchise, error) {
	f.ensureFranchiseCalls++
	key := sport + "|" + canonicalName
	if existing, ok := f.franchisesByName[key]; ok {
		return existing, nil
	}
	f.nextFranchiseID++
	franchise := &store.Franchise{FranchiseID: f.nextFranchiseID, Sport: sport, CanonicalName: canonicalName}
	f.franchisesByName[key] = franchise
	return franchise, nil
}

func (f *fakeStores) EnsureCurrentVersion(ctx context.Context, franchiseID int64, displayName, city, abbreviation string) (*store.TeamVersion, error) {
	if existing, ok := f.versions[franchiseID]; ok {
		return existing, nil
	}
	f.nextVersionID++
	version := &store.TeamVersion{
		VersionID:    f.nextVersionID,
		FranchiseID:  franchiseID,
		DisplayName:  displayName,
		City:         sql.NullString{String: city, Valid: city != ""},
		Abbreviation: sql.NullString{String: abbreviation, Valid: abbreviation != ""},
	}
	f.versions[franchiseID] = version
	return version, nil
}

func (f *fakeStores) UpsertProviderMapping(ctx context.Context, mapping *store.ProviderMapping) error {
	f.mappings = append(f.mappings, mapping)
	return nil
}

func (f *fakeStores) ListMissingFranchise(ctx context.Context, sport string) ([]*store.Game, error) {
	return f.missingFranchise, nil
}

func (f *fakeStores) SetFranchises(ctx context.Context, gameID int64, home, away sql.NullInt64) error {
	f.gameFranchises[gameID] = [2]sql.NullInt64{home, away}
	return nil
}

func (f *fakeStores) SetFranchisePair(ctx context.Context, gameID int64, low, high sql.NullInt64) error {
	f.matchupPairs[gameID] = [2]sql.NullInt64{low, high}
	return nil
}

func newTestRegistry(f *fakeStores) *Registry {
	return NewRegistry(f, f, f, f, nil)
}

func TestEnsureTeamAndFranchiseCreatesIdentity(t *testing.T) {
	fakes := newFakeStores()
	run := newTestRegistry(fakes).NewRun("boxscore")
	ctx := context.Background()

	res, ok, err := run.EnsureTeamAndFranchise(ctx, "basketball_nba", "LAL")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok {
		t.Fatal("expected LAL to resolve")
	}

	if res.Team.DisplayName != "Los Angeles Lakers" {
		t.Errorf("team display name = %q", res.Team.DisplayName)
	}
	if res.Franchise.CanonicalName != "Lakers" {
		t.Errorf("franchise = %q, want Lakers", res.Franchise.CanonicalName)
	}
	if res.Version.FranchiseID != res.Franchise.FranchiseID {
		t.Error("version not attached to franchise")
	}

	if len(fakes.mappings) != 1 {
		t.Fatalf("recorded %d mappings, want 1", len(fakes.mappings))
	}
	mapping := fakes.mappings[0]
	if mapping.Method != matching.MethodExact || mapping.Confidence != 1.0 {
		t.Errorf("mapping method/confidence = %s/%v", mapping.Method, mapping.Confidence)
	}
	if mapping.TeamID != res.Team.TeamID {
		t.Error("mapping does not reference the created team")
	}
}

func TestEnsureTeamAndFranchiseUnknownAbbreviation(t *testing.T) {
	fakes := newFakeStores()
	run := newTestRegistry(fakes).NewRun("boxscore")

	res, ok, err := run.EnsureTeamAndFranchise(context.Background(), "basketball_nba", "ZZZ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ok || res != nil {
		t.Error("unknown abbreviation must come back not-found, never guessed")
	}
	if fakes.ensureFranchiseCalls != 0 || len(fakes.mappings) != 0 {
		t.Error("unknown abbreviation must not write anything")
	}
}

func TestRunCacheResolvesOncePerAbbreviation(t *testing.T) {
	fakes := newFakeStores()
	run := newTestRegistry(fakes).NewRun("boxscore")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, _, err := run.EnsureTeamAndFranchise(ctx, "basketball_nba", "DEN"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}

	if fakes.ensureFranchiseCalls != 1 {
		t.Errorf("ensure franchise hit the store %d times, want 1", fakes.ensureFranchiseCalls)
	}
}

func TestBackfillFranchiseIDs(t *testing.T) {
	fakes := newFakeStores()
	reg := newTestRegistry(fakes)
	ctx := context.Background()

	// Seed the teams a prior ingest created without franchise links.
	run := reg.NewRun("boxscore")
	clippers, _, err := run.EnsureTeamAndFranchise(ctx, "basketball_nba", "LAC")
	if err != nil {
		t.Fatalf("seed LAC: %v", err)
	}
	nuggets, _, err := run.EnsureTeamAndFranchise(ctx, "basketball_nba", "DEN")
	if err != nil {
		t.Fatalf("seed DEN: %v", err)
	}

	fakes.missingFranchise = []*store.Game{{
		GameID:     42,
		Sport:      "basketball_nba",
		HomeTeamID: nuggets.Team.TeamID,
		AwayTeamID: clippers.Team.TeamID,
	}}

	updated, err := reg.BackfillFranchiseIDs(ctx, "basketball_nba", "boxscore")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	got, ok := fakes.gameFranchises[42]
	if !ok {
		t.Fatal("game 42 was not updated")
	}
	if got[0].Int64 != nuggets.Franchise.FranchiseID || got[1].Int64 != clippers.Franchise.FranchiseID {
		t.Errorf("game franchises = %v, want home=%d away=%d", got, nuggets.Franchise.FranchiseID, clippers.Franchise.FranchiseID)
	}

	// The matchup pair follows team-id ordering, not home/away.
	low, _ := store.OrderPair(nuggets.Team.TeamID, clippers.Team.TeamID)
	wantLow := nuggets.Franchise.FranchiseID
	wantHigh := clippers.Franchise.FranchiseID
	if low != nuggets.Team.TeamID {
		wantLow, wantHigh = wantHigh, wantLow
	}
	pair, ok := fakes.matchupPairs[42]
	if !ok {
		t.Fatal("matchup pair was not propagated")
	}
	if pair[0].Int64 != wantLow || pair[1].Int64 != wantHigh {
		t.Errorf("matchup pair = %v, want low=%d high=%d", pair, wantLow, wantHigh)
	}
}

func TestBackfillSkipsUnknownTeams(t *testing.T) {
	fakes := newFakeStores()
	reg := newTestRegistry(fakes)
	ctx := context.Background()

	team := &store.Team{Sport: "basketball_nba", Provider: "boxscore", ProviderTeamKey: "ZZZ", DisplayName: "Mystery"}
	if err := fakes.Upsert(ctx, team); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	fakes.missingFranchise = []*store.Game{{
		GameID:     7,
		Sport:      "basketball_nba",
		HomeTeamID: team.TeamID,
		AwayTeamID: team.TeamID,
	}}

	updated, err := reg.BackfillFranchiseIDs(ctx, "basketball_nba", "boxscore")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0", updated)
	}
	if len(fakes.gameFranchises) != 0 {
		t.Error("unresolvable game must not be updated")
	}
}

func TestRemapScoreboardAbbrev(t *testing.T) {
	tests := []struct {
		sport, in, want string
	}{
		{"basketball_nba", "GS", "GSW"},
		{"basketball_nba", "LAL", "LAL"},
		{"hockey_nhl", "TB", "TBL"},
		{"soccer_epl", "ARS", "ARS"},
	}
	for _, tt := range tests {
		if got := RemapScoreboardAbbrev(tt.sport, tt.in); got != tt.want {
			t.Errorf("RemapScoreboardAbbrev(%s, %s) = %s, want %s", tt.sport, tt.in, got, tt.want)
		}
	}
}
