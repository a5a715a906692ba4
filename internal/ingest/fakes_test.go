package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/identity"
	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/boxscore"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/oddsfeed"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/scoreboard"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// In-memory store fakes shared by the job tests.

type fakeTeams struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[string]*store.Team
	byID   map[int64]*store.Team
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{byKey: make(map[string]*store.Team), byID: make(map[int64]*store.Team)}
}

func (f *fakeTeams) Upsert(ctx context.Context, team *store.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := team.Sport + "|" + team.Provider + "|" + team.ProviderTeamKey
	if existing, ok := f.byKey[key]; ok {
		team.TeamID = existing.TeamID
	} else {
		f.nextID++
		team.TeamID = f.nextID
	}
	copied := *team
	f.byKey[key] = &copied
	f.byID[team.TeamID] = &copied
	return nil
}

func (f *fakeTeams) GetByID(ctx context.Context, teamID int64) (*store.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[teamID], nil
}

func (f *fakeTeams) ListBySport(ctx context.Context, sport string) ([]*store.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Team
	for _, team := range f.byID {
		if team.Sport == sport {
			out = append(out, team)
		}
	}
	return out, nil
}

type fakeFranchises struct {
	mu        sync.Mutex
	nextID    int64
	byName    map[string]*store.Franchise
	versions  map[int64]*store.TeamVersion
	mappings  map[string]*store.ProviderMapping
	unmatched []*store.UnmatchedParticipant
}

func newFakeFranchises() *fakeFranchises {
	return &fakeFranchises{
		byName:   make(map[string]*store.Franchise),
		versions: make(map[int64]*store.TeamVersion),
		mappings: make(map[string]*store.ProviderMapping),
	}
}

func (f *fakeFranchises) EnsureFranchise(ctx context.Context, sport, canonicalName string) (*store.Franchise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sport + "|" + canonicalName
	if existing, ok := f.byName[key]; ok {
		return existing, nil
	}
	f.nextID++
	franchise := &store.Franchise{FranchiseID: f.nextID, Sport: sport, CanonicalName: canonicalName}
	f.byName[key] = franchise
	return franchise, nil
}

func (f *fakeFranchises) EnsureCurrentVersion(ctx context.Context, franchiseID int64, displayName, city, abbreviation string) (*store.TeamVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.versions[franchiseID]; ok {
		return existing, nil
	}
	version := &store.TeamVersion{
		VersionID:   int64(len(f.versions) + 1),
		FranchiseID: franchiseID,
		DisplayName: displayName,
	}
	f.versions[franchiseID] = version
	return version, nil
}

func (f *fakeFranchises) UpsertProviderMapping(ctx context.Context, mapping *store.ProviderMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings[mapping.Sport+"|"+mapping.Provider+"|"+mapping.ProviderTeamKey] = mapping
	return nil
}

func (f *fakeFranchises) RecordUnmatchedParticipant(ctx context.Context, u *store.UnmatchedParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmatched = append(f.unmatched, u)
	return nil
}

type fakeGames struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[string]*store.Game
	byID   map[int64]*store.Game
}

func newFakeGames() *fakeGames {
	return &fakeGames{byKey: make(map[string]*store.Game), byID: make(map[int64]*store.Game)}
}

func (f *fakeGames) Upsert(ctx context.Context, game *store.Game) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := game.Sport + "|" + game.Provider + "|" + game.ProviderGameKey
	existing, ok := f.byKey[key]
	if ok {
		game.GameID = existing.GameID
	} else {
		f.nextID++
		game.GameID = f.nextID
	}
	copied := *game
	// Same rule as the repository upsert: a final row never regresses.
	if ok && existing.Status == store.StatusFinal && game.Status != store.StatusFinal {
		copied.Status = existing.Status
		copied.HomeScore = existing.HomeScore
		copied.AwayScore = existing.AwayScore
		copied.FinalTotal = existing.FinalTotal
	}
	f.byKey[key] = &copied
	f.byID[game.GameID] = &copied
	return !ok, nil
}

func (f *fakeGames) GetByID(ctx context.Context, gameID int64) (*store.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[gameID], nil
}

func (f *fakeGames) ListByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Game
	for _, game := range f.byID {
		if game.Sport == sport && !game.StartTime.Before(from) && game.StartTime.Before(to) {
			out = append(out, game)
		}
	}
	return out, nil
}

func (f *fakeGames) ListFinalByDateRange(ctx context.Context, sport string, from, to time.Time) ([]*store.Game, error) {
	games, _ := f.ListByDateRange(ctx, sport, from, to)
	var out []*store.Game
	for _, game := range games {
		if game.Status == store.StatusFinal {
			out = append(out, game)
		}
	}
	return out, nil
}

func (f *fakeGames) ListMissingFranchise(ctx context.Context, sport string) ([]*store.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Game
	for _, game := range f.byID {
		if game.Sport == sport && (!game.HomeFranchiseID.Valid || !game.AwayFranchiseID.Valid) {
			out = append(out, game)
		}
	}
	return out, nil
}

func (f *fakeGames) CorrectScores(ctx context.Context, gameID int64, homeScore, awayScore int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.byID[gameID]
	if !ok || game.Status != store.StatusFinal {
		return nil
	}
	game.HomeScore = sql.NullInt32{Int32: int32(homeScore), Valid: true}
	game.AwayScore = sql.NullInt32{Int32: int32(awayScore), Valid: true}
	game.FinalTotal = sql.NullInt32{Int32: int32(homeScore + awayScore), Valid: true}
	return nil
}

func (f *fakeGames) SetFranchises(ctx context.Context, gameID int64, home, away sql.NullInt64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if game, ok := f.byID[gameID]; ok {
		game.HomeFranchiseID = home
		game.AwayFranchiseID = away
	}
	return nil
}

type fakeMatchups struct {
	mu       sync.Mutex
	byGameID map[int64]*store.MatchupGame
}

func newFakeMatchups() *fakeMatchups {
	return &fakeMatchups{byGameID: make(map[int64]*store.MatchupGame)}
}

func (f *fakeMatchups) Upsert(ctx context.Context, m *store.MatchupGame) error {
	if m.TeamLowID >= m.TeamHighID {
		return fmt.Errorf("matchup pair out of order: %d >= %d", m.TeamLowID, m.TeamHighID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *m
	f.byGameID[m.GameID] = &copied
	return nil
}

func (f *fakeMatchups) HistoricalTotals(ctx context.Context, sport string, teamA, teamB, excludeGameID int64) ([]int, error) {
	low, high := store.OrderPair(teamA, teamB)
	f.mu.Lock()
	defer f.mu.Unlock()
	var totals []int
	for _, m := range f.byGameID {
		if m.Sport == sport && m.TeamLowID == low && m.TeamHighID == high && m.GameID != excludeGameID {
			totals = append(totals, m.FinalTotal)
		}
	}
	return totals, nil
}

func (f *fakeMatchups) SetFranchisePair(ctx context.Context, gameID int64, low, high sql.NullInt64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.byGameID[gameID]; ok {
		m.FranchiseLowID = low
		m.FranchiseHighID = high
	}
	return nil
}

type fakeOdds struct {
	mu        sync.Mutex
	snapshots []*store.OddsSnapshot
	eventMaps map[int64]*store.OddsEventMap
}

func newFakeOdds() *fakeOdds {
	return &fakeOdds{eventMaps: make(map[int64]*store.OddsEventMap)}
}

func (f *fakeOdds) InsertSnapshot(ctx context.Context, s *store.OddsSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeOdds) UpsertEventMap(ctx context.Context, m *store.OddsEventMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventMaps[m.GameID] = m
	return nil
}

type fakeEdges struct {
	mu   sync.Mutex
	rows map[string]*store.DailyEdge
}

func newFakeEdges() *fakeEdges {
	return &fakeEdges{rows: make(map[string]*store.DailyEdge)}
}

func (f *fakeEdges) Upsert(ctx context.Context, e *store.DailyEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[fmt.Sprintf("%d|%s", e.GameID, e.EdgeDate.Format("2006-01-02"))] = e
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*store.DailyEdge
}

func (f *fakePublisher) PublishEdge(ctx context.Context, edge *store.DailyEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, edge)
	return nil
}

type fakeRuns struct {
	mu       sync.Mutex
	inserted []*store.JobRun
	finished map[string]string // runID -> status
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{finished: make(map[string]string)}
}

func (f *fakeRuns) Insert(ctx context.Context, run *store.JobRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, run)
	return nil
}

func (f *fakeRuns) Finish(ctx context.Context, runID, status, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished[runID] = status
	return nil
}

// fakeGameSource serves a fixed page of box-score games.
type fakeGameSource struct {
	games   []boxscore.Game
	invalid []boxscore.Invalid
	err     error

	credErr error
	calls   int
}

func (f *fakeGameSource) FetchGames(ctx context.Context, from, to time.Time) ([]boxscore.Game, []boxscore.Invalid, error) {
	f.calls++
	return f.games, f.invalid, f.err
}

func (f *fakeGameSource) RequireCredentials() error { return f.credErr }

// fakeScoreSource serves scores keyed by date.
type fakeScoreSource struct {
	mu      sync.Mutex
	byDate  map[string][]scoreboard.Score
	invalid []scoreboard.Invalid
}

func (f *fakeScoreSource) FetchScores(ctx context.Context, sport string, date time.Time) ([]scoreboard.Score, []scoreboard.Invalid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byDate[date.Format("2006-01-02")], f.invalid, nil
}

type fakeEventSource struct {
	events  []matching.OddsEvent
	invalid []oddsfeed.Invalid
	err     error

	credErr error
	calls   int
}

func (f *fakeEventSource) FetchEvents(ctx context.Context, sportKey string) ([]matching.OddsEvent, []oddsfeed.Invalid, error) {
	f.calls++
	return f.events, f.invalid, f.err
}

func (f *fakeEventSource) RequireCredentials() error { return f.credErr }

type fakeParticipantSource struct {
	names []string
	err   error
}

func (f *fakeParticipantSource) FetchParticipants(ctx context.Context, sportKey string) ([]string, error) {
	return f.names, f.err
}

// fixture wires the fakes into the real jobs.
type fixture struct {
	teams      *fakeTeams
	franchises *fakeFranchises
	games      *fakeGames
	matchups   *fakeMatchups
	odds       *fakeOdds
	edges      *fakeEdges
	runs       *fakeRuns
	registry   *identity.Registry
	ledger     *jobs.Ledger
}

func newFixture() *fixture {
	f := &fixture{
		teams:      newFakeTeams(),
		franchises: newFakeFranchises(),
		games:      newFakeGames(),
		matchups:   newFakeMatchups(),
		odds:       newFakeOdds(),
		edges:      newFakeEdges(),
		runs:       newFakeRuns(),
	}
	f.registry = identity.NewRegistry(f.teams, f.franchises, f.games, f.matchups, nil)
	f.ledger = jobs.NewLedger(f.runs)
	return f
}
