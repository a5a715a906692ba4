package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/byStayo/game-percentiles-sub001/internal/identity"
	"github.com/byStayo/game-percentiles-sub001/internal/jobs"
	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/providers/participants"
	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// ParticipantSource is the odds feed's participant roster.
type ParticipantSource interface {
	FetchParticipants(ctx context.Context, sportKey string) ([]string, error)
}

// ParticipantsSyncer resolves the odds feed's participant names against the
// internal team roster with the fuzzy matcher. Matches at or above the
// persistence floor become provider mappings; everything else lands in the
// unmatched table for manual alias work.
type ParticipantsSyncer struct {
	sport      string
	sportKey   string
	soccerLike bool

	source   ParticipantSource
	teams    TeamStore
	registry *identity.Registry
	mappings MappingStore
	matcher  *matching.FuzzyMatcher
	cfg      matching.FuzzyConfig
	ledger   *jobs.Ledger
}

// NewParticipantsSyncer creates a participants syncer for one sport.
func NewParticipantsSyncer(sport, sportKey string, soccerLike bool, source ParticipantSource,
	teams TeamStore, registry *identity.Registry, mappings MappingStore,
	matcher *matching.FuzzyMatcher, cfg matching.FuzzyConfig, ledger *jobs.Ledger) *ParticipantsSyncer {
	return &ParticipantsSyncer{
		sport:      sport,
		sportKey:   sportKey,
		soccerLike: soccerLike,
		source:     source,
		teams:      teams,
		registry:   registry,
		mappings:   mappings,
		matcher:    matcher,
		cfg:        cfg,
		ledger:     ledger,
	}
}

// Sync fetches the roster and resolves every name.
func (s *ParticipantsSyncer) Sync(ctx context.Context) (*Counters, error) {
	runID, err := s.ledger.Start(ctx, "participants_sync", map[string]interface{}{
		"sport": s.sport,
	})
	if err != nil {
		return nil, err
	}

	counters := &Counters{}
	if err := checkCredentials(s.source); err != nil {
		counters.RecordError("config", err)
		s.ledger.Finish(ctx, runID, jobs.StatusFail, counters.Details())
		return counters, err
	}

	runErr := s.sync(ctx, counters)
	if runErr != nil {
		counters.RecordError("participants sync", runErr)
	}

	s.ledger.Finish(ctx, runID, counters.Status(runErr != nil), counters.Details())
	return counters, runErr
}

func (s *ParticipantsSyncer) sync(ctx context.Context, counters *Counters) error {
	names, err := s.source.FetchParticipants(ctx, s.sportKey)
	if err != nil {
		return fmt.Errorf("fetch participants: %w", err)
	}
	counters.Fetched = len(names)

	teams, err := s.teams.ListBySport(ctx, s.sport)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}

	candidates := make([]matching.TeamCandidate, 0, len(teams))
	teamsByID := make(map[int64]*store.Team, len(teams))
	for _, team := range teams {
		abbrev := team.ProviderTeamKey
		if team.Abbreviation.Valid {
			abbrev = team.Abbreviation.String
		}
		candidates = append(candidates, matching.TeamCandidate{
			TeamID:       team.TeamID,
			Name:         team.DisplayName,
			Abbreviation: abbrev,
		})
		teamsByID[team.TeamID] = team
	}

	run := s.registry.NewRun(participants.Provider)
	for _, name := range names {
		if err := s.resolveParticipant(ctx, counters, run, name, candidates, teamsByID); err != nil {
			counters.RecordError("participant "+name, err)
		}
	}

	log.Printf("[participants] %s sync done: %d names, %d matched, %d unmatched",
		s.sport, counters.Fetched, counters.Matched, counters.Unmatched)
	return nil
}

func (s *ParticipantsSyncer) resolveParticipant(ctx context.Context, counters *Counters, run *identity.Run,
	name string, candidates []matching.TeamCandidate, teamsByID map[int64]*store.Team) error {

	match := s.matcher.Match(name, candidates, s.soccerLike)
	if match == nil || !match.Persistable(s.cfg) {
		counters.Add(func(c *Counters) { c.Unmatched++ })
		return s.recordUnmatched(ctx, name, match)
	}

	team := teamsByID[match.TeamID]
	abbrev := team.ProviderTeamKey
	if team.Abbreviation.Valid {
		abbrev = team.Abbreviation.String
	}

	// The mapping must carry the franchise/version the team belongs to.
	res, ok, err := run.EnsureTeamAndFranchise(ctx, s.sport, abbrev)
	if err != nil {
		return err
	}
	if !ok {
		counters.Add(func(c *Counters) { c.Unmatched++ })
		return s.recordUnmatched(ctx, name, match)
	}

	mapping := &store.ProviderMapping{
		Sport:           s.sport,
		Provider:        participants.Provider,
		ProviderTeamKey: name,
		TeamVersionID:   res.Version.VersionID,
		FranchiseID:     res.Franchise.FranchiseID,
		TeamID:          match.TeamID,
		Confidence:      match.Confidence,
		Method:          match.Method,
	}
	if err := s.mappings.UpsertProviderMapping(ctx, mapping); err != nil {
		return err
	}

	counters.Add(func(c *Counters) { c.Matched++ })
	return nil
}

func (s *ParticipantsSyncer) recordUnmatched(ctx context.Context, name string, match *matching.FuzzyMatch) error {
	unmatched := &store.UnmatchedParticipant{
		Sport:          s.sport,
		Provider:       participants.Provider,
		ParticipantKey: name,
		Reason:         "no candidate above floor",
	}
	if match != nil {
		unmatched.BestConfidence = sql.NullFloat64{Float64: match.Confidence, Valid: true}
		unmatched.Reason = fmt.Sprintf("best %q at %.2f below floor %.2f", match.TeamName, match.Confidence, s.cfg.PersistFloor)
	}
	return s.mappings.RecordUnmatchedParticipant(ctx, unmatched)
}
