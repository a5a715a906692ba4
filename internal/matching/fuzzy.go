package matching

import (
	"strings"

	"github.com/byStayo/game-percentiles-sub001/internal/normalize"
)

// Match methods, recorded on persisted provider mappings.
const (
	MethodExact = "exact"
	MethodAlias = "alias"
	MethodFuzzy = "fuzzy"
)

// FuzzyConfig holds the empirically chosen confidence thresholds. They are
// tunable configuration, not fixed law.
type FuzzyConfig struct {
	// SimilarityFloor is the minimum trigram similarity considered at all.
	SimilarityFloor float64
	// ContainmentFloor is the minimum confidence assigned to a substring
	// containment hit (actual confidence is max of this and the length ratio).
	ContainmentFloor float64
	// PersistFloor is the minimum confidence at which a mapping may be
	// persisted. Matches below it are reported but never stored.
	PersistFloor float64
}

// DefaultFuzzyConfig returns the production thresholds.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{
		SimilarityFloor:  0.70,
		ContainmentFloor: 0.85,
		PersistFloor:     0.75,
	}
}

// TeamCandidate is one internal team offered to the fuzzy matcher.
type TeamCandidate struct {
	TeamID       int64
	Name         string
	Abbreviation string
}

// FuzzyMatch is the best-scoring team for a participant name.
type FuzzyMatch struct {
	TeamID     int64
	TeamName   string
	Alias      string
	Confidence float64
	Method     string
}

// Persistable reports whether the match clears the persistence floor.
func (m *FuzzyMatch) Persistable(cfg FuzzyConfig) bool {
	return m.Confidence >= cfg.PersistFloor
}

// FuzzyMatcher maps one provider participant name onto an internal roster.
// Every team is scored and the maximum wins; only an exact alias hit
// short-circuits, and only for that team.
type FuzzyMatcher struct {
	norm     *normalize.Normalizer
	resolver *normalize.Resolver
	cfg      FuzzyConfig
}

// NewFuzzyMatcher creates a fuzzy matcher with the given thresholds.
func NewFuzzyMatcher(norm *normalize.Normalizer, resolver *normalize.Resolver, cfg FuzzyConfig) *FuzzyMatcher {
	return &FuzzyMatcher{norm: norm, resolver: resolver, cfg: cfg}
}

// Match scores every candidate team against the participant name and returns
// the best match, or nil if nothing clears the similarity floor. soccerLike
// enables the reduced alias forms (stop-token-stripped name, individual
// significant words) that only make sense for club-style naming.
func (f *FuzzyMatcher) Match(participant string, teams []TeamCandidate, soccerLike bool) *FuzzyMatch {
	needle := f.resolver.CanonicalName(participant)
	if needle == "" {
		return nil
	}

	var best *FuzzyMatch
	for _, team := range teams {
		aliases := f.buildAliases(team, soccerLike)

		// Exact containment in the alias set: confidence 1.0, stop scoring
		// this team. Other teams are still scored; an exact hit simply
		// cannot be beaten, so it wins overall.
		if aliases[needle] {
			method := MethodExact
			if needle != f.resolver.CanonicalName(team.Name) {
				method = MethodAlias
			}
			return &FuzzyMatch{
				TeamID:     team.TeamID,
				TeamName:   team.Name,
				Alias:      needle,
				Confidence: 1.0,
				Method:     method,
			}
		}

		for alias := range aliases {
			if alias == "" {
				continue
			}

			// Substring containment either way.
			if strings.Contains(needle, alias) || strings.Contains(alias, needle) {
				ratio := lengthRatio(needle, alias)
				conf := f.cfg.ContainmentFloor
				if ratio > conf {
					conf = ratio
				}
				best = keepBest(best, &FuzzyMatch{
					TeamID:     team.TeamID,
					TeamName:   team.Name,
					Alias:      alias,
					Confidence: conf,
					Method:     MethodFuzzy,
				})
			}

			// Trigram similarity, accepted only above the floor.
			if sim := TrigramSimilarity(needle, alias); sim > f.cfg.SimilarityFloor {
				best = keepBest(best, &FuzzyMatch{
					TeamID:     team.TeamID,
					TeamName:   team.Name,
					Alias:      alias,
					Confidence: sim,
					Method:     MethodFuzzy,
				})
			}
		}
	}

	return best
}

// buildAliases generates the comparable alias set for a team: the full
// normalized name, the last word and last two words of multi-word names
// ("trail blazers" and "blazers" from "portland trail blazers"), the
// abbreviation and its normalized expansion, and for soccer-like sports the
// stop-token-stripped form plus each significant word.
func (f *FuzzyMatcher) buildAliases(team TeamCandidate, soccerLike bool) map[string]bool {
	aliases := make(map[string]bool, 8)

	full := f.resolver.CanonicalName(team.Name)
	if full != "" {
		aliases[full] = true
	}

	words := strings.Fields(full)
	if len(words) > 1 {
		aliases[words[len(words)-1]] = true
		aliases[strings.Join(words[len(words)-2:], " ")] = true
	}

	if team.Abbreviation != "" {
		abbrev := strings.ToLower(team.Abbreviation)
		aliases[abbrev] = true
		if expanded := f.resolver.CanonicalName(team.Abbreviation); expanded != "" {
			aliases[expanded] = true
		}
	}

	if soccerLike {
		if stripped := f.norm.StripStopTokens(full); stripped != "" {
			aliases[stripped] = true
		}
		for _, w := range words {
			if len(w) > 2 && !f.norm.IsStopToken(w) {
				aliases[w] = true
			}
		}
	}

	return aliases
}

func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func keepBest(current, candidate *FuzzyMatch) *FuzzyMatch {
	if current == nil || candidate.Confidence > current.Confidence {
		return candidate
	}
	return current
}
