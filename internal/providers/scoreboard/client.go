package scoreboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/providers"
	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

const DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

// sportPaths maps internal sport keys to the scoreboard provider's URL paths.
var sportPaths = map[string]string{
	"basketball_nba": "basketball/nba",
	"hockey_nhl":     "hockey/nhl",
}

// Client fetches the authoritative scoreboard used by reconciliation.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	policy     *retry.Policy
}

// New creates a scoreboard client. An empty baseURL uses the production API.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: "Mozilla/5.0 (compatible; GamePercentilesBot/1.0)",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		policy: retry.DefaultPolicy(),
	}
}

// Score is one game's authoritative result for a date.
type Score struct {
	ProviderGameKey string
	HomeAbbrev      string
	AwayAbbrev      string
	HomeScore       int
	AwayScore       int
	Final           bool
	StartTime       time.Time
}

type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	ID          string       `json:"id"`
	Competitors []competitor `json:"competitors"`
	Status      status       `json:"status"`
}

type competitor struct {
	HomeAway string         `json:"homeAway"`
	Score    string         `json:"score"`
	Team     competitorTeam `json:"team"`
}

type competitorTeam struct {
	Abbreviation string `json:"abbreviation"`
}

type status struct {
	Type statusType `json:"type"`
}

type statusType struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Invalid is one scoreboard event rejected at the boundary.
type Invalid struct {
	Key    string
	Reason string
}

// FetchScores fetches the scoreboard for a sport and date. Events missing a
// home or away competitor are skipped; the scoreboard occasionally lists
// exhibition entries with a single side. A completed event whose score does
// not parse is rejected rather than read as zero, since reconciliation
// would otherwise "correct" a good stored score to it.
func (c *Client) FetchScores(ctx context.Context, sport string, date time.Time) ([]Score, []Invalid, error) {
	path, ok := sportPaths[sport]
	if !ok {
		return nil, nil, fmt.Errorf("no scoreboard path for sport %q", sport)
	}

	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, path, date.Format("20060102"))
	headers := map[string]string{"User-Agent": c.userAgent}

	var resp scoreboardResponse
	if err := providers.GetJSON(ctx, c.httpClient, c.policy, url, headers, &resp); err != nil {
		return nil, nil, fmt.Errorf("fetch scoreboard: %w", err)
	}

	var scores []Score
	var invalid []Invalid
	for _, event := range resp.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		var home, away *competitor
		for i := range comp.Competitors {
			switch comp.Competitors[i].HomeAway {
			case "home":
				home = &comp.Competitors[i]
			case "away":
				away = &comp.Competitors[i]
			}
		}
		if home == nil || away == nil {
			continue
		}

		homeScore, homeErr := parseScore(home.Score)
		awayScore, awayErr := parseScore(away.Score)
		if comp.Status.Type.Completed && (homeErr != nil || awayErr != nil) {
			invalid = append(invalid, Invalid{
				Key:    event.ID,
				Reason: fmt.Sprintf("completed event with unparseable score %q/%q", home.Score, away.Score),
			})
			continue
		}

		start, _ := time.Parse(time.RFC3339, event.Date)

		scores = append(scores, Score{
			ProviderGameKey: event.ID,
			HomeAbbrev:      home.Team.Abbreviation,
			AwayAbbrev:      away.Team.Abbreviation,
			HomeScore:       homeScore,
			AwayScore:       awayScore,
			Final:           comp.Status.Type.Completed,
			StartTime:       start,
		})
	}

	return scores, invalid, nil
}

func parseScore(s string) (int, error) {
	return strconv.Atoi(s)
}
