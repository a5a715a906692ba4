package boxscore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/providers"
	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

const (
	DefaultBaseURL = "https://api.balldontlie.io/v1"
	perPage        = 100
)

// Provider is the key stored on rows ingested from this feed.
const Provider = "boxscore"

// Client pages through the box-score provider's games endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     *retry.Policy
}

// New creates a box-score client. An empty baseURL uses the production API.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		policy: retry.DefaultPolicy(),
	}
}

// RequireCredentials reports whether the client can authenticate at all, so
// jobs can fail before doing any work instead of on the first request.
func (c *Client) RequireCredentials() error {
	if c.apiKey == "" {
		return errors.New("boxscore: api key not configured")
	}
	return nil
}

type teamRow struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
}

type gameRow struct {
	ID               int     `json:"id"`
	Date             string  `json:"date"`
	DateTime         string  `json:"datetime"`
	HomeTeam         teamRow `json:"home_team"`
	VisitorTeam      teamRow `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
	Status           string  `json:"status"`
	Season           int     `json:"season"`
	Postseason       bool    `json:"postseason"`
}

type meta struct {
	NextCursor int `json:"next_cursor"`
	PerPage    int `json:"per_page"`
}

type gamesResponse struct {
	Data []gameRow `json:"data"`
	Meta meta      `json:"meta"`
}

// Game is one validated game from the feed.
type Game struct {
	ProviderGameKey string
	HomeAbbrev      string
	AwayAbbrev      string
	HomeName        string
	AwayName        string
	HomeScore       int
	AwayScore       int
	Status          string
	StartTime       time.Time
	SeasonYear      int
	Playoff         bool
}

// Invalid is a row the feed returned that failed boundary validation. Invalid
// rows are reported, never silently dropped and never persisted.
type Invalid struct {
	Key    string
	Reason string
}

// FetchGames returns every game in [from, to], following cursor pagination
// until the provider reports no next page.
func (c *Client) FetchGames(ctx context.Context, from, to time.Time) ([]Game, []Invalid, error) {
	var (
		games   []Game
		invalid []Invalid
		cursor  int
	)

	headers := map[string]string{"Authorization": c.apiKey}

	for {
		url := fmt.Sprintf("%s/games?start_date=%s&end_date=%s&per_page=%d",
			c.baseURL, from.Format("2006-01-02"), to.Format("2006-01-02"), perPage)
		if cursor != 0 {
			url = fmt.Sprintf("%s&cursor=%d", url, cursor)
		}

		var page gamesResponse
		if err := providers.GetJSON(ctx, c.httpClient, c.policy, url, headers, &page); err != nil {
			return nil, nil, fmt.Errorf("fetch games page (cursor=%d): %w", cursor, err)
		}

		for _, row := range page.Data {
			game, err := validateRow(row)
			if err != nil {
				invalid = append(invalid, Invalid{Key: fmt.Sprintf("%d", row.ID), Reason: err.Error()})
				continue
			}
			games = append(games, game)
		}

		if page.Meta.NextCursor == 0 {
			break
		}
		cursor = page.Meta.NextCursor
	}

	return games, invalid, nil
}

func validateRow(row gameRow) (Game, error) {
	if row.ID == 0 {
		return Game{}, fmt.Errorf("missing game id")
	}
	if row.HomeTeam.Abbreviation == "" || row.VisitorTeam.Abbreviation == "" {
		return Game{}, fmt.Errorf("missing team abbreviation")
	}

	start, err := parseStartTime(row)
	if err != nil {
		return Game{}, err
	}

	return Game{
		ProviderGameKey: fmt.Sprintf("%d", row.ID),
		HomeAbbrev:      row.HomeTeam.Abbreviation,
		AwayAbbrev:      row.VisitorTeam.Abbreviation,
		HomeName:        row.HomeTeam.FullName,
		AwayName:        row.VisitorTeam.FullName,
		HomeScore:       row.HomeTeamScore,
		AwayScore:       row.VisitorTeamScore,
		Status:          row.Status,
		StartTime:       start,
		SeasonYear:      row.Season,
		Playoff:         row.Postseason,
	}, nil
}

func parseStartTime(row gameRow) (time.Time, error) {
	if row.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, row.DateTime); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05Z", row.DateTime); err == nil {
			return t, nil
		}
	}
	if row.Date != "" {
		if t, err := time.Parse("2006-01-02", row.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable start time (date=%q datetime=%q)", row.Date, row.DateTime)
}
