package oddsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/matching"
	"github.com/byStayo/game-percentiles-sub001/internal/providers"
	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// Client fetches upcoming events with totals markets from the odds feed.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     *retry.Policy
}

// New creates an odds feed client. An empty baseURL uses the production API.
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

// RequireCredentials reports whether the client can authenticate at all.
func (c *Client) RequireCredentials() error {
	if c.apiKey == "" {
		return errors.New("oddsfeed: api key not configured")
	}
	return nil
}

type outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Point float64 `json:"point"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []market `json:"markets"`
}

type event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

// Invalid is one event rejected at the boundary, with the reason kept so
// callers can report it.
type Invalid struct {
	Key    string
	Reason string
}

// FetchEvents returns the feed's current events for a sport key, reduced to
// what the matcher needs. The raw per-event payload is kept verbatim so a
// successful match can be audited later. Malformed events are rejected
// individually; one bad event never loses the rest of the feed.
func (c *Client) FetchEvents(ctx context.Context, sportKey string) ([]matching.OddsEvent, []Invalid, error) {
	url := fmt.Sprintf("%s/sports/%s/odds?apiKey=%s&regions=us&markets=totals&oddsFormat=american",
		c.baseURL, sportKey, c.apiKey)

	var raw []json.RawMessage
	if err := providers.GetJSON(ctx, c.httpClient, c.policy, url, nil, &raw); err != nil {
		return nil, nil, fmt.Errorf("fetch odds events: %w", err)
	}

	events := make([]matching.OddsEvent, 0, len(raw))
	var invalid []Invalid
	for i, payload := range raw {
		var ev event
		if err := json.Unmarshal(payload, &ev); err != nil {
			invalid = append(invalid, Invalid{
				Key:    fmt.Sprintf("#%d", i),
				Reason: fmt.Sprintf("decode: %v", err),
			})
			continue
		}

		commence, err := time.Parse(time.RFC3339, ev.CommenceTime)
		if err != nil {
			invalid = append(invalid, Invalid{
				Key:    ev.ID,
				Reason: fmt.Sprintf("bad commence time %q", ev.CommenceTime),
			})
			continue
		}

		events = append(events, matching.OddsEvent{
			EventID:      ev.ID,
			SportKey:     ev.SportKey,
			CommenceTime: commence,
			HomeName:     ev.HomeTeam,
			AwayName:     ev.AwayTeam,
			TotalsByBook: totalsByBook(ev.Bookmakers),
			RawPayload:   payload,
		})
	}

	return events, invalid, nil
}

// totalsByBook extracts the totals line per bookmaker. Over and Under carry
// the same point, so the Over outcome is authoritative.
func totalsByBook(books []bookmaker) map[string]float64 {
	totals := make(map[string]float64)
	for _, book := range books {
		for _, m := range book.Markets {
			if m.Key != "totals" {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Name == "Over" {
					totals[book.Key] = o.Point
					break
				}
			}
		}
	}
	return totals
}
