package participants

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/byStayo/game-percentiles-sub001/internal/providers"
	"github.com/byStayo/game-percentiles-sub001/internal/retry"
)

const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// Provider is the key stored on mappings resolved from this feed.
const Provider = "oddsfeed"

// Client fetches the flat participant roster the odds feed exposes per sport.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     *retry.Policy
}

// New creates a participants client. An empty baseURL uses the production API.
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
		return errors.New("participants: api key not configured")
	}
	return nil
}

type participantRow struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// FetchParticipants returns the feed's participant names for a sport key.
// Blank names are dropped at the boundary.
func (c *Client) FetchParticipants(ctx context.Context, sportKey string) ([]string, error) {
	url := fmt.Sprintf("%s/sports/%s/participants?apiKey=%s", c.baseURL, sportKey, c.apiKey)

	var rows []participantRow
	if err := providers.GetJSON(ctx, c.httpClient, c.policy, url, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.FullName == "" {
			continue
		}
		names = append(names, row.FullName)
	}

	return names, nil
}
